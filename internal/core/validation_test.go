// AngelaMos | 2026
// validation_test.go

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotInput struct {
	Date  string `json:"date"  validate:"required,isodate,notpast"`
	Hours string `json:"hours" validate:"required,timeslot"`
	Phone string `json:"phoneNumber" validate:"omitempty,greekmobile"`
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 18, 45, 0, 0, time.UTC)
}

func TestValidatorDomainTags(t *testing.T) {
	v := NewValidatorWithClock(fixedClock)

	tests := []struct {
		name   string
		input  slotInput
		fields []string
	}{
		{
			name:  "valid today",
			input: slotInput{Date: "2026-03-15", Hours: "09:30", Phone: "6912345678"},
		},
		{
			name:  "valid future",
			input: slotInput{Date: "2026-12-01", Hours: "23:00"},
		},
		{
			name:   "past date",
			input:  slotInput{Date: "2026-03-14", Hours: "10:00"},
			fields: []string{"date"},
		},
		{
			name:   "impossible calendar date",
			input:  slotInput{Date: "2026-02-30", Hours: "10:00"},
			fields: []string{"date"},
		},
		{
			name:   "wrong date layout",
			input:  slotInput{Date: "15/03/2026", Hours: "10:00"},
			fields: []string{"date"},
		},
		{
			name:   "quarter hour",
			input:  slotInput{Date: "2026-04-01", Hours: "10:15"},
			fields: []string{"hours"},
		},
		{
			name:   "hour out of range",
			input:  slotInput{Date: "2026-04-01", Hours: "24:00"},
			fields: []string{"hours"},
		},
		{
			name:   "landline phone",
			input:  slotInput{Date: "2026-04-01", Hours: "10:00", Phone: "2101234567"},
			fields: []string{"phoneNumber"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			details := FormatValidationError(err)
			for _, f := range tt.fields {
				assert.Contains(t, details, f)
			}
			assert.Len(t, details, len(tt.fields))
		})
	}
}

func TestFormatValidationErrorMessages(t *testing.T) {
	v := NewValidatorWithClock(fixedClock)

	err := v.Struct(slotInput{Hours: "7:00"})
	require.Error(t, err)

	details := FormatValidationError(err)
	assert.Equal(t, "is required", details["date"])
	assert.Equal(t, "must be a half-hour slot (HH:00 or HH:30)", details["hours"])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseDate("2023-02-29")
	require.ErrorIs(t, err, ErrInvalidInput)
}
