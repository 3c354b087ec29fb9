// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var (
	greekMobileRe = regexp.MustCompile(`^69\d{8}$`)
	timeSlotRe    = regexp.MustCompile(`^([01]\d|2[0-3]):(00|30)$`)
)

// NewValidator returns a validator that reports json field names and knows
// the domain tags greekmobile, timeslot, isodate and notpast.
func NewValidator() *validator.Validate {
	return NewValidatorWithClock(time.Now)
}

func NewValidatorWithClock(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("greekmobile", func(fl validator.FieldLevel) bool {
		return greekMobileRe.MatchString(fl.Field().String())
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return timeSlotRe.MatchString(fl.Field().String())
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	//nolint:errcheck // tags are static and valid
	_ = v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.Before(StartOfDay(now()))
	})

	return v
}

// ParseDate accepts only real calendar dates in yyyy-MM-dd form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidInput)
	}
	return d, nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatValidationError flattens validator output into one message per
// json field.
func FormatValidationError(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := details[fe.Field()]; seen {
			continue
		}
		details[fe.Field()] = fieldMessage(fe)
	}

	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "passwords do not match"
	case "greekmobile":
		return "must be a valid Greek mobile number (69XXXXXXXX)"
	case "timeslot":
		return "must be a half-hour slot (HH:00 or HH:30)"
	case "isodate":
		return "must be a valid date (yyyy-MM-dd)"
	case "notpast":
		return "must be today or a future date"
	case "uuid4", "uuid":
		return "must be a valid identifier"
	default:
		return "is invalid"
	}
}
