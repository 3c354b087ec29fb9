// AngelaMos | 2026
// dto.go

package reservation

import (
	"strings"
	"time"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

type CreateReservationRequest struct {
	Date  string `json:"date"  validate:"required,isodate,notpast"`
	Hours string `json:"hours" validate:"required,timeslot"`
	Text  string `json:"text"  validate:"max=200"`
}

func (r *CreateReservationRequest) Normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.Hours = strings.TrimSpace(r.Hours)
	r.Text = strings.TrimSpace(r.Text)
}

type ReservationResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Hours     string    `json:"hours"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OwnerResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	PhoneNumber string `json:"phoneNumber"`
}

type ReservationWithOwnerResponse struct {
	ReservationResponse
	User *OwnerResponse `json:"user"`
}

type SlotResponse struct {
	Date  string `json:"date"`
	Hours string `json:"hours"`
}

func ToReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Date:      r.Date.Format(core.DateLayout),
		Hours:     r.Hours,
		Text:      r.Text,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToReservationResponseList(items []Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(items))
	for i := range items {
		out = append(out, ToReservationResponse(&items[i]))
	}
	return out
}

func ToWithOwnerResponseList(items []WithOwner) []ReservationWithOwnerResponse {
	out := make([]ReservationWithOwnerResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		resp := ReservationWithOwnerResponse{
			ReservationResponse: ToReservationResponse(&item.Reservation),
		}
		if item.OwnerUsername.Valid {
			resp.User = &OwnerResponse{
				Username:    item.OwnerUsername.String,
				Email:       item.OwnerEmail.String,
				Firstname:   item.OwnerFirstname.String,
				Lastname:    item.OwnerLastname.String,
				PhoneNumber: item.OwnerPhoneNumber.String,
			}
		}
		out = append(out, resp)
	}
	return out
}

func ToSlotResponseList(slots []Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Date:  s.Date.Format(core.DateLayout),
			Hours: s.Hours,
		})
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedEvent and DeletedEvent are the broker payloads.
type CreatedEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Hours  string `json:"hours"`
	UserID string `json:"userId"`
}

type DeletedEvent struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Hours     string `json:"hours"`
	UserID    string `json:"userId"`
	DeletedBy string `json:"deletedBy"`
}
