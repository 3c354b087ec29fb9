// AngelaMos | 2026
// entity.go

package reservation

import (
	"database/sql"
	"time"
)

// Reservation holds one half-hour slot on one date. A slot belongs to at
// most one reservation.
type Reservation struct {
	ID        string    `db:"id"`
	Date      time.Time `db:"date"`
	Hours     string    `db:"hours"`
	Text      string    `db:"text"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *Reservation) OwnedBy(userID string) bool {
	return r.UserID == userID
}

// WithOwner is a reservation joined with its owner. The owner columns are
// null when the account has since been deleted.
type WithOwner struct {
	Reservation
	OwnerUsername    sql.NullString `db:"owner_username"`
	OwnerEmail       sql.NullString `db:"owner_email"`
	OwnerFirstname   sql.NullString `db:"owner_firstname"`
	OwnerLastname    sql.NullString `db:"owner_lastname"`
	OwnerPhoneNumber sql.NullString `db:"owner_phone_number"`
}

// Slot is the public view of a taken slot.
type Slot struct {
	Date  time.Time `db:"date"`
	Hours string    `db:"hours"`
}
