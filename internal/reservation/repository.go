// AngelaMos | 2026
// repository.go

package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

// SlotField names the conflicting field when a slot is already taken.
const SlotField = "slot"

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context) ([]Reservation, error)
	ListByDateWithOwners(ctx context.Context, date time.Time) ([]WithOwner, error)
	ListSlots(ctx context.Context, date time.Time) ([]Slot, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const reservationColumns = `id, date, hours, text, user_id, created_at, updated_at`

// Create relies on the (date, hours) unique constraint to reject a taken
// slot, so two concurrent requests cannot both win.
func (r *repository) Create(ctx context.Context, res *Reservation) error {
	query := `
		INSERT INTO reservations (id, date, hours, text, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		res.ID,
		res.Date,
		res.Hours,
		res.Text,
		res.UserID,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if _, ok := core.UniqueViolation(err); ok {
			return fmt.Errorf(
				"create reservation: %w",
				&core.DuplicateKeyError{Field: SlotField},
			)
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get reservation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	return &res, nil
}

func (r *repository) List(ctx context.Context) ([]Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		ORDER BY date, hours`

	var items []Reservation
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return items, nil
}

func (r *repository) ListByDateWithOwners(
	ctx context.Context,
	date time.Time,
) ([]WithOwner, error) {
	query := `
		SELECT r.id, r.date, r.hours, r.text, r.user_id,
		       r.created_at, r.updated_at,
		       u.username     AS owner_username,
		       u.email        AS owner_email,
		       u.firstname    AS owner_firstname,
		       u.lastname     AS owner_lastname,
		       u.phone_number AS owner_phone_number
		FROM reservations r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.date = $1
		ORDER BY r.hours`

	var items []WithOwner
	if err := r.db.SelectContext(ctx, &items, query, date); err != nil {
		return nil, fmt.Errorf("list reservations by date: %w", err)
	}

	return items, nil
}

func (r *repository) ListSlots(ctx context.Context, date time.Time) ([]Slot, error) {
	query := `
		SELECT date, hours
		FROM reservations
		WHERE date = $1
		ORDER BY hours`

	var slots []Slot
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	return slots, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY date, hours`

	var items []Reservation
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list user reservations: %w", err)
	}

	return items, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete reservation: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reservations`); err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}
