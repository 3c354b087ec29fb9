// AngelaMos | 2026
// service.go

package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
	"github.com/carterperez-dev/templates/reservation-api/internal/events"
)

const publishTimeout = 5 * time.Second

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateReservationRequest,
) (*Reservation, error) {
	if userID == "" {
		return nil, fmt.Errorf("create reservation: %w", core.ErrUnauthorized)
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	res := &Reservation{
		ID:     uuid.New().String(),
		Date:   date,
		Hours:  req.Hours,
		Text:   req.Text,
		UserID: userID,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "reservation.created",
		attribute.String("reservation.id", res.ID),
		attribute.String("reservation.date", req.Date),
		attribute.String("reservation.hours", res.Hours),
	)

	s.logger.InfoContext(ctx, "reservation created",
		"reservation_id", res.ID,
		"user_id", userID,
		"date", req.Date,
		"hours", res.Hours,
	)

	s.publish(ctx, events.TypeReservationCreated, CreatedEvent{
		ID:     res.ID,
		Date:   req.Date,
		Hours:  res.Hours,
		UserID: userID,
	})

	return res, nil
}

// Delete lets admins remove any reservation and users only their own.
func (s *Service) Delete(
	ctx context.Context,
	callerID string,
	callerIsAdmin bool,
	id string,
) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !callerIsAdmin && !res.OwnedBy(callerID) {
		return fmt.Errorf("delete reservation: %w", core.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	date := res.Date.Format(core.DateLayout)

	core.AddSpanEvent(ctx, "reservation.deleted",
		attribute.String("reservation.id", id),
	)

	s.logger.InfoContext(ctx, "reservation deleted",
		"reservation_id", id,
		"deleted_by", callerID,
	)

	s.publish(ctx, events.TypeReservationDeleted, DeletedEvent{
		ID:        id,
		Date:      date,
		Hours:     res.Hours,
		UserID:    res.UserID,
		DeletedBy: callerID,
	})

	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]Reservation, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]WithOwner, error) {
	return s.repo.ListByDateWithOwners(ctx, date)
}

// Availability lists the taken slots on date without any owner data.
func (s *Service) Availability(ctx context.Context, date time.Time) ([]Slot, error) {
	return s.repo.ListSlots(ctx, date)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Reservation, error) {
	if userID == "" {
		return nil, fmt.Errorf("list reservations: %w", core.ErrUnauthorized)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// publish never fails the caller; the write has already happened.
func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, eventType, payload); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"event", eventType,
			"error", err,
		)
	}
}
