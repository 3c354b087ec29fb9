// AngelaMos | 2026
// handler.go

package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
	"github.com/carterperez-dev/templates/reservation-api/internal/middleware"
)

const (
	roleAdmin = "admin"
	roleUser  = "user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service, v *validator.Validate) *Handler {
	if v == nil {
		v = core.NewValidator()
	}
	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	authorize middleware.AuthorizeFunc,
) {
	r.Route("/reservations", func(r chi.Router) {
		r.Use(authenticator)

		r.Group(func(r chi.Router) {
			r.Use(authorize(roleAdmin))
			r.Get("/", h.ListAll)
			r.Get("/date/{date}", h.ListByDate)
		})

		r.Group(func(r chi.Router) {
			r.Use(authorize(roleAdmin, roleUser))
			r.Get("/availability/{date}", h.Availability)
			r.Get("/current", h.ListMine)
			r.Post("/", h.Create)
			r.Delete("/{reservationID}", h.Delete)
		})
	})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToReservationResponseList(items))
}

func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToWithOwnerResponseList(items))
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	slots, err := h.service.Availability(r.Context(), date)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSlotResponseList(slots))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeReservationError(w, err)
		return
	}

	core.OK(w, ToReservationResponseList(items))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	res, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeReservationError(w, err)
		return
	}

	core.Created(w, ToReservationResponse(res))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationID")
	if _, err := uuid.Parse(id); err != nil {
		core.JSONError(w, core.ValidationError(map[string]string{
			"reservationID": "must be a valid UUID",
		}))
		return
	}

	ctx := r.Context()
	if err := h.service.Delete(
		ctx,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		id,
	); err != nil {
		writeReservationError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "reservation deleted"})
}

func writeReservationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "reservation")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.NewAppError(
			err,
			"time slot already reserved",
			http.StatusConflict,
			core.CodeDuplicateKey,
		))
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you can only delete your own reservations")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid input")
	default:
		core.InternalServerError(w, err)
	}
}

func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := core.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		core.JSONError(w, core.ValidationError(map[string]string{
			"date": "must be a valid date in yyyy-MM-dd format",
		}))
		return time.Time{}, false
	}
	return date, true
}
