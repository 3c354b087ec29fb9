// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

// CookieConfig describes the cookie that carries the refresh token.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

type Handler struct {
	service   *Service
	validator *validator.Validate
	cookie    CookieConfig
}

func NewHandler(
	service *Service,
	v *validator.Validate,
	cookie CookieConfig,
) *Handler {
	if v == nil {
		v = core.NewValidator()
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}

	return &Handler{
		service:   service,
		validator: v,
		cookie:    cookie,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrPasswordMatch):
			core.JSONError(w, core.ValidationError(map[string]string{
				"confirmPassword": "passwords do not match",
			}))
		case errors.Is(err, core.ErrForbidden):
			core.JSONError(w, core.ForbiddenError(
				"admin role cannot be self-assigned with this email",
			))
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError(core.DuplicateField(err)))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiresAt)
	core.Created(w, session.Response())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, ErrInvalidCredentials):
			core.Unauthorized(w, "invalid email or password")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiresAt)
	core.OK(w, session.Response())
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.service.Refresh(r.Context(), h.readRefreshCookie(r))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTokenMissing):
			core.Unauthorized(w, "missing refresh token")
		case errors.Is(err, core.ErrTokenUnknown):
			core.Unauthorized(w, "refresh token not recognized")
		case errors.Is(err, core.ErrTokenExpired):
			core.Unauthorized(w, "refresh token expired, please log in again")
		case errors.Is(err, core.ErrTokenInvalid):
			core.Unauthorized(w, "invalid refresh token")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, RefreshResponse{AccessToken: accessToken})
}

// Logout answers 204 without touching anything when no refresh cookie is
// present. Otherwise the record is removed, the cookie cleared and 200
// returned whether or not a record existed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.readRefreshCookie(r)
	if token == "" {
		core.NoContent(w)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	core.OK(w, MessageResponse{Message: "logged out"})
}

func (h *Handler) readRefreshCookie(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setRefreshCookie(
	w http.ResponseWriter,
	token string,
	expiresAt time.Time,
) {
	maxAge := int(h.service.RefreshLifetime().Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
