// AngelaMos | 2026
// handler_test.go

package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
	"github.com/carterperez-dev/templates/reservation-api/internal/middleware"
)

type roleTable map[string]string

func (t roleTable) GetRole(_ context.Context, id string) (string, error) {
	role, ok := t[id]
	if !ok {
		return "", fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	return role, nil
}

func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Test-User")
		if id == "" {
			core.Unauthorized(w, "missing authorization token")
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), id)))
	})
}

type testEnv struct {
	router http.Handler
	repo   *memoryRepo
	pub    *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemoryRepo()
	repo.owners["u-maria"] = "maria"
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, nil)

	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	h := NewHandler(svc, core.NewValidatorWithClock(func() time.Time { return fixed }))

	roles := roleTable{"u-admin": "admin", "u-maria": "user", "u-nikos": "user"}

	r := chi.NewRouter()
	h.RegisterRoutes(r, headerAuth, middleware.Authorizer(roles))

	return &testEnv{router: r, repo: repo, pub: pub}
}

func (e *testEnv) do(
	t *testing.T,
	method, path, caller, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set("X-Test-User", caller)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestCreateReservationValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "bad hours", body: `{"date":"2026-04-01","hours":"10:15"}`, field: "hours"},
		{name: "impossible date", body: `{"date":"2026-02-30","hours":"10:00"}`, field: "date"},
		{name: "past date", body: `{"date":"2026-03-14","hours":"10:00"}`, field: "date"},
		{name: "text too long", body: `{"date":"2026-04-01","hours":"10:00","text":"` + strings.Repeat("x", 201) + `"}`, field: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/reservations/", "u-maria", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body core.ErrorResponse
			decodeInto(t, rec, &body)
			assert.Equal(t, core.CodeValidation, body.Error.Code)
			assert.Contains(t, body.Error.Details, tt.field)
		})
	}
}

func TestCreateReservationToday(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/reservations/", "u-maria",
		`{"date":"2026-03-15","hours":"23:30","text":"late"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res ReservationResponse
	decodeInto(t, rec, &res)
	assert.Equal(t, "2026-03-15", res.Date)
	assert.Equal(t, "23:30", res.Hours)
	assert.Equal(t, "u-maria", res.UserID)
}

func TestCreateReservationConflict(t *testing.T) {
	env := newTestEnv(t)
	body := `{"date":"2026-04-01","hours":"10:00"}`

	require.Equal(t, http.StatusCreated,
		env.do(t, http.MethodPost, "/reservations/", "u-maria", body).Code)

	rec := env.do(t, http.MethodPost, "/reservations/", "u-nikos", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp core.ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, core.CodeDuplicateKey, resp.Error.Code)
}

func TestAvailabilityHidesOwners(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/reservations/",
		"u-maria", `{"date":"2026-04-01","hours":"10:00","text":"private"}`).Code)

	rec := env.do(t, http.MethodGet, "/reservations/availability/2026-04-01", "u-nikos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []map[string]any
	decodeInto(t, rec, &slots)
	require.Len(t, slots, 1)
	assert.Equal(t, map[string]any{"date": "2026-04-01", "hours": "10:00"}, slots[0])

	rec = env.do(t, http.MethodGet, "/reservations/availability/2026-13-01", "u-nikos", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminListings(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/reservations/",
		"u-maria", `{"date":"2026-04-01","hours":"10:00"}`).Code)

	rec := env.do(t, http.MethodGet, "/reservations/", "u-maria", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/reservations/", "u-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []ReservationResponse
	decodeInto(t, rec, &all)
	assert.Len(t, all, 1)

	rec = env.do(t, http.MethodGet, "/reservations/date/2026-04-01", "u-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var byDate []ReservationWithOwnerResponse
	decodeInto(t, rec, &byDate)
	require.Len(t, byDate, 1)
	require.NotNil(t, byDate[0].User)
	assert.Equal(t, "maria", byDate[0].User.Username)
}

func TestDeleteReservationRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/reservations/", "u-maria",
		`{"date":"2026-04-01","hours":"10:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created ReservationResponse
	decodeInto(t, rec, &created)

	rec = env.do(t, http.MethodDelete, "/reservations/"+created.ID, "u-nikos", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/reservations/not-a-uuid", "u-maria", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/reservations/"+created.ID, "u-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var msg MessageResponse
	decodeInto(t, rec, &msg)
	assert.Equal(t, "reservation deleted", msg.Message)

	rec = env.do(t, http.MethodDelete, "/reservations/"+created.ID, "u-admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentReservations(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/reservations/",
		"u-maria", `{"date":"2026-04-01","hours":"10:00"}`).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/reservations/",
		"u-nikos", `{"date":"2026-04-01","hours":"10:30"}`).Code)

	rec := env.do(t, http.MethodGet, "/reservations/current", "u-nikos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var mine []ReservationResponse
	decodeInto(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "10:30", mine[0].Hours)
}
