// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/reservation-api/internal/middleware"
)

type roles map[string]string

func (r roles) GetRole(_ context.Context, id string) (string, error) {
	return r[id], nil
}

func callerFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithUserID(r.Context(), r.Header.Get("X-Test-User"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func fixed(n int) CountFunc {
	return func(context.Context) (int, error) { return n, nil }
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBPing:       func(context.Context) error { return nil },
		RedisPing:    func(context.Context) error { return errors.New("down") },
		Users:        fixed(3),
		Sessions:     fixed(5),
		Reservations: func(context.Context) (int, error) { return 0, errors.New("boom") },
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r, callerFromHeader, middleware.Authorizer(roles{
		"a": "admin",
		"u": "user",
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Test-User", "u")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Test-User", "a")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Database.Healthy)
	assert.False(t, body.Redis.Healthy)
	assert.Equal(t, Counts{Users: 3, ActiveSessions: 5, Reservations: -1}, body.Counts)
	assert.NotEmpty(t, body.Runtime.GoVersion)
}
