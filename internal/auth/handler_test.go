// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/reservation-api/internal/core"
	"github.com/carterperez-dev/templates/reservation-api/internal/middleware"
)

const registerBody = `{
	"username": "maria",
	"email": "maria@example.com",
	"password": "correct horse",
	"confirmPassword": "correct horse",
	"firstname": "Maria",
	"lastname": "Papadopoulou",
	"phoneNumber": "6912345678"
}`

type handlerEnv struct {
	*authFixture
	router http.Handler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	f := newAuthFixture(t)
	h := NewHandler(f.svc, nil, CookieConfig{
		Name:   "refreshToken",
		Path:   "/api/auth",
		Secure: true,
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(f.codec))

	return &handlerEnv{authFixture: f, router: r}
}

func (e *handlerEnv) post(
	t *testing.T,
	path, body string,
	access string,
	cookie *http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatal("refresh cookie not set")
	return nil
}

func TestRegisterSetsCookieNotBody(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.post(t, "/auth/register", registerBody, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := refreshCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/api/auth", cookie.Path)
	assert.Greater(t, cookie.MaxAge, 0)

	raw := rec.Body.String()
	assert.NotContains(t, raw, cookie.Value)
	assert.NotContains(t, raw, "refreshToken")
	assert.NotContains(t, raw, "password")

	var body AuthResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "maria", body.User.Username)
}

func TestRegisterErrors(t *testing.T) {
	env := newHandlerEnv(t)

	require.Equal(t, http.StatusCreated,
		env.post(t, "/auth/register", registerBody, "", nil).Code)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "duplicate",
			body:   registerBody,
			status: http.StatusConflict,
			code:   core.CodeDuplicateKey,
		},
		{
			name:   "bad phone",
			body:   strings.Replace(registerBody, "6912345678", "2101234567", 1),
			status: http.StatusBadRequest,
			code:   core.CodeValidation,
		},
		{
			name: "admin not allowed",
			body: strings.Replace(
				strings.Replace(registerBody, "maria@example.com", "eve@example.com", 1),
				`"phoneNumber"`, `"role": "admin", "phoneNumber"`, 1,
			),
			status: http.StatusForbidden,
			code:   core.CodeAuthorization,
		},
		{
			name:   "malformed json",
			body:   `{"username":`,
			status: http.StatusBadRequest,
			code:   core.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post(t, "/auth/register", tt.body, "", nil)
			require.Equal(t, tt.status, rec.Code)

			var body core.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestLoginResponses(t *testing.T) {
	env := newHandlerEnv(t)
	require.Equal(t, http.StatusCreated,
		env.post(t, "/auth/register", registerBody, "", nil).Code)

	rec := env.post(t, "/auth/login",
		`{"email":"ghost@example.com","password":"whatever1"}`, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.post(t, "/auth/login",
		`{"email":"maria@example.com","password":"wrong-password"}`, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.post(t, "/auth/login",
		`{"email":"maria@example.com","password":"correct horse"}`, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, refreshCookie(t, rec).Value)
}

func TestRefreshEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.post(t, "/auth/register", registerBody, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := refreshCookie(t, rec)

	rec = env.post(t, "/auth/refresh-token", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.post(t, "/auth/refresh-token", "", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body RefreshResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	_, err := env.codec.Verify(KindAccess, body.AccessToken)
	assert.NoError(t, err)

	rec = env.post(t, "/auth/refresh-token", "", "", &http.Cookie{
		Name:  "refreshToken",
		Value: "garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.post(t, "/auth/register", registerBody, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := refreshCookie(t, rec)

	var session AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))

	rec = env.post(t, "/auth/logout", "", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.post(t, "/auth/logout", "", session.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	for range 2 {
		rec = env.post(t, "/auth/logout", "", session.AccessToken, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		cleared := refreshCookie(t, rec)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}

	rec = env.post(t, "/auth/refresh-token", "", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
