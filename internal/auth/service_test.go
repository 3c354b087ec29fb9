// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/reservation-api/internal/config"
	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

type tokenStore struct {
	mu     sync.Mutex
	byHash map[string]RefreshToken
}

func newTokenStore() *tokenStore {
	return &tokenStore{byHash: make(map[string]RefreshToken)}
}

func (s *tokenStore) Create(_ context.Context, tok *RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byHash[tok.TokenHash]; ok {
		return &core.DuplicateKeyError{Field: "token"}
	}
	tok.CreatedAt = time.Now()
	s.byHash[tok.TokenHash] = *tok
	return nil
}

func (s *tokenStore) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	return &tok, nil
}

func (s *tokenStore) DeleteByHash(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byHash[hash]
	delete(s.byHash, hash)
	return ok, nil
}

func (s *tokenStore) CountActive(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHash), nil
}

func (s *tokenStore) deleteForUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, tok := range s.byHash {
		if tok.UserID == userID {
			delete(s.byHash, h)
		}
	}
}

type userStore struct {
	mu    sync.Mutex
	users map[string]UserInfo
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]UserInfo)}
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (s *userStore) Create(_ context.Context, nu NewUser) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		switch {
		case u.Username == nu.Username:
			return nil, &core.DuplicateKeyError{Field: "username"}
		case u.Email == nu.Email:
			return nil, &core.DuplicateKeyError{Field: "email"}
		case u.PhoneNumber == nu.PhoneNumber:
			return nil, &core.DuplicateKeyError{Field: "phoneNumber"}
		}
	}

	now := time.Now()
	u := UserInfo{
		ID:           uuid.New().String(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Firstname:    nu.Firstname,
		Lastname:     nu.Lastname,
		PhoneNumber:  nu.PhoneNumber,
		Role:         nu.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *userStore) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *userStore) GetRole(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return "", fmt.Errorf("get user role: %w", core.ErrNotFound)
	}
	return u.Role, nil
}

func (s *userStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *userStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// plainHasher stores "hashed:" + password and counts calls.
type plainHasher struct {
	mu       sync.Mutex
	hashes   int
	verifies int
	upgrade  string
}

func (h *plainHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	return "hashed:" + password, nil
}

func (h *plainHasher) Verify(password, encoded string) (bool, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verifies++
	if encoded != "hashed:"+password {
		return false, "", nil
	}
	return true, h.upgrade, nil
}

type authFixture struct {
	svc    *Service
	tokens *tokenStore
	users  *userStore
	hasher *plainHasher
	codec  *TokenCodec
	clock  *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	codec, clock := newTestCodec(t)
	tokens := newTokenStore()
	users := newUserStore()
	hasher := &plainHasher{}

	svc := NewService(tokens, codec, users, hasher, config.AuthConfig{
		AdminEmails: []string{" Admin@AUEB.gr "},
	}, nil)

	return &authFixture{
		svc:    svc,
		tokens: tokens,
		users:  users,
		hasher: hasher,
		codec:  codec,
		clock:  clock,
	}
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Username:        "Maria",
		Email:           "Maria@Example.com",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		Firstname:       "Maria",
		Lastname:        "Papadopoulou",
		PhoneNumber:     "6912345678",
	}
}

func TestRegisterOpensSession(t *testing.T) {
	f := newAuthFixture(t)

	session, err := f.svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	assert.Equal(t, "maria", session.User.Username)
	assert.Equal(t, "maria@example.com", session.User.Email)
	assert.Equal(t, RoleUser, session.User.Role)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	userID, err := f.codec.Verify(KindAccess, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	stored, err := f.tokens.FindByHash(context.Background(), core.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, stored.UserID)
	assert.NotEqual(t, session.RefreshToken, stored.TokenHash)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), stored.ExpiresAt)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)

	req := validRegister()
	req.ConfirmPassword = "something else"

	_, err := f.svc.Register(context.Background(), req)
	require.ErrorIs(t, err, core.ErrPasswordMatch)
	assert.Zero(t, f.users.count())
	assert.Zero(t, f.hasher.hashes)
}

func TestRegisterAdminAllowList(t *testing.T) {
	f := newAuthFixture(t)

	req := validRegister()
	req.Role = RoleAdmin

	_, err := f.svc.Register(context.Background(), req)
	require.ErrorIs(t, err, core.ErrForbidden)
	assert.Zero(t, f.users.count())
	assert.Zero(t, f.hasher.hashes)

	n, _ := f.tokens.CountActive(context.Background())
	assert.Zero(t, n)

	req.Email = "admin@aueb.gr"
	session, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, session.User.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	dup := validRegister()
	dup.Username = "other"
	dup.PhoneNumber = "6987654321"
	dup.Password = "another password"
	dup.ConfirmPassword = "another password"

	_, err = f.svc.Register(ctx, dup)
	require.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.Equal(t, "email", core.DuplicateField(err))

	original, err := f.users.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, original.ID)
	assert.Equal(t, "hashed:correct horse", original.PasswordHash)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	t.Run("unknown email never compares", func(t *testing.T) {
		before := f.hasher.verifies
		_, err := f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
		require.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, before, f.hasher.verifies)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, LoginRequest{Email: "maria@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("case-insensitive email", func(t *testing.T) {
		session, err := f.svc.Login(ctx, LoginRequest{
			Email:    "  MARIA@example.com ",
			Password: "correct horse",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.RefreshToken)
	})
}

func TestLoginUpgradesHash(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	f.hasher.upgrade = "upgraded"
	_, err = f.svc.Login(ctx, LoginRequest{Email: "maria@example.com", Password: "correct horse"})
	require.NoError(t, err)

	u, err := f.users.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, u.ID)
	assert.Equal(t, "upgraded", u.PasswordHash)
}

func TestEachLoginIsAnIndependentSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, LoginRequest{Email: "maria@example.com", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, first.RefreshToken))

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenUnknown)

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, "")
		assert.ErrorIs(t, err, core.ErrTokenMissing)
	})

	t.Run("not stored", func(t *testing.T) {
		forged, err := f.codec.Issue(KindRefresh, session.User.ID)
		require.NoError(t, err)
		_, err = f.svc.Refresh(ctx, forged)
		assert.ErrorIs(t, err, core.ErrTokenUnknown)
	})

	t.Run("valid", func(t *testing.T) {
		access, err := f.svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)

		userID, err := f.codec.Verify(KindAccess, access)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, userID)
	})

	t.Run("refresh token is not rotated", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, session.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, session.AccessToken)
		assert.ErrorIs(t, err, core.ErrTokenUnknown)
	})
}

func TestRefreshExpiredButStored(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestRefreshAfterAccountRemoval(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	f.tokens.deleteForUser(session.User.ID)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenUnknown)
}

func TestRefreshRejectsRemovedAccountWithLingeringRecord(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	f.users.remove(session.User.ID)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenUnknown)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, session.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, ""))

	n, _ := f.tokens.CountActive(ctx)
	assert.Zero(t, n)
}

func TestCanSelfAssignAdmin(t *testing.T) {
	f := newAuthFixture(t)

	assert.True(t, f.svc.CanSelfAssignAdmin("admin@aueb.gr"))
	assert.True(t, f.svc.CanSelfAssignAdmin(strings.ToUpper("admin@aueb.gr")))
	assert.False(t, f.svc.CanSelfAssignAdmin("maria@example.com"))
}
