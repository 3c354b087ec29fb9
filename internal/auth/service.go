// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/reservation-api/internal/config"
	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Firstname    string
	Lastname     string
	PhoneNumber  string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *UserInfo) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Firstname:   u.Firstname,
		Lastname:    u.Lastname,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Firstname    string
	Lastname     string
	PhoneNumber  string
	Role         string
}

// UserProvider is the credential store as seen by session issuance. Create
// must reject collisions on username, email or phone with a
// core.DuplicateKeyError naming the field.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	GetRole(ctx context.Context, userID string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, string, error)
}

type Service struct {
	repo        Repository
	codec       *TokenCodec
	users       UserProvider
	hasher      PasswordHasher
	adminEmails map[string]struct{}
	logger      *slog.Logger
}

func NewService(
	repo Repository,
	codec *TokenCodec,
	users UserProvider,
	hasher PasswordHasher,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *Service {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:        repo,
		codec:       codec,
		users:       users,
		hasher:      hasher,
		adminEmails: admins,
		logger:      logger,
	}
}

// CanSelfAssignAdmin reports whether email is on the admin allow-list.
func (s *Service) CanSelfAssignAdmin(email string) bool {
	_, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RefreshLifetime is how long a refresh token stays valid after issue.
func (s *Service) RefreshLifetime() time.Duration {
	return s.codec.Expiry(KindRefresh)
}

// Register creates the account and opens its first session. The admin
// role check runs before anything is hashed or written.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*Session, error) {
	req.Normalize()

	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("register: %w", core.ErrPasswordMatch)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	if role == RoleAdmin && !s.CanSelfAssignAdmin(req.Email) {
		return nil, fmt.Errorf(
			"register: admin role not permitted for %s: %w",
			req.Email,
			core.ErrForbidden,
		)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return s.openSession(ctx, user)
}

// Login looks the account up by email first; an unknown email fails with
// core.ErrNotFound before any password is compared.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	req.Normalize()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("login: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.openSession(ctx, user)
}

// Logout forgets the refresh token. It is idempotent: removing a token
// that is not stored succeeds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	removed, err := s.repo.DeleteByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.DebugContext(ctx, "refresh token released", "removed", removed)

	return nil
}

// Refresh mints a new access token for a refresh token that is both
// stored and cryptographically valid. The refresh token is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("refresh: %w", core.ErrTokenMissing)
	}

	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", fmt.Errorf("refresh: %w", core.ErrTokenUnknown)
		}
		return "", fmt.Errorf("find refresh token: %w", err)
	}

	userID, err := s.codec.Verify(KindRefresh, refreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}

	if userID != stored.UserID {
		return "", fmt.Errorf(
			"refresh: subject does not match record: %w",
			core.ErrTokenInvalid,
		)
	}

	if _, err := s.users.GetRole(ctx, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", fmt.Errorf("refresh: account removed: %w", core.ErrTokenUnknown)
		}
		return "", fmt.Errorf("load refresh subject: %w", err)
	}

	accessToken, err := s.codec.Issue(KindAccess, userID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return accessToken, nil
}

func (s *Service) openSession(
	ctx context.Context,
	user *UserInfo,
) (*Session, error) {
	accessToken, err := s.codec.Issue(KindAccess, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, err := s.codec.Issue(KindRefresh, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	record := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: core.HashToken(refreshToken),
		ExpiresAt: s.codec.now().Add(s.codec.Expiry(KindRefresh)),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{
		User:             user.Public(),
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}
