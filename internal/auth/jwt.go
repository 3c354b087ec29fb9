// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/reservation-api/internal/config"
	"github.com/carterperez-dev/templates/reservation-api/internal/core"
)

// TokenKind selects the secret, lifetime and subject tag a token is minted
// with. A token of one kind never verifies as the other.
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

const (
	subjectAccess  = "accessApi"
	subjectRefresh = "refreshToken"
	claimUserID    = "userId"
)

func (k TokenKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

type kindSpec struct {
	secret  []byte
	expire  time.Duration
	subject string
}

// TokenCodec signs and verifies HS256 tokens, one secret per kind.
type TokenCodec struct {
	kinds  map[TokenKind]kindSpec
	issuer string
	now    func() time.Time
}

func NewTokenCodec(cfg config.JWTConfig) (*TokenCodec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token codec: both secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token codec: secrets must differ per kind")
	}

	return &TokenCodec{
		kinds: map[TokenKind]kindSpec{
			KindAccess: {
				secret:  []byte(cfg.AccessSecret),
				expire:  cfg.AccessTokenExpire,
				subject: subjectAccess,
			},
			KindRefresh: {
				secret:  []byte(cfg.RefreshSecret),
				expire:  cfg.RefreshTokenExpire,
				subject: subjectRefresh,
			},
		},
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

func (c *TokenCodec) Expiry(kind TokenKind) time.Duration {
	return c.kinds[kind].expire
}

func (c *TokenCodec) Issue(kind TokenKind, userID string) (string, error) {
	settings, ok := c.kinds[kind]
	if !ok {
		return "", fmt.Errorf("issue token: unknown kind %d", kind)
	}
	if userID == "" {
		return "", fmt.Errorf("issue token: empty subject: %w", core.ErrInvalidInput)
	}

	now := c.now()

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Subject(settings.subject).
		IssuedAt(now).
		Expiration(now.Add(settings.expire)).
		Claim(claimUserID, userID)
	if c.issuer != "" {
		builder = builder.Issuer(c.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build %s token: %w", kind, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), settings.secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return string(signed), nil
}

// Verify checks signature, expiry and subject tag and returns the user id
// the token was issued for. Failures wrap core.ErrTokenExpired or
// core.ErrTokenInvalid.
func (c *TokenCodec) Verify(kind TokenKind, tokenString string) (string, error) {
	settings, ok := c.kinds[kind]
	if !ok {
		return "", fmt.Errorf("verify token: unknown kind %d", kind)
	}

	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), settings.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(c.now)),
		jwt.WithSubject(settings.subject),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return "", fmt.Errorf("verify %s token: %w", kind, core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify %s token: %w", kind, core.ErrTokenInvalid)
	}

	var userID string
	if err := token.Get(claimUserID, &userID); err != nil || userID == "" {
		return "", fmt.Errorf(
			"verify %s token: missing user id: %w",
			kind,
			core.ErrTokenInvalid,
		)
	}

	return userID, nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier.
func (c *TokenCodec) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (string, error) {
	return c.Verify(KindAccess, tokenString)
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
