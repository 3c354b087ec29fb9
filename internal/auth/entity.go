// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is the server side record that keeps a refresh token
// redeemable. Only the token's hash is stored.
type RefreshToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
