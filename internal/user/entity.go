// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Firstname    string    `db:"firstname"`
	Lastname     string    `db:"lastname"`
	PhoneNumber  string    `db:"phone_number"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// constraintFields maps unique constraint names to the request field that
// collided.
var constraintFields = map[string]string{
	"users_username_key":     "username",
	"users_email_key":        "email",
	"users_phone_number_key": "phoneNumber",
}
