// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"
	"time"
)

type RegisterRequest struct {
	Username        string `json:"username"        validate:"required,min=2,max=20"`
	Email           string `json:"email"           validate:"required,email,max=50"`
	Password        string `json:"password"        validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Firstname       string `json:"firstname"       validate:"required,min=2,max=20"`
	Lastname        string `json:"lastname"        validate:"required,min=2,max=20"`
	PhoneNumber     string `json:"phoneNumber"     validate:"required,greekmobile"`
	Role            string `json:"role,omitempty"  validate:"omitempty,oneof=admin user"`
}

// Normalize trims every field and case-folds the identity fields.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Firstname = strings.TrimSpace(r.Firstname)
	r.Lastname = strings.TrimSpace(r.Lastname)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=50"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// PublicUser is the projection of a user that may leave the service.
type PublicUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Firstname   string    `json:"firstname"`
	Lastname    string    `json:"lastname"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AuthResponse struct {
	User        PublicUser `json:"user"`
	AccessToken string     `json:"accessToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Session is the outcome of register or login. The refresh token travels
// to the client only as a cookie, never inside a JSON body.
type Session struct {
	User             PublicUser `json:"user"`
	AccessToken      string     `json:"accessToken"`
	RefreshToken     string     `json:"-"`
	RefreshExpiresAt time.Time  `json:"-"`
}

func (s *Session) Response() AuthResponse {
	return AuthResponse{
		User:        s.User,
		AccessToken: s.AccessToken,
	}
}
