// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"
)

// UpdateUserRequest carries any subset of the editable profile fields.
type UpdateUserRequest struct {
	Firstname   *string `json:"firstname,omitempty"   validate:"omitempty,min=2,max=20"`
	Lastname    *string `json:"lastname,omitempty"    validate:"omitempty,min=2,max=20"`
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,greekmobile"`
}

func (r *UpdateUserRequest) Normalize() {
	for _, f := range []*string{r.Firstname, r.Lastname, r.PhoneNumber} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Firstname == nil && r.Lastname == nil && r.PhoneNumber == nil
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UserResponse struct {
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

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type MessageResponse struct {
	Message string `json:"message"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
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

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
