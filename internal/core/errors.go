// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenMissing  = errors.New("token missing")
	ErrTokenUnknown  = errors.New("token not recognized")
	ErrPasswordMatch = errors.New("passwords do not match")
)

// Wire codes for the error envelope.
const (
	CodeValidation     = "ValidationError"
	CodeAuthentication = "AuthenticationError"
	CodeAuthorization  = "AuthorizationError"
	CodeNotFound       = "NotFound"
	CodeDuplicateKey   = "DuplicateKey"
	CodeServer         = "ServerError"
	CodeRateLimited    = "RateLimited"
)

// AppError is an error that knows how it should be rendered to a client.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Details    map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// DuplicateKeyError names the unique field a write collided on.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Field)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// DuplicateField returns the field carried by a DuplicateKeyError in the
// chain, or an empty string.
func DuplicateField(err error) string {
	var dupErr *DuplicateKeyError
	if errors.As(err, &dupErr) {
		return dupErr.Field
	}
	return ""
}

func ValidationError(details map[string]string) *AppError {
	e := NewAppError(
		ErrInvalidInput,
		"validation failed",
		http.StatusBadRequest,
		CodeValidation,
	)
	e.Details = details
	return e
}

func BadRequestError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		CodeValidation,
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		CodeAuthentication,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"access token expired",
		http.StatusUnauthorized,
		CodeAuthentication,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid access token",
		http.StatusUnauthorized,
		CodeAuthentication,
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(
		ErrForbidden,
		message,
		http.StatusForbidden,
		CodeAuthorization,
	)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		CodeNotFound,
	)
}

func DuplicateError(field string) *AppError {
	e := NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		CodeDuplicateKey,
	)
	e.Details = map[string]string{field: "already exists"}
	return e
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		CodeServer,
	)
}
