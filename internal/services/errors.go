package services

import "errors"

var (
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrUserNotFound         = errors.New("user not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrParentNotFound       = errors.New("parent comment not found")
	ErrRequestNotFound      = errors.New("verification request not found")
	ErrPendingRequestExists = errors.New("verification request already pending")
	ErrInvalidImage         = errors.New("invalid image payload")
)

// ValidationError reports a request that failed input validation. Message is
// safe to show to end users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}
