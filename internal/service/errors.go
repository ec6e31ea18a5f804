package service

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
	ErrDeviceMismatch = errors.New("session device mismatch")
	ErrLoginFailed    = errors.New("login result is not a success")

	ErrRevokeCurrentDevice = errors.New("cannot revoke current device")
)

// RejectedError is a well-formed campus API answer carrying success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

func rejected(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return &RejectedError{Message: message}
}
