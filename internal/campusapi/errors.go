package campusapi

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when the API answers with anything but JSON.
var ErrInvalidResponse = errors.New("Réponse API invalide (non-JSON)")

// HTTPError is a non-2xx JSON answer. Message is the body's "error" field
// when present.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = fmt.Sprintf("Erreur HTTP %d", status)
	}
	return &HTTPError{Status: status, Message: message}
}
