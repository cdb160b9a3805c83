package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GenericErrorMessage is shown when a failure carries no usable text.
const GenericErrorMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response from the reminder service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

var (
	// ErrNotFound is returned by backends for unknown reminder IDs.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is wrapped by backends that reject a write payload.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorMessage picks the text to show a user for err: the service's own
// message when there is one, otherwise the error text, otherwise a generic
// fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return GenericErrorMessage
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
