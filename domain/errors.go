package domain

import (
	"errors"
	"fmt"
)

// ErrNoCredential means the user has not registered an API token yet.
// The caller should prompt for registration instead of failing.
var ErrNoCredential = errors.New("no credential registered for user")

// ErrNoSession means the user never talked to the bot in this process,
// so there is no conversation memory to clear.
var ErrNoSession = errors.New("no active session for user")

// RequestError is a non-200 answer from the inference endpoint.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("inference endpoint returned %d: %s", e.StatusCode, e.Body)
}

// DecodingError is a 200 answer whose body matches neither of the
// recognized response shapes. The raw body is kept for diagnosis.
type DecodingError struct {
	Body string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("unexpected response format: %s", e.Body)
}
