package providers

import (
	"errors"
	"fmt"
)

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError reports whether err was caused by rejected credentials.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

type statusError struct {
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.statusCode, e.body)
}

// ErrCancelled is returned when the person at the terminal abandons an
// interactive review.
var ErrCancelled = errors.New("review cancelled")
