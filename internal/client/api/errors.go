package api

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks transport-level failures (server down, refused
// connection). Callers use errors.Is to fall back to offline behaviour.
var ErrUnavailable = errors.New("server unavailable")

// Error is a non-2xx response from the server, carrying the HTTP status and
// the error message from the response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}
