package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the normalized failure raised for any gateway call. Status is
// zero when no response was received at all (transport failure);
// otherwise it holds the HTTP status and Message carries the
// server-supplied reason verbatim when one was present in the body.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.cause != nil:
		return fmt.Sprintf("api: request failed: %v", e.cause)
	case e.Message != "":
		return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api: server returned %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Network reports whether the failure happened before any response arrived.
func (e *Error) Network() bool { return e.Status == 0 }

// Unauthorized reports whether the server rejected the bearer credential.
func (e *Error) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// ServerMessage extracts the verbatim server-supplied reason from a
// gateway error, with a fallback for transport failures and non-gateway
// errors. The wallet surfaces this text unchanged to the UI layer.
func ServerMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
