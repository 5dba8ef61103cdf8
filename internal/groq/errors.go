package groq

import (
	"errors"
	"fmt"
)

// Kind separates the failure categories the caller maps to distinct
// user-facing messages.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindStatus       Kind = "status"
	KindOther        Kind = "other"
)

// APIError wraps any upstream failure with its category. Status is only set
// for KindStatus.
type APIError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("groq api status %d: %v", e.Status, e.Err)
	case KindConnectivity:
		return fmt.Sprintf("groq connection error: %v", e.Err)
	default:
		return fmt.Sprintf("groq error: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf classifies an error returned by an oracle call. Errors that are not
// APIErrors count as KindOther.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}
