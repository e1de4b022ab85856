package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure the way the UI needs to react to it,
// not by transport detail.
type Kind string

// Error kinds
const (
	KindNotAuthenticated Kind = "not_authenticated" // no token before the call was made
	KindSessionExpired   Kind = "session_expired"   // 401 from an authenticated call
	KindConflict         Kind = "conflict"          // 409, duplicate registration
	KindCapacityExceeded Kind = "capacity_exceeded" // 400 on registration create
	KindForbidden        Kind = "forbidden"         // 403, not the caller's resource
	KindNotFound         Kind = "not_found"         // 404
	KindValidation       Kind = "validation"        // client-side, never reached the network
	KindTransport        Kind = "transport"         // network failure, no structured response
	KindUnknown          Kind = "unknown"           // structured backend error outside the taxonomy
)

// Error is a classified gateway failure. Message carries the backend's own
// message when one was delivered, otherwise a classification default.
type Error struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from any error. Non-gateway errors
// classify as transport failures.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// MessageOf returns the user-facing message carried by a gateway error, or
// the fallback when the error carries none.
func MessageOf(err error, fallback string) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return fallback
}

// classify maps an HTTP error status to a Kind. Registration creates treat
// 400 as the backend's capacity rejection; everything else keeps the generic
// mapping.
func classify(status int, registrationCreate bool) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindSessionExpired
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		if registrationCreate {
			return KindCapacityExceeded
		}
		return KindUnknown
	default:
		return KindUnknown
	}
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindSessionExpired:
		return "session expired, please sign in again"
	case KindConflict:
		return "already registered for this activity"
	case KindCapacityExceeded:
		return "activity is full"
	case KindForbidden:
		return "this registration does not belong to you"
	case KindNotFound:
		return "registration not found"
	case KindTransport:
		return "request failed, please try again"
	default:
		return "request failed"
	}
}
