package mcpspace

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed API call.
type ErrorKind int

const (
	// KindTransport means the request never produced a response.
	KindTransport ErrorKind = iota
	// KindUnauthorized is a 401 from the API.
	KindUnauthorized
	// KindNotFound is a 404 from the API.
	KindNotFound
	// KindBadRequest is a 400 from the API.
	KindBadRequest
	// KindGeneric is any other non-success status.
	KindGeneric
	// KindParse means the response body was not valid JSON where a value
	// was expected.
	KindParse
)

// String makes ErrorKind satisfy the fmt.Stringer interface.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindGeneric:
		return "generic"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// APIError is the error returned by every failed Client call. Message holds
// the user-facing text; Status is the HTTP status for remote errors, zero
// otherwise.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-success HTTP status and its error detail to an
// APIError. The messages are part of the client's contract; callers and
// tests depend on their exact shape.
func classifyStatus(status int, detail string) *APIError {
	switch status {
	case http.StatusUnauthorized:
		return &APIError{
			Kind:    KindUnauthorized,
			Status:  status,
			Message: "Unauthorized: Please check your API token",
		}
	case http.StatusNotFound:
		return &APIError{
			Kind:    KindNotFound,
			Status:  status,
			Message: "Resource not found",
		}
	case http.StatusBadRequest:
		return &APIError{
			Kind:    KindBadRequest,
			Status:  status,
			Message: fmt.Sprintf("Bad request: %s", detail),
		}
	default:
		return &APIError{
			Kind:    KindGeneric,
			Status:  status,
			Message: fmt.Sprintf("API error (%d): %s", status, detail),
		}
	}
}
