package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates rejected credentials or a missing/expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the upstream denied access to an existing account or resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the requested resource does not exist upstream.
	ErrNotFound = errors.New("not found")
)

// APIError carries the HTTP status and the upstream detail of a failed gateway call.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("gateway: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("gateway: unexpected status %d", e.Status)
}

// Is maps well-known statuses onto the package sentinels so callers can
// branch with errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// statusError builds an APIError from a non-2xx response body. The gateway
// wraps errors as {"detail": ...} where detail is either a plain string or
// an object with an "error" field; both forms are tolerated, as is neither.
func statusError(status int, body []byte) error {
	return &APIError{Status: status, Detail: extractDetail(body)}
}

func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil {
		return asString
	}
	var asObject struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &asObject); err == nil {
		if asObject.Error != "" {
			return asObject.Error
		}
		return asObject.Message
	}
	return ""
}
