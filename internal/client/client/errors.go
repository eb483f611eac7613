package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNoToken      = errors.New("not logged in")
)

// APIError is a non-2xx response that maps to none of the sentinel errors.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

// mapStatus turns an HTTP status and error body into an error. 2xx yields nil.
func mapStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return &APIError{StatusCode: code, Detail: detail(body)}
	}
}

// mapTransportError classifies an error returned by http.Client.Do.
func mapTransportError(err error) error {
	if errors.Is(err, ErrNoToken) {
		return ErrNoToken
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// detail extracts the "detail" member of an error body. Non-string details
// (validation error lists) are returned as raw JSON.
func detail(body []byte) string {
	var v struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err != nil || len(v.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Detail, &s); err == nil {
		return s
	}
	return string(v.Detail)
}
