package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CTALabelClose is the call-to-action label stamped on exchange failures.
const CTALabelClose = "Close"

// AuthError is the structured error surfaced through the shared error slot.
// CTALabel and CTAAction describe the call-to-action the UI should render
// alongside the message.
type AuthError struct {
	Code     int    `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
	CTALabel string `json:"cta_label,omitempty"`

	CTAAction func() `json:"-"`

	cause error
}

func (e *AuthError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AuthError) Unwrap() error {
	return e.cause
}

// WithCTA returns a copy of the error carrying the given call-to-action.
func (e *AuthError) WithCTA(label string, action func()) *AuthError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.CTALabel = label
	clone.CTAAction = action
	return &clone
}

// AsAuthError coerces any error into an AuthError, preserving the original
// value as the cause so callers can still match on it.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return &AuthError{
		Message: err.Error(),
		cause:   err,
	}
}

// errorPayload is the wire shape `{code, error, message}` used by the token
// endpoints for failed requests.
type errorPayload struct {
	Code    int    `json:"code,omitempty"`
	Name    string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// AuthErrorFromResponse maps a non-2xx token response into an AuthError.
// When the body decodes as an error payload its fields win; otherwise the
// raw body becomes the message. Best effort, never fails.
func AuthErrorFromResponse(statusCode int, body []byte) *AuthError {
	authErr := &AuthError{
		Code:    statusCode,
		Name:    http.StatusText(statusCode),
		Message: string(body),
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Code != 0 {
			authErr.Code = payload.Code
		}
		if payload.Name != "" {
			authErr.Name = payload.Name
		}
		if payload.Message != "" {
			authErr.Message = payload.Message
		}
	}

	return authErr
}
