package appstate

import (
	"errors"
	"strings"
)

// ErrNotSupported is returned when the active strategy lacks the requested capability
var ErrNotSupported = errors.New("operation not supported by active strategy")

// ErrClosed is returned for requests started after the state was torn down
var ErrClosed = errors.New("app state is closed")

// ErrMissingToken is the error when a token response carries no token
var ErrMissingToken = errors.New("missing token in response")

// ErrPasscodeIncorrect is the error for a rejected passcode
var ErrPasscodeIncorrect = errors.New("passcode incorrect")

// ErrPasscodeExpired is the error for an expired passcode
var ErrPasscodeExpired = errors.New("passcode expired")

// IsPasscodeError will check for passcode verification failures
func IsPasscodeError(err error) bool {
	return errors.Is(err, ErrPasscodeIncorrect) || errors.Is(err, ErrPasscodeExpired)
}

// PasscodeErrorFromMessage maps an upstream error message to a passcode sentinel, or nil
func PasscodeErrorFromMessage(msg string) error {
	switch {
	case strings.Contains(msg, "passcode expired"):
		return ErrPasscodeExpired
	case strings.Contains(msg, "passcode incorrect"):
		return ErrPasscodeIncorrect
	default:
		return nil
	}
}
