// Package jwks validates session tokens against a remote JWK Set, so the
// payload returned by the JWT exchange can be checked before use.
package jwks

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds JWKS validator options.
type Config struct {
	// Endpoint is the JWK Set URL.
	Endpoint string

	// Issuer and Audience, when set, are enforced during validation.
	Issuer   string
	Audience string

	// RefreshInterval for the background key refresh. Defaults to one hour.
	RefreshInterval time.Duration

	Logger Logger
}

// Logger matches the appstate logging surface without importing it, keeping
// this package usable on its own.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Validator verifies session tokens on top of a cached JWK Set. It satisfies
// the root package's TokenValidator interface.
type Validator struct {
	jwks   *keyfunc.JWKS
	issuer string
	aud    string
}

// New fetches the JWK Set and returns a validator that refreshes it in the
// background. Call Close when done.
func New(cfg Config) (*Validator, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("jwks: endpoint is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.Endpoint, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   refresh,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("jwks: failed to get JWK Set from %s: %w", cfg.Endpoint, err)
	}

	return &Validator{
		jwks:   jwks,
		issuer: cfg.Issuer,
		aud:    cfg.Audience,
	}, nil
}

// Validate checks the signature and registered claims of the given token.
func (v *Validator) Validate(tokenString string) error {
	opts := make([]jwt.ParserOption, 0, 2)
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.aud != "" {
		opts = append(opts, jwt.WithAudience(v.aud))
	}

	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, opts...)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("jwks: invalid token")
	}
	return nil
}

// Close stops the background refresh.
func (v *Validator) Close() {
	v.jwks.EndBackground()
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
