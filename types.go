package appstate

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Strategy is the base capability every authentication variant implements.
// Optional capabilities (TokenFetcher, TokenExchanger, UserSession) are
// discovered by type assertion on the same value.
type Strategy interface {
	Name() string
}

// TokenFetcher fetches a room access token for an identity.
type TokenFetcher interface {
	GetToken(ctx context.Context, identity, roomName string, opts ...TokenOption) (string, error)
}

// TokenExchanger trades an application JWT for a session token payload.
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, rawJWT, host string) (*SessionToken, error)
}

// UserSession is implemented by delegated strategies that manage a signed-in
// user (provider sign-in, passcode sign-in).
type UserSession interface {
	User() *User
	SignIn(ctx context.Context, credential string) error
	SignOut(ctx context.Context) error
	Ready() bool
}

// User holds the attributes a delegated strategy knows about the signed-in user.
type User struct {
	ID          string         `json:"id,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	Email       string         `json:"email,omitempty"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	Passcode    string         `json:"passcode,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SessionToken is the payload returned by the JWT exchange endpoint.
type SessionToken struct {
	Token    string `json:"token"`
	Identity string `json:"identity,omitempty"`
	RoomType string `json:"room_type,omitempty"`

	// Raw holds the full decoded payload for fields we do not model.
	Raw map[string]any `json:"-"`
}

// TokenValidator validates tokens without tying callers to a specific
// signing implementation.
type TokenValidator interface {
	Validate(tokenString string) error
}

// TokenOption configures a token request.
type TokenOption func(*tokenConfig)

// WithPasscode appends the passcode parameter to the token request.
func WithPasscode(passcode string) TokenOption {
	return func(c *tokenConfig) {
		c.passcode = passcode
	}
}

type tokenConfig struct {
	passcode string
}

// ApplyTokenOptions applies TokenOption values and returns a normalized config.
func ApplyTokenOptions(opts ...TokenOption) TokenConfig {
	cfg := tokenConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return TokenConfig{Passcode: cfg.passcode}
}

// TokenConfig represents applied token options in a strategy-friendly form.
type TokenConfig struct {
	Passcode string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] APPSTATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] APPSTATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] APPSTATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
