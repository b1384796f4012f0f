// Package passcode implements the delegated passcode sign-in strategy: a
// shared passcode is verified against the token endpoint once, held in
// memory, and attached to every subsequent token request.
package passcode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-appstate"
)

// Credentials used to probe the endpoint during passcode verification.
// The endpoint rejects bad passcodes before it looks at the identity.
const (
	verifyIdentity = "temp-name"
	verifyRoom     = "temp-room"
)

// Config holds passcode provider options.
type Config struct {
	// Endpoint receives verification and token requests.
	Endpoint string

	HTTPClient *http.Client
	Logger     appstate.Logger
}

// Provider implements appstate.TokenFetcher and appstate.UserSession.
type Provider struct {
	endpoint   string
	httpClient *http.Client
	logger     appstate.Logger

	mu       sync.Mutex
	passcode string
	user     *appstate.User
}

var (
	_ appstate.TokenFetcher = (*Provider)(nil)
	_ appstate.UserSession  = (*Provider)(nil)
)

func init() {
	appstate.RegisterProvider(appstate.ModePasscode, func(cfg appstate.Config) (appstate.Strategy, error) {
		return New(Config{Endpoint: cfg.GetPasscodeEndpoint()}), nil
	})
}

// New creates a passcode provider.
func New(cfg Config) *Provider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = appstate.DefaultTokenEndpoint
	}

	return &Provider{
		endpoint:   endpoint,
		httpClient: client,
		logger:     logger,
	}
}

// Name implements appstate.Strategy.
func (p *Provider) Name() string {
	return appstate.ModePasscode
}

// SignIn verifies the passcode against the endpoint and stores it on
// success. Rejections map to appstate.ErrPasscodeIncorrect or
// appstate.ErrPasscodeExpired.
func (p *Provider) SignIn(ctx context.Context, passcode string) error {
	if _, err := p.requestToken(ctx, verifyIdentity, verifyRoom, passcode); err != nil {
		return err
	}

	p.mu.Lock()
	p.passcode = passcode
	p.user = &appstate.User{Passcode: passcode}
	p.mu.Unlock()

	p.logger.Debug("passcode verified")
	return nil
}

// SignOut forgets the stored passcode and user.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.passcode = ""
	p.user = nil
	p.mu.Unlock()
	return nil
}

// User implements appstate.UserSession.
func (p *Provider) User() *appstate.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Ready implements appstate.UserSession. There is no async restore step, so
// the provider is ready as soon as it exists.
func (p *Provider) Ready() bool {
	return true
}

// GetToken implements appstate.TokenFetcher using the stored passcode. An
// explicit appstate.WithPasscode option overrides it.
func (p *Provider) GetToken(ctx context.Context, identity, roomName string, opts ...appstate.TokenOption) (string, error) {
	cfg := appstate.ApplyTokenOptions(opts...)

	passcode := cfg.Passcode
	if passcode == "" {
		p.mu.Lock()
		passcode = p.passcode
		p.mu.Unlock()
	}

	return p.requestToken(ctx, identity, roomName, passcode)
}

type tokenRequest struct {
	UserIdentity string `json:"user_identity"`
	RoomName     string `json:"room_name"`
	Passcode     string `json:"passcode"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) requestToken(ctx context.Context, identity, roomName, passcode string) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		UserIdentity: identity,
		RoomName:     roomName,
		Passcode:     passcode,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var decoded tokenResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decoded.Error != nil {
			if err := appstate.PasscodeErrorFromMessage(decoded.Error.Message); err != nil {
				return "", err
			}
		}
		return "", appstate.AuthErrorFromResponse(resp.StatusCode, body)
	}

	if decoded.Token == "" {
		return "", appstate.ErrMissingToken
	}

	return decoded.Token, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
