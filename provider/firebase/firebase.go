//go:build firebase
// +build firebase

package firebase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/goliatone/go-appstate"
)

// Provider implements appstate.TokenFetcher and appstate.UserSession on top
// of Firebase Auth: SignIn verifies an ID token, GetToken forwards it to the
// token endpoint as the bearer credential.
type Provider struct {
	client     *firebaseauth.Client
	endpoint   string
	httpClient *http.Client

	mu      sync.Mutex
	user    *appstate.User
	idToken string
}

var (
	_ appstate.TokenFetcher = (*Provider)(nil)
	_ appstate.UserSession  = (*Provider)(nil)
)

// New creates a Firebase-backed provider from a service account credentials file.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.CredentialsFile) == "" {
		return nil, errors.New("firebase credentials file is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = appstate.DefaultTokenEndpoint
	}

	return &Provider{
		client:     client,
		endpoint:   endpoint,
		httpClient: httpClient,
	}, nil
}

func newProvider(ctx context.Context, cfg Config) (appstate.Strategy, error) {
	return New(ctx, cfg)
}

// Name implements appstate.Strategy.
func (p *Provider) Name() string {
	return appstate.ModeFirebase
}

// SignIn verifies the Firebase ID token and stores the resulting user.
func (p *Provider) SignIn(ctx context.Context, idToken string) error {
	if idToken == "" {
		return errors.New("missing id token")
	}

	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return err
	}

	user := &appstate.User{ID: token.UID}
	if name, ok := token.Claims["name"].(string); ok {
		user.DisplayName = name
	}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		user.PhotoURL = picture
	}

	p.mu.Lock()
	p.user = user
	p.idToken = idToken
	p.mu.Unlock()

	return nil
}

// SignOut forgets the verified user and credential.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.user = nil
	p.idToken = ""
	p.mu.Unlock()
	return nil
}

// User implements appstate.UserSession.
func (p *Provider) User() *appstate.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Ready implements appstate.UserSession.
func (p *Provider) Ready() bool {
	return true
}

// GetToken implements appstate.TokenFetcher: the token endpoint is called
// with the verified ID token as the bearer credential and returns the room
// token as plain text.
func (p *Provider) GetToken(ctx context.Context, identity, roomName string, opts ...appstate.TokenOption) (string, error) {
	p.mu.Lock()
	idToken := p.idToken
	p.mu.Unlock()

	if idToken == "" {
		return "", errors.New("not signed in")
	}

	params := url.Values{
		"identity": {identity},
		"roomName": {roomName},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", appstate.AuthErrorFromResponse(resp.StatusCode, body)
	}

	return string(body), nil
}
