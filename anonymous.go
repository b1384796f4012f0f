package appstate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// AnonymousConfig holds the options for the default token fetch strategy.
type AnonymousConfig struct {
	// Endpoint receives the token request. Defaults to /token.
	Endpoint string

	HTTPClient *http.Client
	Logger     Logger
}

// AnonymousStrategy is the default variant: no sign-in, tokens are fetched
// from the configured endpoint with identity and roomName query parameters
// and the response body is the token text verbatim.
type AnonymousStrategy struct {
	endpoint   string
	httpClient *http.Client
	logger     Logger
}

var _ TokenFetcher = (*AnonymousStrategy)(nil)

// NewAnonymousStrategy creates the default token fetch strategy.
func NewAnonymousStrategy(cfg AnonymousConfig) *AnonymousStrategy {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &AnonymousStrategy{
		endpoint:   endpoint,
		httpClient: client,
		logger:     logger,
	}
}

// Name implements Strategy.
func (s *AnonymousStrategy) Name() string {
	return "anonymous"
}

// GetToken implements TokenFetcher.
func (s *AnonymousStrategy) GetToken(ctx context.Context, identity, roomName string, opts ...TokenOption) (string, error) {
	cfg := ApplyTokenOptions(opts...)

	params := url.Values{
		"identity": {identity},
		"roomName": {roomName},
	}
	if cfg.Passcode != "" {
		params.Set("passcode", cfg.Passcode)
	}

	endpoint := s.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("token endpoint returned %d", resp.StatusCode)
		return "", AuthErrorFromResponse(resp.StatusCode, body)
	}

	return string(body), nil
}
