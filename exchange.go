package appstate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const exchangePath = "/video_chat_sessions/token"

// ExchangeConfig holds the options for the JWT exchange strategy.
type ExchangeConfig struct {
	// Scheme used when the host carries none. Defaults to https.
	Scheme string

	// Validator, when set, verifies the returned session token before it is
	// handed to the caller.
	Validator TokenValidator

	HTTPClient *http.Client
	Logger     Logger
}

// ExchangeStrategy trades an application JWT for a session token payload at
// the session host. It fetches no plain tokens; GetToken is absent from this
// variant by design of the capability set.
type ExchangeStrategy struct {
	scheme     string
	validator  TokenValidator
	httpClient *http.Client
	logger     Logger
}

var _ TokenExchanger = (*ExchangeStrategy)(nil)

// NewExchangeStrategy creates the JWT exchange strategy.
func NewExchangeStrategy(cfg ExchangeConfig) *ExchangeStrategy {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &ExchangeStrategy{
		scheme:     scheme,
		validator:  cfg.Validator,
		httpClient: client,
		logger:     logger,
	}
}

// Name implements Strategy.
func (s *ExchangeStrategy) Name() string {
	return "jwt"
}

// ExchangeToken implements TokenExchanger.
func (s *ExchangeStrategy) ExchangeToken(ctx context.Context, rawJWT, host string) (*SessionToken, error) {
	endpoint := s.exchangeURL(rawJWT, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("session host returned %d", resp.StatusCode)
		return nil, AuthErrorFromResponse(resp.StatusCode, body)
	}

	session, err := decodeSessionToken(body)
	if err != nil {
		// The success path carried an undecodable body; surface whatever
		// error payload it holds instead.
		return nil, AuthErrorFromResponse(resp.StatusCode, body)
	}

	if s.validator != nil {
		if err := s.validator.Validate(session.Token); err != nil {
			return nil, AsAuthError(err)
		}
	}

	return session, nil
}

func (s *ExchangeStrategy) exchangeURL(rawJWT, host string) string {
	base := host
	if !strings.Contains(base, "://") {
		base = s.scheme + "://" + strings.TrimPrefix(base, "//")
	}
	base = strings.TrimSuffix(base, "/")

	params := url.Values{"jwt": {rawJWT}}
	return base + exchangePath + "?" + params.Encode()
}

func decodeSessionToken(body []byte) (*SessionToken, error) {
	var session SessionToken
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, ErrMissingToken
	}

	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err == nil {
		session.Raw = raw
	}

	return &session, nil
}
