package appstate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-appstate"
)

func TestEnvConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  appstate.EnvConfig
		wantErr bool
	}{
		{
			name:   "empty selects default mode",
			config: appstate.EnvConfig{TokenEndpoint: "/token"},
		},
		{
			name:   "firebase mode",
			config: appstate.EnvConfig{AuthMode: "firebase", TokenEndpoint: "/token"},
		},
		{
			name:   "passcode mode",
			config: appstate.EnvConfig{AuthMode: "passcode", TokenEndpoint: "/token"},
		},
		{
			name:   "jwt strategy",
			config: appstate.EnvConfig{AuthStrategy: "jwt", TokenEndpoint: "/token"},
		},
		{
			name:    "unknown mode rejected",
			config:  appstate.EnvConfig{AuthMode: "saml", TokenEndpoint: "/token"},
			wantErr: true,
		},
		{
			name:    "unknown strategy rejected",
			config:  appstate.EnvConfig{AuthStrategy: "oauth", TokenEndpoint: "/token"},
			wantErr: true,
		},
		{
			name:    "mode and strategy are mutually exclusive",
			config:  appstate.EnvConfig{AuthMode: "passcode", AuthStrategy: "jwt", TokenEndpoint: "/token"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "")
	t.Setenv("AUTH_STRATEGY", "")
	t.Setenv("TOKEN_ENDPOINT", "")

	cfg, err := appstate.LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/token", cfg.GetTokenEndpoint())
	assert.Empty(t, cfg.GetAuthMode())
	assert.Empty(t, cfg.GetAuthStrategy())
	// passcode endpoint falls back to the token endpoint
	assert.Equal(t, "/token", cfg.GetPasscodeEndpoint())
}

func TestLoadEnvReadsValues(t *testing.T) {
	t.Setenv("AUTH_STRATEGY", "jwt")
	t.Setenv("TOKEN_ENDPOINT", "/api/token")

	cfg, err := appstate.LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "jwt", cfg.GetAuthStrategy())
	assert.Equal(t, "/api/token", cfg.GetTokenEndpoint())
}

func TestNewFromConfigSelectsAnonymousByDefault(t *testing.T) {
	state, err := appstate.NewFromConfig(appstate.EnvConfig{TokenEndpoint: "/token"})
	require.NoError(t, err)
	defer state.Close()

	assert.Equal(t, "anonymous", state.Strategy().Name())
	assert.IsType(t, &appstate.AnonymousStrategy{}, state.Strategy())
}

func TestNewFromConfigSelectsExchange(t *testing.T) {
	state, err := appstate.NewFromConfig(appstate.EnvConfig{
		AuthStrategy:  "jwt",
		TokenEndpoint: "/token",
	})
	require.NoError(t, err)
	defer state.Close()

	assert.Equal(t, "jwt", state.Strategy().Name())
	assert.IsType(t, &appstate.ExchangeStrategy{}, state.Strategy())
}

func TestNewFromConfigUnknownModeFails(t *testing.T) {
	_, err := appstate.NewFromConfig(fixedConfig{mode: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auth mode")
}

func TestNewFromConfigDelegatedMode(t *testing.T) {
	appstate.RegisterProvider("test-delegated", func(cfg appstate.Config) (appstate.Strategy, error) {
		return &stubFetcher{token: "delegated-token"}, nil
	})

	state, err := appstate.NewFromConfig(fixedConfig{mode: "test-delegated"})
	require.NoError(t, err)
	defer state.Close()

	assert.Equal(t, "stub", state.Strategy().Name())
}

func TestNewFromConfigFactoryErrorPropagates(t *testing.T) {
	boom := errors.New("provider unavailable")
	appstate.RegisterProvider("test-broken", func(cfg appstate.Config) (appstate.Strategy, error) {
		return nil, boom
	})

	_, err := appstate.NewFromConfig(fixedConfig{mode: "test-broken"})
	assert.ErrorIs(t, err, boom)
}

func TestNewFromConfigInvalidConfig(t *testing.T) {
	_, err := appstate.NewFromConfig(appstate.EnvConfig{
		AuthMode:      "passcode",
		AuthStrategy:  "jwt",
		TokenEndpoint: "/token",
	})
	assert.Error(t, err)

	_, err = appstate.NewFromConfig(nil)
	assert.Error(t, err)
}

// fixedConfig bypasses EnvConfig validation so tests can exercise arbitrary modes.
type fixedConfig struct {
	mode     string
	strategy string
}

func (c fixedConfig) GetAuthMode() string                { return c.mode }
func (c fixedConfig) GetAuthStrategy() string            { return c.strategy }
func (c fixedConfig) GetTokenEndpoint() string           { return "/token" }
func (c fixedConfig) GetPasscodeEndpoint() string        { return "/token" }
func (c fixedConfig) GetFirebaseCredentialsFile() string { return "" }
func (c fixedConfig) GetJWKSEndpoint() string            { return "" }
