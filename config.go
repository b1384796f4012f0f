package appstate

import (
	"errors"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/goliatone/go-appstate/provider/jwks"
)

// Recognized auth modes and strategies.
const (
	ModeFirebase = "firebase"
	ModePasscode = "passcode"

	StrategyJWT = "jwt"
)

// DefaultTokenEndpoint is used by the anonymous strategy when none is configured.
const DefaultTokenEndpoint = "/token"

// Config holds the options used to select and build the active strategy
type Config interface {
	GetAuthMode() string
	GetAuthStrategy() string
	GetTokenEndpoint() string
	GetPasscodeEndpoint() string
	GetFirebaseCredentialsFile() string
	GetJWKSEndpoint() string
}

// EnvConfig is the environment-backed Config implementation.
type EnvConfig struct {
	AuthMode                string `env:"AUTH_MODE"`
	AuthStrategy            string `env:"AUTH_STRATEGY"`
	TokenEndpoint           string `env:"TOKEN_ENDPOINT" envDefault:"/token"`
	PasscodeEndpoint        string `env:"PASSCODE_ENDPOINT"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	JWKSEndpoint            string `env:"JWKS_ENDPOINT"`
}

// LoadEnv reads the configuration from the process environment and
// validates it.
func LoadEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks recognized values and mode exclusivity.
func (c EnvConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AuthMode,
			validation.In("", ModeFirebase, ModePasscode),
		),
		validation.Field(&c.AuthStrategy,
			validation.In("", StrategyJWT),
			validation.By(func(any) error {
				if c.AuthMode != "" && c.AuthStrategy != "" {
					return errors.New("mutually exclusive with auth mode")
				}
				return nil
			}),
		),
	)
}

func (c EnvConfig) GetAuthMode() string     { return c.AuthMode }
func (c EnvConfig) GetAuthStrategy() string { return c.AuthStrategy }

func (c EnvConfig) GetTokenEndpoint() string {
	if c.TokenEndpoint == "" {
		return DefaultTokenEndpoint
	}
	return c.TokenEndpoint
}

func (c EnvConfig) GetPasscodeEndpoint() string {
	if c.PasscodeEndpoint == "" {
		return c.GetTokenEndpoint()
	}
	return c.PasscodeEndpoint
}

func (c EnvConfig) GetFirebaseCredentialsFile() string { return c.FirebaseCredentialsFile }
func (c EnvConfig) GetJWKSEndpoint() string            { return c.JWKSEndpoint }

// NewFromConfig resolves exactly one strategy from the configuration and
// wraps it in an AppState. Resolution happens once, here, never per call:
//   - AUTH_MODE set: a registered delegated provider (firebase, passcode)
//   - AUTH_STRATEGY=jwt: the JWT exchange strategy
//   - otherwise: the anonymous token fetch against TOKEN_ENDPOINT
func NewFromConfig(cfg Config, opts ...Option) (*AppState, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	strategy, err := strategyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return New(strategy, opts...), nil
}

func validateConfig(cfg Config) error {
	if cfg == nil {
		return errors.New("appstate: config is required")
	}
	if v, ok := cfg.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}

func strategyFromConfig(cfg Config) (Strategy, error) {
	if mode := cfg.GetAuthMode(); mode != "" {
		factory, err := providerFactory(mode)
		if err != nil {
			return nil, err
		}
		return factory(cfg)
	}

	if cfg.GetAuthStrategy() == StrategyJWT {
		exchangeCfg := ExchangeConfig{}
		if endpoint := cfg.GetJWKSEndpoint(); endpoint != "" {
			validator, err := jwks.New(jwks.Config{Endpoint: endpoint})
			if err != nil {
				return nil, err
			}
			exchangeCfg.Validator = validator
		}
		return NewExchangeStrategy(exchangeCfg), nil
	}

	return NewAnonymousStrategy(AnonymousConfig{
		Endpoint: cfg.GetTokenEndpoint(),
	}), nil
}
