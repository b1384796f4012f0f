// Package firebase implements the delegated provider sign-in strategy
// backed by Firebase Auth. The real implementation requires the firebase
// build tag; default builds register a stub that fails at selection time so
// the dependency stays opt-in.
package firebase

import (
	"context"
	"net/http"

	"github.com/goliatone/go-appstate"
)

// Config holds Firebase provider options.
type Config struct {
	// CredentialsFile is the service account credentials path.
	CredentialsFile string

	// Endpoint receives token requests authorized with the verified ID token.
	Endpoint string

	HTTPClient *http.Client
}

func init() {
	appstate.RegisterProvider(appstate.ModeFirebase, func(cfg appstate.Config) (appstate.Strategy, error) {
		return newProvider(context.Background(), Config{
			CredentialsFile: cfg.GetFirebaseCredentialsFile(),
			Endpoint:        cfg.GetTokenEndpoint(),
		})
	})
}
