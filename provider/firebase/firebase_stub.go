//go:build !firebase
// +build !firebase

package firebase

import (
	"context"
	"errors"

	"github.com/goliatone/go-appstate"
)

func newProvider(_ context.Context, _ Config) (appstate.Strategy, error) {
	return nil, errors.New("firebase provider unavailable in this build; compile with -tags firebase")
}
