package appstate

import (
	"context"
)

var appStateCtxKey = &contextKey{"appstate"}

type contextKey struct {
	name string
}

// WithContext sets the AppState in the given context
func WithContext(ctx context.Context, state *AppState) context.Context {
	return context.WithValue(ctx, appStateCtxKey, state)
}

// FromContext finds the AppState from the context.
func FromContext(ctx context.Context) (*AppState, bool) {
	raw, ok := ctx.Value(appStateCtxKey).(*AppState)
	return raw, ok
}

// MustFromContext extracts the AppState or panics when the context was never
// wrapped by WithContext. Intended to fail loudly during development.
func MustFromContext(ctx context.Context) *AppState {
	state, ok := FromContext(ctx)
	if !ok {
		panic("useAppState must be used within the AppStateProvider")
	}
	return state
}
