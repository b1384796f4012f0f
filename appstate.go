package appstate

import (
	"context"
	"sync"
)

// AppState owns the shared UI state for the video chat client: the active
// authentication strategy, the error slot, and the fetching flag.
type AppState struct {
	strategy    Strategy
	logger      Logger
	closeAction func()

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	inFlight int
	lastErr  *AuthError
}

// Option configures an AppState.
type Option func(*AppState)

// WithLogger sets the logger used by the state and its wrappers.
func WithLogger(logger Logger) Option {
	return func(a *AppState) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCloseAction sets the call-to-action hook stamped on exchange failures,
// e.g. closing the embedding window.
func WithCloseAction(action func()) Option {
	return func(a *AppState) {
		if action != nil {
			a.closeAction = action
		}
	}
}

// New creates an AppState around the given strategy. The strategy is fixed
// for the lifetime of the state; use NewFromConfig for configuration-driven
// selection.
func New(strategy Strategy, opts ...Option) *AppState {
	ctx, cancel := context.WithCancel(context.Background())

	state := &AppState{
		strategy:    strategy,
		logger:      defLogger{},
		closeAction: func() {},
		baseCtx:     ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(state)
		}
	}

	return state
}

// Strategy returns the active authentication strategy.
func (a *AppState) Strategy() Strategy {
	return a.strategy
}

// IsFetching reports whether any token request is in flight.
func (a *AppState) IsFetching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight > 0
}

// Error returns the last recorded error, or nil.
func (a *AppState) Error() *AuthError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// SetError records an error in the shared slot. Delegated collaborators and
// consumers may set it directly; pass nil to clear.
func (a *AppState) SetError(err *AuthError) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

// ClearError empties the error slot.
func (a *AppState) ClearError() {
	a.SetError(nil)
}

// Close tears the state down: outstanding requests are cancelled and late
// completions no longer touch the shared slots.
func (a *AppState) Close() {
	a.cancel()
}

// GetToken fetches a room access token through the active strategy, flipping
// the fetching flag for the duration and mirroring any failure into the
// error slot before returning it.
func (a *AppState) GetToken(ctx context.Context, identity, roomName string, opts ...TokenOption) (string, error) {
	fetcher, ok := a.strategy.(TokenFetcher)
	if !ok {
		return "", ErrNotSupported
	}

	ctx, done, err := a.beginFetch(ctx)
	if err != nil {
		return "", err
	}

	token, err := fetcher.GetToken(ctx, identity, roomName, opts...)
	if err != nil {
		a.logger.Error("token fetch failed: %v", err)
		done(AsAuthError(err))
		return "", err
	}

	done(nil)
	return token, nil
}

// ExchangeToken trades an application JWT for a session token through the
// active strategy. Failures are normalized into an AuthError carrying the
// Close call-to-action, recorded, and returned.
func (a *AppState) ExchangeToken(ctx context.Context, rawJWT, host string) (*SessionToken, error) {
	exchanger, ok := a.strategy.(TokenExchanger)
	if !ok {
		return nil, ErrNotSupported
	}

	ctx, done, err := a.beginFetch(ctx)
	if err != nil {
		return nil, err
	}

	session, err := exchanger.ExchangeToken(ctx, rawJWT, host)
	if err != nil {
		a.logger.Error("token exchange failed: %v", err)
		authErr := AsAuthError(err).WithCTA(CTALabelClose, a.closeAction)
		done(authErr)
		return nil, authErr
	}

	done(nil)
	return session, nil
}

// User returns the signed-in user when the active strategy manages one.
func (a *AppState) User() *User {
	if session, ok := a.strategy.(UserSession); ok {
		return session.User()
	}
	return nil
}

// SignIn delegates to the active strategy's session, when present.
func (a *AppState) SignIn(ctx context.Context, credential string) error {
	session, ok := a.strategy.(UserSession)
	if !ok {
		return ErrNotSupported
	}
	if err := session.SignIn(ctx, credential); err != nil {
		a.SetError(AsAuthError(err))
		return err
	}
	return nil
}

// SignOut delegates to the active strategy's session, when present.
func (a *AppState) SignOut(ctx context.Context) error {
	session, ok := a.strategy.(UserSession)
	if !ok {
		return ErrNotSupported
	}
	return session.SignOut(ctx)
}

// IsAuthReady reports whether the delegated session finished restoring.
// Strategies without a session are always ready.
func (a *AppState) IsAuthReady() bool {
	if session, ok := a.strategy.(UserSession); ok {
		return session.Ready()
	}
	return true
}

// beginFetch increments the in-flight counter and derives a request context
// cancelled by Close. The returned done func decrements the counter and,
// unless the state was closed mid-flight, records the outcome.
func (a *AppState) beginFetch(ctx context.Context) (context.Context, func(*AuthError), error) {
	if err := a.baseCtx.Err(); err != nil {
		return nil, nil, ErrClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.baseCtx, cancel)

	a.mu.Lock()
	a.inFlight++
	a.mu.Unlock()

	done := func(result *AuthError) {
		stop()
		cancel()

		a.mu.Lock()
		defer a.mu.Unlock()
		a.inFlight--
		if a.baseCtx.Err() != nil {
			// Closed while the request was in flight; drop the outcome.
			return
		}
		if result != nil {
			a.lastErr = result
		}
	}

	return ctx, done, nil
}
