// Package appstate provides the shared application state for a video chat
// client: an error slot, a fetching flag, and the token operations the UI
// needs to join a room.
//
// Strategy selection:
//   - Exactly one authentication strategy is active per process. The variant
//     is resolved once at startup by NewFromConfig: anonymous token fetch
//     (the default), JWT exchange, or a delegated provider registered under
//     AUTH_MODE (firebase, passcode).
//   - Strategies expose optional capabilities (TokenFetcher, TokenExchanger,
//     UserSession) discovered by type assertion. Consumers must tolerate the
//     absence of any optional capability.
//
// State bookkeeping:
//   - Both token operations flip IsFetching for the duration of the request
//     and mirror failures into the shared error slot while still returning
//     the error to the caller. Nothing is swallowed, nothing is retried.
//   - Close cancels outstanding requests; completions that land after Close
//     never touch the shared state.
package appstate
