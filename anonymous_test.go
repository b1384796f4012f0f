package appstate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-appstate"
)

func TestAnonymousGetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("identity"))
		assert.Equal(t, "room1", r.URL.Query().Get("roomName"))
		assert.Empty(t, r.URL.Query().Get("passcode"))
		_, _ = w.Write([]byte("tok123"))
	}))
	defer server.Close()

	strategy := appstate.NewAnonymousStrategy(appstate.AnonymousConfig{
		Endpoint: server.URL + "/token",
	})

	token, err := strategy.GetToken(context.Background(), "alice", "room1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestAnonymousGetTokenPasscodeOption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9999", r.URL.Query().Get("passcode"))
		_, _ = w.Write([]byte("tok456"))
	}))
	defer server.Close()

	strategy := appstate.NewAnonymousStrategy(appstate.AnonymousConfig{
		Endpoint: server.URL + "/token",
	})

	token, err := strategy.GetToken(context.Background(), "bob", "room2", appstate.WithPasscode("9999"))
	require.NoError(t, err)
	assert.Equal(t, "tok456", token)
}

// The upstream client ignored non-2xx statuses on the plain fetch; the
// status is surfaced as a structured error here instead.
func TestAnonymousGetTokenHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no token for you", http.StatusInternalServerError)
	}))
	defer server.Close()

	strategy := appstate.NewAnonymousStrategy(appstate.AnonymousConfig{
		Endpoint: server.URL + "/token",
	})

	_, err := strategy.GetToken(context.Background(), "alice", "room1")
	require.Error(t, err)

	var authErr *appstate.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusInternalServerError, authErr.Code)
	assert.Contains(t, authErr.Message, "no token for you")
}

func TestAnonymousThroughAppState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tok123"))
	}))
	defer server.Close()

	state := appstate.New(appstate.NewAnonymousStrategy(appstate.AnonymousConfig{
		Endpoint: server.URL + "/token",
	}))
	defer state.Close()

	token, err := state.GetToken(context.Background(), "alice", "room1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
	assert.False(t, state.IsFetching())
	assert.Nil(t, state.Error())
}
