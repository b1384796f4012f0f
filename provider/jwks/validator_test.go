package jwks_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-appstate/provider/jwks"
)

const keyID = "test-key"

func jwksServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	pub := key.Public().(*rsa.PublicKey)
	set := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": keyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestValidatorAcceptsSignedToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := jwksServer(t, key)
	defer server.Close()

	validator, err := jwks.New(jwks.Config{Endpoint: server.URL})
	require.NoError(t, err)
	defer validator.Close()

	token := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	assert.NoError(t, validator.Validate(token))
}

func TestValidatorRejectsWrongKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := jwksServer(t, key)
	defer server.Close()

	validator, err := jwks.New(jwks.Config{Endpoint: server.URL})
	require.NoError(t, err)
	defer validator.Close()

	token := signToken(t, otherKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	assert.Error(t, validator.Validate(token))
}

func TestValidatorEnforcesIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := jwksServer(t, key)
	defer server.Close()

	validator, err := jwks.New(jwks.Config{
		Endpoint: server.URL,
		Issuer:   "expected-issuer",
	})
	require.NoError(t, err)
	defer validator.Close()

	token := signToken(t, key, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	assert.Error(t, validator.Validate(token))
}

func TestValidatorRequiresEndpoint(t *testing.T) {
	_, err := jwks.New(jwks.Config{})
	assert.Error(t, err)
}
