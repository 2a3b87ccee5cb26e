package http

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestStateSigner_RoundTrip(t *testing.T) {
	s := NewStateSigner(testSecret, "connector", time.Minute)

	tok, err := s.Sign(StateClaims{Connector: "fudan", RedirectURI: "https://cb", Nonce: "n-1"})
	require.NoError(t, err)

	claims, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "fudan", claims.Connector)
	assert.Equal(t, "https://cb", claims.RedirectURI)
	assert.Equal(t, "n-1", claims.Nonce)
	assert.Equal(t, jwtv5.ClaimStrings{StateAudience}, claims.Audience)
}

func TestStateSigner_Rejects(t *testing.T) {
	s := NewStateSigner(testSecret, "connector", time.Minute)
	tok, err := s.Sign(StateClaims{Connector: "fudan", Nonce: "n"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		late := NewStateSigner(testSecret, "connector", time.Minute)
		late.now = func() time.Time { return time.Now().Add(5 * time.Minute) }
		_, err := late.Parse(tok)
		assert.ErrorIs(t, err, ErrStateExpired)
	})

	t.Run("issuer", func(t *testing.T) {
		_, err := NewStateSigner(testSecret, "other", time.Minute).Parse(tok)
		assert.ErrorIs(t, err, ErrStateIssuer)
	})

	t.Run("signature", func(t *testing.T) {
		_, err := NewStateSigner([]byte("another-secret-another-secret-xx"), "connector", time.Minute).Parse(tok)
		assert.ErrorIs(t, err, ErrStateInvalid)
	})

	t.Run("audience", func(t *testing.T) {
		claims := jwtv5.MapClaims{
			"iss": "connector", "aud": "social-state",
			"exp": time.Now().Add(time.Minute).Unix(), "nonce": "n",
		}
		other, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = s.Parse(other)
		assert.ErrorIs(t, err, ErrStateAudience)
	})

	t.Run("alg none", func(t *testing.T) {
		none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"iss": "connector"}).
			SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Parse(none)
		assert.ErrorIs(t, err, ErrStateInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrStateInvalid)
	})
}
