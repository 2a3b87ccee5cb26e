package oauth2

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"clientId":"id","clientSecret":"secret"}`))
	require.NoError(t, err)

	assert.Equal(t, ResponseTypeCode, cfg.ResponseType)
	assert.Equal(t, GrantTypeAuthorizationCode, cfg.GrantType)
	assert.Equal(t, TokenResponseQueryString, cfg.TokenEndpointResponseType)
	assert.Equal(t, DefaultProfileMap(), cfg.ProfileMap)
	assert.Empty(t, cfg.Scope)
}

func TestParseConfig_PartialProfileMap(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"clientId": "id",
		"clientSecret": "secret",
		"scope": "openid",
		"tokenEndpointResponseType": "json",
		"profileMap": {"id": "user_id", "name": "full_name"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, TokenResponseJSON, cfg.TokenEndpointResponseType)
	assert.Equal(t, "openid", cfg.Scope)
	assert.Equal(t, ProfileMap{ID: "user_id", Email: "email", Phone: "phone", Name: "full_name", Avatar: "avatar"}, cfg.ProfileMap)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing secret":    `{"clientId":"id"}`,
		"wrong type":        `{"clientId":1,"clientSecret":"s"}`,
		"bad response type": `{"clientId":"id","clientSecret":"s","responseType":"token"}`,
		"bad grant type":    `{"clientId":"id","clientSecret":"s","grantType":"password"}`,
		"bad format":        `{"clientId":"id","clientSecret":"s","tokenEndpointResponseType":"xml"}`,
		"bad profile map":   `{"clientId":"id","clientSecret":"s","profileMap":{"id":3}}`,
		"not an object":     `[]`,
		"not json":          `clientId=id`,
		"null scope":        `{"clientId":"id","clientSecret":"s","scope":null}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, cerrors.ErrInvalidConfig), "got %v", err)
		})
	}
}
