package oauth2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"responseType":  "response_type",
		"clientId":      "client_id",
		"redirectUri":   "redirect_uri",
		"refreshToken":  "refresh_token",
		"state":         "state",
		"grant_type":    "grant_type",
		"HTTPTimeout":   "http_timeout",
		"codeVerifier2": "code_verifier2",
		"version2Beta":  "version2_beta",
		"ui-locales":    "ui_locales",
		"":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SnakeCase(in), "SnakeCase(%q)", in)
	}
}

func TestEncodeParams_NamedWinsAndEmptyDropped(t *testing.T) {
	v := encodeParams(
		[]param{{"grantType", "authorization_code"}, {"code", ""}},
		map[string]string{"grant_type": "other", "uiLocales": "zh-CN", "prompt": "", "clientSecret": "s"},
		credentialKeys...,
	)

	assert.Equal(t, "authorization_code", v.Get("grant_type"))
	assert.Equal(t, "zh-CN", v.Get("ui_locales"))
	assert.NotContains(t, v, "code")
	assert.NotContains(t, v, "prompt")
	assert.NotContains(t, v, "client_secret")
}
