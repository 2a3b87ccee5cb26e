package oauth2

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
)

// ParseAccessTokenResponse decodes a token endpoint body in the configured
// format and validates it.
//
// Malformed bodies and schema mismatches are invalid_response errors. A
// well-formed response without an access token means the provider refused
// the exchange and is reported as social_auth_code_invalid.
func ParseAccessTokenResponse(body []byte, format TokenEndpointResponseType) (*AccessTokenResponse, error) {
	var doc any
	if format == TokenResponseJSON {
		var err error
		if doc, err = decodeJSON(body); err != nil {
			return nil, cerrors.ErrInvalidResponse.WithData(err.Error())
		}
	} else {
		doc = decodeQueryString(string(body))
	}

	if err := accessTokenResponseGuard.check(doc); err != nil {
		return nil, cerrors.ErrInvalidResponse.WithData(err)
	}

	var out AccessTokenResponse
	if err := remarshal(doc, &out); err != nil {
		return nil, cerrors.ErrInvalidResponse.WithData(err.Error())
	}

	if out.AccessToken == "" {
		return nil, cerrors.ErrSocialAuthCodeInvalid.WithData(
			cerrors.Message("Can not find `access_token` in token response!"),
		)
	}
	return &out, nil
}

// decodeQueryString parses a url-encoded body into a document comparable
// to its JSON counterpart: single values become strings, repeated keys
// become arrays and a numeric expires_in becomes a number.
//
// Pairs that fail to decode are skipped; the remaining values are left for
// the schema to judge.
func decodeQueryString(body string) map[string]any {
	body = strings.TrimSpace(body)
	body = strings.TrimLeft(body, "?#")

	values, _ := url.ParseQuery(body)

	doc := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			doc[k] = vs[0]
			continue
		}
		arr := make([]any, len(vs))
		for i, v := range vs {
			arr[i] = v
		}
		doc[k] = arr
	}

	if s, ok := doc["expires_in"].(string); ok {
		if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
			doc["expires_in"] = json.Number(s)
		}
	}
	return doc
}
