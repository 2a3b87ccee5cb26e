package oauth2

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Issue is a single schema violation.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError lists every violation found while checking a payload
// against one of the connector schemas.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Description)
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

// MarshalJSON renders the issues so hosts can surface them as error data.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Schema string  `json:"schema"`
		Issues []Issue `json:"issues"`
	}{e.Schema, e.Issues})
}

// guard validates decoded documents against a compiled JSON schema.
type guard struct {
	name   string
	schema *gojsonschema.Schema
}

func newGuard(name, src string) *guard {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("oauth2: compile %s schema: %v", name, err))
	}
	return &guard{name: name, schema: s}
}

// check validates doc, which must be a plain decoded value (maps, slices,
// strings, json.Number...). It returns a *ValidationError on mismatch.
func (g *guard) check(doc any) error {
	res, err := g.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationError{Schema: g.name, Issues: []Issue{{Field: "(root)", Description: err.Error()}}}
	}
	if res.Valid() {
		return nil
	}
	issues := make([]Issue, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		issues = append(issues, Issue{Field: re.Field(), Description: re.Description()})
	}
	return &ValidationError{Schema: g.name, Issues: issues}
}

// decodeJSON parses a single JSON document, keeping numbers as json.Number.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

// remarshal copies a validated document into its typed form.
func remarshal(doc any, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

var (
	configGuard = newGuard("connector config", `{
		"type": "object",
		"required": ["clientId", "clientSecret"],
		"properties": {
			"responseType": {"enum": ["code"]},
			"grantType": {"enum": ["authorization_code"]},
			"clientId": {"type": "string"},
			"clientSecret": {"type": "string"},
			"scope": {"type": "string"},
			"tokenEndpointResponseType": {"enum": ["query-string", "json"]},
			"profileMap": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"email": {"type": "string"},
					"phone": {"type": "string"},
					"name": {"type": "string"},
					"avatar": {"type": "string"}
				}
			}
		}
	}`)

	authResponseGuard = newGuard("auth response", `{
		"type": "object",
		"required": ["code"],
		"properties": {
			"code": {"type": "string", "minLength": 1},
			"state": {"type": "string"}
		}
	}`)

	// access_token is optional here: a well-formed response without it is
	// reported as a rejected code, not as a malformed response.
	accessTokenResponseGuard = newGuard("access token response", `{
		"type": "object",
		"required": ["token_type"],
		"properties": {
			"access_token": {"type": "string"},
			"token_type": {"type": "string"},
			"expires_in": {"type": "number"},
			"refresh_token": {"type": "string"},
			"scope": {"type": "string"}
		}
	}`)

	userProfileGuard = newGuard("user profile", `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": ["string", "number"]},
			"email": {"type": "string"},
			"phone": {"type": "string"},
			"name": {"type": "string"},
			"avatar": {"type": "string"}
		}
	}`)
)
