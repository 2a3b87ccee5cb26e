// Package oauth2 implements the generic OAuth 2.0 authorization code
// connector logic: config validation, authorization URL construction,
// token endpoint exchange, token response parsing and profile mapping.
//
// It performs no persistence and keeps no state between calls.
package oauth2

import (
	"time"

	xoauth2 "golang.org/x/oauth2"
)

const (
	ResponseTypeCode           = "code"
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// TokenEndpointResponseType is the body format of the token endpoint.
type TokenEndpointResponseType string

const (
	TokenResponseQueryString TokenEndpointResponseType = "query-string"
	TokenResponseJSON        TokenEndpointResponseType = "json"
)

// ProfileMap translates canonical profile fields into provider field paths.
type ProfileMap struct {
	ID     string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// DefaultProfileMap maps every canonical field to itself.
func DefaultProfileMap() ProfileMap {
	return ProfileMap{ID: "id", Email: "email", Phone: "phone", Name: "name", Avatar: "avatar"}
}

// WithDefaults fills unset entries with their canonical name.
func (m ProfileMap) WithDefaults() ProfileMap {
	def := DefaultProfileMap()
	if m.ID == "" {
		m.ID = def.ID
	}
	if m.Email == "" {
		m.Email = def.Email
	}
	if m.Phone == "" {
		m.Phone = def.Phone
	}
	if m.Name == "" {
		m.Name = def.Name
	}
	if m.Avatar == "" {
		m.Avatar = def.Avatar
	}
	return m
}

type profileField struct {
	canonical string
	source    string
}

func (m ProfileMap) fields() []profileField {
	return []profileField{
		{"id", m.ID},
		{"email", m.Email},
		{"phone", m.Phone},
		{"name", m.Name},
		{"avatar", m.Avatar},
	}
}

// Config is the validated connector configuration supplied by the host.
type Config struct {
	ResponseType              string                    `json:"responseType"`
	GrantType                 string                    `json:"grantType"`
	ClientID                  string                    `json:"clientId"`
	ClientSecret              string                    `json:"clientSecret"`
	Scope                     string                    `json:"scope,omitempty"`
	TokenEndpointResponseType TokenEndpointResponseType `json:"tokenEndpointResponseType"`
	ProfileMap                ProfileMap                `json:"profileMap"`
}

// AuthResponse is the payload received on the redirect callback.
type AuthResponse struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// AccessTokenResponse is the normalized token endpoint response.
type AccessTokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    *float64 `json:"expires_in,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Scope        string   `json:"scope,omitempty"`
}

// Token converts the response into an x/oauth2 token, computing the expiry
// relative to now. Fractional lifetimes are truncated to whole seconds.
func (r *AccessTokenResponse) Token(now time.Time) *xoauth2.Token {
	tok := &xoauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	if secs := r.ExpiresInSeconds(); secs > 0 {
		tok.ExpiresIn = secs
		tok.Expiry = now.Add(time.Duration(secs) * time.Second)
	}
	if r.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": r.Scope})
	}
	return tok
}

// ExpiresInSeconds returns expires_in truncated to whole seconds, or 0 when
// the provider sent none.
func (r *AccessTokenResponse) ExpiresInSeconds() int64 {
	if r.ExpiresIn == nil {
		return 0
	}
	return int64(*r.ExpiresIn)
}

// UserProfile is the canonical profile shape.
type UserProfile struct {
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}
