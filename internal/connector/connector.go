// Package connector defines the contract between identity connectors and
// the host that loads them.
//
// Architecture:
//   - Social: the operations every social connector exposes to the host
//   - Metadata/FormItem: static description used by the host to register
//     the connector and render its configuration form
//   - Registry: factories keyed by connector id, instances built lazily
//
// Connectors are stateless: configuration is pulled through ConfigLoader on
// every call and validated before use.
package connector

import (
	"context"
	"encoding/json"

	"github.com/dropDatabas3/connector-fudan/internal/connector/oauth2"
)

// Platform the connector can be used from.
type Platform string

const (
	PlatformUniversal Platform = "Universal"
	PlatformWeb       Platform = "Web"
	PlatformNative    Platform = "Native"
)

// FormItemType tells the host how to render a configuration field.
type FormItemType string

const (
	FormItemText          FormItemType = "Text"
	FormItemMultilineText FormItemType = "MultilineText"
	FormItemJSON          FormItemType = "Json"
	FormItemSelect        FormItemType = "Select"
	FormItemSwitch        FormItemType = "Switch"
)

// FormItem is one field of the configuration form.
type FormItem struct {
	Key          string       `json:"key"`
	Label        string       `json:"label"`
	Type         FormItemType `json:"type"`
	Required     bool         `json:"required"`
	Placeholder  string       `json:"placeholder,omitempty"`
	DefaultValue any          `json:"defaultValue,omitempty"`
}

// I18nPhrases maps a language tag ("en", "zh-CN") to text.
type I18nPhrases map[string]string

// Metadata describes a connector to the host.
type Metadata struct {
	ID                      string      `json:"id"`
	Target                  string      `json:"target"`
	Platform                Platform    `json:"platform"`
	Name                    I18nPhrases `json:"name"`
	Logo                    string      `json:"logo"`
	LogoDark                *string     `json:"logoDark"`
	Description             I18nPhrases `json:"description"`
	Readme                  string      `json:"readme"`
	FormItems               []FormItem  `json:"formItems"`
	IsTokenStorageSupported bool        `json:"isTokenStorageSupported"`
}

// ConfigLoader returns the raw (camelCase JSON) configuration stored by the
// host for the connector id.
type ConfigLoader func(ctx context.Context, id string) (json.RawMessage, error)

// AuthorizationURIInput carries the per-login values of the redirect.
type AuthorizationURIInput struct {
	State       string
	RedirectURI string
}

// UserInfo is the canonical profile plus the provider payload it came from.
type UserInfo struct {
	oauth2.UserProfile
	RawData json.RawMessage `json:"rawData,omitempty"`
}

// Social is implemented by every OAuth 2.0 social connector.
type Social interface {
	// Metadata returns the static connector description.
	Metadata() Metadata

	// ValidateConfig checks raw configuration without storing it.
	ValidateConfig(raw json.RawMessage) error

	// GetAuthorizationURI builds the provider redirect for a login attempt.
	GetAuthorizationURI(ctx context.Context, in AuthorizationURIInput) (string, error)

	// GetUserInfo exchanges the callback payload and returns the mapped profile.
	GetUserInfo(ctx context.Context, data any, redirectURI string) (*UserInfo, error)

	// RefreshToken exchanges a refresh token for a new access token.
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.AccessTokenResponse, error)
}
