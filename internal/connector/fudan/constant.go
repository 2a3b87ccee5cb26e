package fudan

import (
	"time"

	"github.com/dropDatabas3/connector-fudan/internal/connector"
	"github.com/dropDatabas3/connector-fudan/internal/connector/oauth2"
)

// ID is the connector id registered with the host.
const ID = "Fudan"

// Fudan IdP endpoints.
const (
	AuthorizationEndpoint = "https://id.fudan.edu.cn/idp/authCenter/authenticate"
	//nolint:gosec // G101: endpoint URL, not a credential
	AccessTokenEndpoint = "https://id.fudan.edu.cn/idp/api/v3/oauth2/token"
	UserInfoEndpoint    = "https://id.fudan.edu.cn/idp/api/v3/oauth2/userInfo"
)

// DefaultScope is requested when the config sets none.
const DefaultScope = "openid profile email"

// DefaultTimeout bounds each outbound call.
const DefaultTimeout = 5 * time.Second

// DefaultProfileMap is the profile map suggested in the config form.
var DefaultProfileMap = oauth2.ProfileMap{
	ID:     "user_id",
	Email:  "email_verified",
	Phone:  "phone_verified",
	Name:   "full_name",
	Avatar: "avatar_url",
}

var phrases = connector.I18nPhrases{
	"en":    "Fudan University",
	"zh-CN": "复旦大学",
	"tr-TR": "Fudan University",
	"ko":    "Fudan University",
}

// DefaultMetadata returns the connector description. Each call returns a
// fresh copy.
func DefaultMetadata() connector.Metadata {
	name := make(connector.I18nPhrases, len(phrases))
	desc := make(connector.I18nPhrases, len(phrases))
	for k, v := range phrases {
		name[k] = v
		desc[k] = v
	}

	return connector.Metadata{
		ID:          ID,
		Target:      "Fudan University",
		Platform:    connector.PlatformUniversal,
		Name:        name,
		Logo:        "https://cdn.atominnolab.com/university/fudan.svg",
		Description: desc,
		Readme:      "./README.md",
		FormItems: []connector.FormItem{
			{
				Key:         "clientId",
				Label:       "Client ID",
				Type:        connector.FormItemText,
				Required:    true,
				Placeholder: "<client-id>",
			},
			{
				Key:         "clientSecret",
				Label:       "Client Secret",
				Type:        connector.FormItemText,
				Required:    true,
				Placeholder: "<client-secret>",
			},
			{
				Key:         "scope",
				Label:       "Scope",
				Type:        connector.FormItemMultilineText,
				Placeholder: "Enter the scopes (separated by a space)",
			},
			{
				Key:          "profileMap",
				Label:        "Profile Map",
				Type:         connector.FormItemJSON,
				DefaultValue: DefaultProfileMap,
			},
		},
		IsTokenStorageSupported: true,
	}
}
