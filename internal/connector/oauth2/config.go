package oauth2

import (
	"encoding/json"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
)

// ParseConfig validates raw host configuration (camelCase JSON) and applies
// defaults. Any mismatch is reported as an invalid_config error.
func ParseConfig(raw []byte) (*Config, error) {
	doc, err := decodeJSON(raw)
	if err != nil {
		return nil, cerrors.ErrInvalidConfig.WithData(err.Error())
	}
	if err := configGuard.check(doc); err != nil {
		return nil, cerrors.ErrInvalidConfig.WithData(err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, cerrors.ErrInvalidConfig.WithData(err.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ResponseType == "" {
		c.ResponseType = ResponseTypeCode
	}
	if c.GrantType == "" {
		c.GrantType = GrantTypeAuthorizationCode
	}
	if c.TokenEndpointResponseType == "" {
		c.TokenEndpointResponseType = TokenResponseQueryString
	}
	c.ProfileMap = c.ProfileMap.WithDefaults()
}
