// Package fudan implements the Fudan University social connector on top of
// the generic OAuth 2.0 authorization code flow.
package fudan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/connector-fudan/internal/connector"
	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
	"github.com/dropDatabas3/connector-fudan/internal/connector/oauth2"
	"github.com/dropDatabas3/connector-fudan/internal/metrics"
	"github.com/dropDatabas3/connector-fudan/internal/observability/logger"
)

// Endpoints groups the upstream URLs. Overridable for tests and mirrors.
type Endpoints struct {
	Authorization string
	Token         string
	UserInfo      string
}

// DefaultEndpoints returns the production Fudan IdP endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Authorization: AuthorizationEndpoint,
		Token:         AccessTokenEndpoint,
		UserInfo:      UserInfoEndpoint,
	}
}

// Connector is the Fudan social connector.
type Connector struct {
	load       connector.ConfigLoader
	endpoints  Endpoints
	httpClient *http.Client
	timeout    time.Duration
	tokens     *oauth2.Client
}

var _ connector.Social = (*Connector)(nil)

// Option configures a Connector.
type Option func(*Connector)

// WithEndpoints overrides the non-empty endpoints of e.
func WithEndpoints(e Endpoints) Option {
	return func(c *Connector) {
		if e.Authorization != "" {
			c.endpoints.Authorization = e.Authorization
		}
		if e.Token != "" {
			c.endpoints.Token = e.Token
		}
		if e.UserInfo != "" {
			c.endpoints.UserInfo = e.UserInfo
		}
	}
}

// WithHTTPClient sets the client used for every upstream call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Connector) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates the connector. Config is read through load on every call.
func New(load connector.ConfigLoader, opts ...Option) *Connector {
	c := &Connector{
		load:       load,
		endpoints:  DefaultEndpoints(),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = oauth2.NewClient(c.endpoints.Token,
		oauth2.WithHTTPClient(c.httpClient),
		oauth2.WithTimeout(c.timeout),
	)
	return c
}

// Factory adapts New to the registry.
func Factory(opts ...Option) connector.Factory {
	return func(load connector.ConfigLoader) (connector.Social, error) {
		if load == nil {
			return nil, errors.New("fudan: nil config loader")
		}
		return New(load, opts...), nil
	}
}

// Metadata implements connector.Social.
func (c *Connector) Metadata() connector.Metadata {
	return DefaultMetadata()
}

// ValidateConfig implements connector.Social.
func (c *Connector) ValidateConfig(raw json.RawMessage) error {
	_, err := oauth2.ParseConfig(raw)
	return err
}

// GetAuthorizationURI implements connector.Social.
func (c *Connector) GetAuthorizationURI(ctx context.Context, in connector.AuthorizationURIInput) (string, error) {
	cfg, err := c.config(ctx)
	if err != nil {
		return "", err
	}

	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	return oauth2.ConstructAuthorizationURI(c.endpoints.Authorization, oauth2.AuthorizationParams{
		ResponseType: cfg.ResponseType,
		ClientID:     cfg.ClientID,
		Scope:        scope,
		RedirectURI:  in.RedirectURI,
		State:        in.State,
	}), nil
}

// GetUserInfo implements connector.Social.
func (c *Connector) GetUserInfo(ctx context.Context, data any, redirectURI string) (*connector.UserInfo, error) {
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	log := c.log(ctx)

	tok, err := c.exchange(ctx, cfg, data, redirectURI)
	if err != nil {
		return nil, err
	}

	raw, err := c.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		metrics.RecordProfileMapping(ID, result(err))
		log.Info("user info request failed", logger.Err(err))
		return nil, err
	}

	profile, err := oauth2.UserProfileMapping(raw, cfg.ProfileMap)
	metrics.RecordProfileMapping(ID, result(err))
	if err != nil {
		log.Info("user profile mapping failed", logger.Err(err))
		return nil, err
	}

	log.Debug("user info resolved",
		logger.Bool("email_present", profile.Email != ""),
		logger.Bool("phone_present", profile.Phone != ""),
	)
	return &connector.UserInfo{UserProfile: *profile, RawData: raw}, nil
}

// ExchangeCode trades the callback payload for tokens without fetching the
// profile.
func (c *Connector) ExchangeCode(ctx context.Context, data any, redirectURI string) (*oauth2.AccessTokenResponse, error) {
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	return c.exchange(ctx, cfg, data, redirectURI)
}

func (c *Connector) exchange(ctx context.Context, cfg *oauth2.Config, data any, redirectURI string) (*oauth2.AccessTokenResponse, error) {
	start := time.Now()
	tok, err := c.tokens.GetAccessToken(ctx, cfg, data, redirectURI)
	metrics.RecordTokenRequest(ID, cfg.GrantType, result(err), time.Since(start))
	if err != nil {
		c.log(ctx).Info("authorization code exchange failed", logger.GrantType(cfg.GrantType), logger.Err(err))
		return nil, err
	}
	return tok, nil
}

// RefreshToken implements connector.Social.
func (c *Connector) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.AccessTokenResponse, error) {
	cfg, err := c.config(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tok, err := c.tokens.GetAccessTokenByRefreshToken(ctx, cfg, refreshToken)
	metrics.RecordTokenRequest(ID, oauth2.GrantTypeRefreshToken, result(err), time.Since(start))
	if err != nil {
		c.log(ctx).Info("refresh token exchange failed", logger.Err(err))
		return nil, err
	}
	return tok, nil
}

// config loads and validates the host configuration.
func (c *Connector) config(ctx context.Context) (*oauth2.Config, error) {
	raw, err := c.load(ctx, ID)
	if err != nil {
		return nil, err
	}
	return oauth2.ParseConfig(raw)
}

func (c *Connector) log(ctx context.Context) *zap.Logger {
	return logger.From(ctx).With(logger.Connector(ID))
}

// result is the metrics label for an operation outcome.
func result(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	if code, ok := cerrors.CodeOf(err); ok {
		return string(code)
	}
	return metrics.ResultTransport
}
