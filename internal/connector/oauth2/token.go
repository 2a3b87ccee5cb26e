package oauth2

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
	"github.com/dropDatabas3/connector-fudan/internal/observability/logger"
)

// DefaultTimeout bounds a token endpoint call when no timeout is given.
const DefaultTimeout = 5 * time.Second

// MaxResponseBytes caps how much of an upstream response body is read.
const MaxResponseBytes = 1 << 20

// TokenRequest is a token endpoint grant: AuthorizationCodeRequest or
// RefreshTokenRequest.
type TokenRequest interface {
	credentials() (clientID, clientSecret string)
	form() url.Values
}

// client credentials travel in the Authorization header only.
var credentialKeys = []string{"client_id", "client_secret"}

// AuthorizationCodeRequest exchanges an authorization code.
type AuthorizationCodeRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	// Extra holds additional camelCase fields sent in the form body.
	Extra map[string]string
}

func (r AuthorizationCodeRequest) credentials() (string, string) {
	return r.ClientID, r.ClientSecret
}

func (r AuthorizationCodeRequest) form() url.Values {
	grant := r.GrantType
	if grant == "" {
		grant = GrantTypeAuthorizationCode
	}
	return encodeParams([]param{
		{"grantType", grant},
		{"code", r.Code},
		{"redirectUri", r.RedirectURI},
	}, r.Extra, credentialKeys...)
}

// RefreshTokenRequest exchanges a refresh token.
type RefreshTokenRequest struct {
	GrantType    string
	RefreshToken string
	ClientID     string
	ClientSecret string
	Extra        map[string]string
}

func (r RefreshTokenRequest) credentials() (string, string) {
	return r.ClientID, r.ClientSecret
}

func (r RefreshTokenRequest) form() url.Values {
	grant := r.GrantType
	if grant == "" {
		grant = GrantTypeRefreshToken
	}
	return encodeParams([]param{
		{"grantType", grant},
		{"refreshToken", r.RefreshToken},
	}, r.Extra, credentialKeys...)
}

// Client talks to a single token endpoint.
type Client struct {
	tokenEndpoint string
	httpClient    *http.Client
	timeout       time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a token endpoint client.
func NewClient(tokenEndpoint string, opts ...Option) *Client {
	c := &Client{
		tokenEndpoint: tokenEndpoint,
		httpClient:    http.DefaultClient,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestTokenEndpoint POSTs the grant to the token endpoint and returns the
// raw response body.
//
// The client credentials are sent as HTTP Basic auth; every other field is
// snake-cased into a form body. A non-2xx status yields a general
// ConnectorError carrying the response text. Transport failures, including
// the timeout, are returned exactly as the HTTP client reported them.
func (c *Client) RequestTokenEndpoint(ctx context.Context, req TokenRequest, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := req.form()
	clientID, clientSecret := req.credentials()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(clientID, clientSecret)

	log := logger.From(ctx).With(
		logger.Component("oauth2"),
		logger.GrantType(form.Get("grant_type")),
		logger.Endpoint(c.tokenEndpoint),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("token endpoint unreachable", logger.Err(err), logger.Duration(time.Since(start)))
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, err
	}

	log.Debug("token endpoint responded",
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cerrors.ErrGeneral.WithData(string(content))
	}
	return content, nil
}

// GetAccessToken validates the callback payload and exchanges its code.
//
// data is the decoded callback payload (map, struct with json tags, or raw
// JSON bytes). A payload without a non-empty string code is rejected as a
// general error carrying the payload.
func (c *Client) GetAccessToken(ctx context.Context, cfg *Config, data any, redirectURI string) (*AccessTokenResponse, error) {
	if cfg == nil {
		return nil, cerrors.ErrInvalidConfig.WithData(cerrors.Message("missing connector config"))
	}
	auth, err := ParseAuthResponse(data)
	if err != nil {
		return nil, err
	}

	body, err := c.RequestTokenEndpoint(ctx, AuthorizationCodeRequest{
		GrantType:    cfg.GrantType,
		Code:         auth.Code,
		RedirectURI:  redirectURI,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, 0)
	if err != nil {
		return nil, err
	}
	return ParseAccessTokenResponse(body, cfg.TokenEndpointResponseType)
}

// GetAccessTokenByRefreshToken exchanges a refresh token for a new access token.
func (c *Client) GetAccessTokenByRefreshToken(ctx context.Context, cfg *Config, refreshToken string) (*AccessTokenResponse, error) {
	if cfg == nil {
		return nil, cerrors.ErrInvalidConfig.WithData(cerrors.Message("missing connector config"))
	}
	body, err := c.RequestTokenEndpoint(ctx, RefreshTokenRequest{
		GrantType:    GrantTypeRefreshToken,
		RefreshToken: refreshToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, 0)
	if err != nil {
		return nil, err
	}
	return ParseAccessTokenResponse(body, cfg.TokenEndpointResponseType)
}

// ParseAuthResponse validates a callback payload against the AuthResponse shape.
func ParseAuthResponse(data any) (*AuthResponse, error) {
	doc, err := plainDocument(data)
	if err != nil {
		return nil, cerrors.ErrGeneral.WithData(data)
	}
	if err := authResponseGuard.check(doc); err != nil {
		return nil, cerrors.ErrGeneral.WithData(data)
	}
	var out AuthResponse
	if err := remarshal(doc, &out); err != nil {
		return nil, cerrors.ErrGeneral.WithData(data)
	}
	return &out, nil
}

// plainDocument turns caller data into decoded JSON values.
func plainDocument(data any) (any, error) {
	switch d := data.(type) {
	case []byte:
		return decodeJSON(d)
	case json.RawMessage:
		return decodeJSON(d)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return decodeJSON(b)
}
