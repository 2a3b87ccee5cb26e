// Package config loads the reference host configuration: a YAML file with
// sane defaults, overridden by environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env         string `yaml:"app_env"`
		ServiceName string `yaml:"service_name"`
		Version     string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string `yaml:"addr"`
		PublicURL       string `yaml:"public_url"` // base used to build the default callback
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Connector is the host-stored configuration handed to the connector.
	Connector struct {
		ID                        string            `yaml:"id"`
		ClientID                  string            `yaml:"client_id"`
		ClientSecret              string            `yaml:"client_secret"`
		Scope                     string            `yaml:"scope"`
		TokenEndpointResponseType string            `yaml:"token_endpoint_response_type"` // query-string | json
		ProfileMap                map[string]string `yaml:"profile_map"`
		Timeout                   string            `yaml:"timeout"`
		RedirectURI               string            `yaml:"redirect_uri"` // empty => <public_url>/v1/connectors/<id>/callback
		Endpoints                 struct {
			Authorization string `yaml:"authorization"`
			Token         string `yaml:"token"`
			UserInfo      string `yaml:"userinfo"`
		} `yaml:"endpoints"`
	} `yaml:"connector"`

	// State signs the OAuth state parameter.
	State struct {
		Secret string `yaml:"secret"`
		Issuer string `yaml:"issuer"`
		TTL    string `yaml:"ttl"`
	} `yaml:"state"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		MaxRequests int    `yaml:"max_requests"` // per client IP and login endpoint
		Window      string `yaml:"window"`
	} `yaml:"rate"`

	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path"`
	} `yaml:"metrics"`
}

// devStateSecret is only accepted outside prod.
const devStateSecret = "dev-only-state-secret-change-me-0000"

// Load reads the YAML file at path (optional), applies defaults and env
// overrides, then validates the result.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if strings.TrimSpace(c.State.Secret) == "" && !c.IsProd() {
		c.State.Secret = devStateSecret
	}
	if strings.TrimSpace(c.Connector.RedirectURI) == "" {
		c.Connector.RedirectURI = strings.TrimRight(c.Server.PublicURL, "/") +
			"/v1/connectors/" + c.Connector.ID + "/callback"
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.ServiceName == "" {
		c.App.ServiceName = "connector"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost:8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Connector.ID == "" {
		c.Connector.ID = "fudan"
	}
	if c.Connector.Timeout == "" {
		c.Connector.Timeout = "5s"
	}
	if c.State.Issuer == "" {
		c.State.Issuer = c.App.ServiceName
	}
	if c.State.TTL == "" {
		c.State.TTL = "10m"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "connector:"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "10m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides lets environment variables override config.yaml.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_PUBLIC_URL"); ok {
		c.Server.PublicURL = v
	}

	// CONNECTOR
	if v, ok := getEnvStr("CONNECTOR_CLIENT_ID"); ok {
		c.Connector.ClientID = v
	}
	if v, ok := getEnvStr("CONNECTOR_CLIENT_SECRET"); ok {
		c.Connector.ClientSecret = v
	}
	if v, ok := getEnvStr("CONNECTOR_SCOPE"); ok {
		c.Connector.Scope = v
	}
	if v, ok := getEnvStr("CONNECTOR_REDIRECT_URI"); ok {
		c.Connector.RedirectURI = v
	}
	if v, ok := getEnvStr("CONNECTOR_TIMEOUT"); ok {
		c.Connector.Timeout = v
	}

	// STATE
	if v, ok := getEnvStr("STATE_SECRET"); ok {
		c.State.Secret = v
	}
	if v, ok := getEnvStr("STATE_TTL"); ok {
		c.State.TTL = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_DISABLED"); ok {
		c.Metrics.Disabled = v
	}
}

// IsProd reports whether the host runs with production safeguards.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// Validate checks the values the host cannot run without.
func (c *Config) Validate() error {
	var errs []error

	durations := map[string]string{
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"connector.timeout":        c.Connector.Timeout,
		"state.ttl":                c.State.TTL,
		"cache.memory.default_ttl": c.Cache.Memory.DefaultTTL,
		"rate.window":              c.Rate.Window,
	}
	for key, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive", key))
		}
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr: required when cache.kind is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind: unsupported %q", c.Cache.Kind))
	}

	if c.Rate.Enabled && c.Rate.MaxRequests <= 0 {
		errs = append(errs, errors.New("rate.max_requests: must be positive"))
	}

	switch c.Connector.TokenEndpointResponseType {
	case "", "query-string", "json":
	default:
		errs = append(errs, fmt.Errorf("connector.token_endpoint_response_type: unsupported %q",
			c.Connector.TokenEndpointResponseType))
	}

	// prod requires its own, long state secret.
	if c.IsProd() && (len(c.State.Secret) < 32 || c.State.Secret == devStateSecret) {
		errs = append(errs, errors.New("state.secret: at least 32 bytes required in prod"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ConnectorConfigJSON renders the connector section the way the connector
// expects its stored configuration: camelCase JSON, empty values omitted.
func (c *Config) ConnectorConfigJSON() (json.RawMessage, error) {
	out := map[string]any{
		"clientId":     c.Connector.ClientID,
		"clientSecret": c.Connector.ClientSecret,
	}
	if c.Connector.Scope != "" {
		out["scope"] = c.Connector.Scope
	}
	if c.Connector.TokenEndpointResponseType != "" {
		out["tokenEndpointResponseType"] = c.Connector.TokenEndpointResponseType
	}
	if len(c.Connector.ProfileMap) > 0 {
		out["profileMap"] = c.Connector.ProfileMap
	}
	return json.Marshal(out)
}

// ConnectorTimeout is the parsed connector.timeout. Load has validated it.
func (c *Config) ConnectorTimeout() time.Duration { return mustDuration(c.Connector.Timeout) }

// StateTTL is the lifetime of a signed state and its nonce.
func (c *Config) StateTTL() time.Duration { return mustDuration(c.State.TTL) }

func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }

func (c *Config) RateWindow() time.Duration { return mustDuration(c.Rate.Window) }

func (c *Config) MemoryDefaultTTL() time.Duration { return mustDuration(c.Cache.Memory.DefaultTTL) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
