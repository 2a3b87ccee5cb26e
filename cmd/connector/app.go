package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dropDatabas3/connector-fudan/internal/config"
	"github.com/dropDatabas3/connector-fudan/internal/connector"
	"github.com/dropDatabas3/connector-fudan/internal/connector/fudan"
)

// factories lists the connectors this binary ships, keyed by route id.
var factories = map[string]func(cfg *config.Config) connector.Factory{
	"fudan": func(cfg *config.Config) connector.Factory {
		return fudan.Factory(
			fudan.WithTimeout(cfg.ConnectorTimeout()),
			fudan.WithEndpoints(fudan.Endpoints{
				Authorization: cfg.Connector.Endpoints.Authorization,
				Token:         cfg.Connector.Endpoints.Token,
				UserInfo:      cfg.Connector.Endpoints.UserInfo,
			}),
		)
	},
}

// configLoader serves the connector section of the host config for every id.
func configLoader(cfg *config.Config) connector.ConfigLoader {
	return func(_ context.Context, _ string) (json.RawMessage, error) {
		return cfg.ConnectorConfigJSON()
	}
}

func newRegistry(cfg *config.Config) *connector.Registry {
	reg := connector.NewRegistry(configLoader(cfg))
	for id, f := range factories {
		reg.Register(id, f(cfg))
	}
	return reg
}

// social resolves the selected connector.
func (c *cli) social() (connector.Social, error) {
	id := strings.ToLower(c.cfg.Connector.ID)
	if _, ok := factories[id]; !ok {
		known := make([]string, 0, len(factories))
		for k := range factories {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown connector %q (available: %s)", id, strings.Join(known, ", "))
	}
	return newRegistry(c.cfg).Get(id)
}
