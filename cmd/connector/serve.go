package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/connector-fudan/internal/cache"
	chttp "github.com/dropDatabas3/connector-fudan/internal/http"
	"github.com/dropDatabas3/connector-fudan/internal/metrics"
	"github.com/dropDatabas3/connector-fudan/internal/observability/logger"
	"github.com/dropDatabas3/connector-fudan/internal/rate"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reference host (authorize, callback, refresh, metadata)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	log := logger.Named("serve")

	nonces, err := cache.New(ctx, cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.MemoryDefaultTTL(),
	})
	if err != nil {
		return err
	}
	defer nonces.Close()

	deps := chttp.Deps{
		Registry:           newRegistry(cfg),
		State:              chttp.NewStateSigner([]byte(cfg.State.Secret), cfg.State.Issuer, cfg.StateTTL()),
		Nonces:             nonces,
		DefaultRedirectURI: cfg.Connector.RedirectURI,
	}
	if cfg.Rate.Enabled {
		limiter, err := rate.New(rate.Config{
			Kind:   cfg.Cache.Kind,
			Addr:   cfg.Cache.Redis.Addr,
			DB:     cfg.Cache.Redis.DB,
			Prefix: cfg.Cache.Redis.Prefix + "rl:",
			Max:    cfg.Rate.MaxRequests,
			Window: cfg.RateWindow(),
		})
		if err != nil {
			return err
		}
		deps.Limiter = limiter
	}
	if !cfg.Metrics.Disabled {
		h, err := metrics.Register(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		deps.Metrics, deps.MetricsPath = h, cfg.Metrics.Path
	}

	srv := chttp.NewServer(cfg.Server.Addr, chttp.NewRouter(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("cache", cfg.Cache.Kind),
			logger.Connector(cfg.Connector.ID),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
