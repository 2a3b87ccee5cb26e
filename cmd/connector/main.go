package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/connector-fudan/internal/config"
	"github.com/dropDatabas3/connector-fudan/internal/observability/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds what every subcommand needs once flags are parsed.
type cli struct {
	configPath  string
	envFile     string
	connectorID string
	out         string // json | text

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "connector",
		Short:         "Social identity connector: reference host and debugging tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("CONNECTOR_CONFIG"), "YAML config file (env CONNECTOR_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before config (ignored if missing)")
	root.PersistentFlags().StringVar(&c.connectorID, "connector", "", "connector id (default: connector.id from config)")
	root.PersistentFlags().StringVar(&c.out, "out", "json", "output format: json|text")

	root.AddCommand(
		newServeCmd(c),
		newMetadataCmd(c),
		newAuthorizeURLCmd(c),
		newExchangeCmd(c),
		newRefreshCmd(c),
		newUserInfoCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("env file %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.connectorID != "" {
		cfg.Connector.ID = c.connectorID
	}
	c.cfg = cfg

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
	})
	logger.L().Debug("config loaded",
		logger.String("env", cfg.App.Env),
		logger.Connector(cfg.Connector.ID),
		logger.Op(cmd.Name()),
	)
	return nil
}
