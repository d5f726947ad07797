package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/observability"
)

const serviceName = "vpnguide-web"

type globalOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "vpnguide-web",
		Short:         "Multi-locale VPN comparison site",
		Long:          "Serves, exports and maintains the \"best VPN for X\" comparison pages.",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with local overrides (empty to skip)")

	root.AddCommand(
		newServeCmd(opts),
		newBuildCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newLintCmd(opts),
	)
	return root
}

// bootstrap loads configuration and builds the logger every command shares.
func bootstrap(opts *globalOptions) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.WithEnvFile(opts.envFile))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load configuration: %w", err)
	}
	newLogger := observability.NewLogger
	if cfg.Server.Dev {
		newLogger = observability.NewDevelopmentLogger
	}
	logger, err := newLogger()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("initialise logger: %w", err)
	}
	return cfg, logger.Named(serviceName), nil
}
