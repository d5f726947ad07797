package main

import (
	"github.com/spf13/cobra"

	"finitefield.org/vpnguide-web/internal/platform/database"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()
			return database.Migrate(cmd.Context(), cfg.Database.URL, logger.Named("migrate"))
		},
	}
}
