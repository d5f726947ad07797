package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/platform/database"
	"finitefield.org/vpnguide-web/internal/providers"
)

func newSeedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in provider catalogue into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			db := database.NewProvider(cfg.Database)
			defer func() {
				_ = db.Close(cmd.Context())
			}()
			repo := providers.NewPostgresRepository(db)
			if err := repo.Upsert(cmd.Context(), providers.SeedRecords); err != nil {
				return fmt.Errorf("seed providers: %w", err)
			}
			stored, err := repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list providers: %w", err)
			}
			logger.Info("providers seeded", zap.Int("upserted", len(providers.SeedRecords)), zap.Int("stored", len(stored)))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d providers (%d stored)\n", len(providers.SeedRecords), len(stored))
			return nil
		},
	}
}
