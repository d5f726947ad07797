package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"finitefield.org/vpnguide-web/internal/build"
	"finitefield.org/vpnguide-web/web"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		outDir string
		static bool
		clean  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export every localized page to static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			a, err := newApp(cfg, logger, static)
			if err != nil {
				return err
			}
			defer a.close()
			a.lint()

			dst := afero.NewOsFs()
			if clean {
				if err := build.Clean(dst, outDir); err != nil {
					return err
				}
			}
			report, err := build.NewExporter(a.router(), dst, logger.Named("build")).Export(cmd.Context(), a.content.Current(), build.Options{
				OutDir:  outDir,
				Locales: cfg.Site.Locales,
				Assets:  web.Assets(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages and %d assets to %s\n", report.Pages, report.Assets, outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "dist", "output directory")
	cmd.Flags().BoolVar(&static, "static", false, "use the built-in provider catalogue instead of the configured source")
	cmd.Flags().BoolVar(&clean, "clean", true, "remove the output directory first")
	return cmd
}
