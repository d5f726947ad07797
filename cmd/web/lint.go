package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finitefield.org/vpnguide-web/internal/content"
	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/web"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check page content against the supported locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.WithEnvFile(opts.envFile))
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Content.Dir
			}
			src := web.Content()
			if dir != "" {
				src = os.DirFS(dir)
			}
			lib, err := content.Load(src)
			if err != nil {
				return err
			}

			issues := content.Lint(lib, cfg.Site.Locales)
			out := cmd.OutOrStdout()
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d content issue(s) in %d topic(s)", len(issues), len(lib.Topics()))
			}
			fmt.Fprintf(out, "%d topics ok\n", len(lib.Topics()))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (defaults to the embedded content)")
	return cmd
}
