package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()
	cfg, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracing, err := observability.SetupTracing(cfg.Telemetry, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown error", zap.Error(err))
		}
	}()

	a, err := newApp(cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.db.Configured() && cfg.Providers.Source == config.ProviderSourceDatabase {
		logger.Warn("DATABASE_URL is not set; provider lookups will fail until it is")
	}
	a.lint()

	if a.watcher != nil && cfg.Content.HotReload {
		go func() {
			if err := a.watcher.Run(ctx); err != nil {
				logger.Error("content watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.String("providers", cfg.Providers.Source),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
