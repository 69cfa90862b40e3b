package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/app"
	"github.com/d60-Lab/birdnest/pkg/logger"
	"github.com/d60-Lab/birdnest/pkg/tracing"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Sentry.DSN != "" {
			if err := sentry.Init(sentry.ClientOptions{
				Dsn:         cfg.Sentry.DSN,
				Environment: cfg.Sentry.Environment,
			}); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)
		}

		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() { _ = shutdownTracing(context.Background()) }()

		a, err := app.New(ctx, cfg, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		if autoMigrate {
			if err := a.InitSchema(ctx); err != nil {
				return err
			}
		}

		cfgSource.Watch(func(c *config.Config) {
			if err := logger.SetLevel(c.Log.Level); err != nil {
				logger.Warn("ignore invalid log level", zap.String("level", c.Log.Level))
				return
			}
			logger.Info("log level reloaded", zap.String("level", c.Log.Level))
		}, func(err error) {
			logger.Warn("config reload failed, keeping previous config",
				zap.String("file", cfgSource.File()), zap.Error(err))
		})

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      a.Router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server started",
				zap.String("addr", srv.Addr),
				zap.String("store", cfg.Store.Backend),
				zap.String("secrets", cfg.Secrets.Backend),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "启动前建表")
	rootCmd.AddCommand(serveCmd)
}
