package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/faizan/audiobits/auth"
	"github.com/faizan/audiobits/config"
	"github.com/faizan/audiobits/handlers"
	"github.com/faizan/audiobits/ledger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the registry HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}

			tokens, err := auth.NewManager(auth.Config{
				Secret:   cfg.Auth.Secret,
				Issuer:   cfg.Auth.Issuer,
				TokenTTL: cfg.Auth.TokenTTL,
			})
			if err != nil {
				return err
			}

			st, closer, err := openStore(cfg.Database, log)
			if err != nil {
				return err
			}
			defer closer.Close()

			opts := []ledger.Option{
				ledger.WithLogger(log),
				ledger.WithCacheExpiration(cfg.Cache.Expiration, cfg.Cache.CleanupInterval),
			}
			if cfg.Tracing.Enabled {
				tp, err := newTracerProvider()
				if err != nil {
					return err
				}
				defer func() {
					if err := tp.Shutdown(context.Background()); err != nil {
						log.Error("tracer shutdown", "error", err)
					}
				}()
				otel.SetTracerProvider(tp)
				opts = append(opts, ledger.WithTracerProvider(tp))
			}

			gin.SetMode(gin.ReleaseMode)
			router := handlers.SetupRouter(ledger.New(st, opts...), tokens, log)
			return serve(cmd.Context(), cfg.Server, router, log)
		},
	}
}

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server forced to shutdown: %w", err)
	}
	return nil
}
