package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpDelivery "github.com/pennywise/backend/internal/delivery/http"
	"github.com/pennywise/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model, err := newAIModel(ctx, cfg, logger)
			if err != nil {
				return errors.Wrap(err, "initialize AI model")
			}

			searchService, cleanup, err := newSearchService(ctx, cfg, model, logger)
			if err != nil {
				return errors.Wrap(err, "initialize search pipeline")
			}
			defer cleanup()

			var handler *httpDelivery.Handler
			if model != nil {
				handler = httpDelivery.NewHandler(searchService, usecase.NewReceiptAnalyzer(model, logger), logger)
			} else {
				handler = httpDelivery.NewHandler(searchService, nil, logger)
			}

			router := httpDelivery.SetupRouter(cfg, handler, logger)
			srv := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("starting server",
					zap.String("port", cfg.Server.Port),
					zap.String("environment", cfg.Server.Environment),
					zap.String("search_provider", cfg.Search.Provider))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return errors.Wrap(err, "listen")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errors.Wrap(err, "shutdown server")
			}
			return nil
		},
	}
}
