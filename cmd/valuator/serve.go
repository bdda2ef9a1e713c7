package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"portfolio_valuator/internal/infrastructure/restapi"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /portfolio over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.close()

			if !app.cfg.Logging.Development {
				gin.SetMode(gin.ReleaseMode)
			}
			handler := restapi.NewPortfolioHandler(app.portfolioService, app.zapLogger)
			router := restapi.SetupRouter(handler, app.cfg.Server.AllowedOrigins, app.zapLogger)

			srv := &http.Server{
				Addr:         app.cfg.Server.Port,
				Handler:      router,
				ReadTimeout:  time.Duration(app.cfg.Server.ReadTimeoutSec) * time.Second,
				WriteTimeout: time.Duration(app.cfg.Server.WriteTimeoutSec) * time.Second,
				IdleTimeout:  time.Duration(app.cfg.Server.IdleTimeoutSec) * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				app.zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				return err
			case <-ctx.Done():
			}

			// Graceful shutdown
			app.zapLogger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.zapLogger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}
			app.zapLogger.Info("Server exited")
			return nil
		},
	}
}
