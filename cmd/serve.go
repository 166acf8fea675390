package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/backoffice/internal/alerts"
	"github.com/chrisdamba/backoffice/internal/handler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		httpLogger := a.logger.Named("http")
		feed := alerts.NewFeed(a.store, nil, a.cfg.Kafka.AlertTopic, a.logger)
		router := handler.NewRouter(
			handler.NewInventoryHandler(a.inventory, httpLogger),
			handler.NewOrderHandler(a.orders, httpLogger),
			handler.NewAlertHandler(feed, httpLogger),
			handler.NewInvoiceHandler(a.invoices, httpLogger),
			a.logger,
		)

		srv := &http.Server{
			Addr:         a.cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
			IdleTimeout:  a.cfg.Server.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", a.cfg.Store))
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

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
