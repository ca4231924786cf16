package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boldorider4/kvfront/config"
	kvhttp "github.com/boldorider4/kvfront/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the kvfront HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8787, "HTTP server port")
	serveCmd.Flags().String("listing", "native", "listing source for /keys and /files (native, indexed)")
	serveCmd.Flags().Bool("record", true, "record every request's bearer token")
	serveCmd.Flags().String("seed-file", "", "JSON file of entries written on startup")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	slog.Info("connected to backend",
		"type", cfg.Backend.Type,
		"strategy", a.keys.Strategy(),
		"listing", cfg.Server.Listing,
	)

	handlerConfig := kvhttp.HandlerConfig{
		Listing:        cfg.ListSource(),
		CORS:           cfg.CORS,
		RecordRequests: cfg.Token.RecordRequests,
		MaxBodySize:    cfg.Server.MaxBodySize,
	}

	handler := kvhttp.NewHandler(&handlerConfig, a.keys, a.files)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
