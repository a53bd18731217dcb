// Package main provides the entry point for the star identification
// server: a gin + gorilla/websocket HTTP service exposing pyramid
// identification and database generation over REST, with a WebSocket
// hub broadcasting progress events.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TomCreusot/star-tracker-go/internal/api/rest"
	"github.com/TomCreusot/star-tracker-go/internal/api/websocket"
	"github.com/TomCreusot/star-tracker-go/internal/config"
	"github.com/TomCreusot/star-tracker-go/internal/eventbus"
	"github.com/TomCreusot/star-tracker-go/internal/log"
	"github.com/TomCreusot/star-tracker-go/internal/store"
)

// Version information (set during build).
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var configFile string

	root := &cobra.Command{
		Use:   "star-tracker-server",
		Short: "Serves the star identification REST/WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			return run(ctx, cfg)
		},
	}
	root.Flags().StringVar(&configFile, "config", "", "path to a config file (optional)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	logger := log.New(log.ParseLevel(level), cfg.Debug)
	logger.Info().Str("version", Version).Str("built", BuildTime).Msg("starting star identification server")

	bus := eventbus.NewInMemoryBus()
	st := store.NewInMemory()

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	restConfig := rest.Config{
		Address: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Debug:   cfg.Debug,
	}
	server := rest.NewServer(restConfig, st, bus, wsHub, logger)

	mux := http.NewServeMux()
	mux.Handle("/", server.Handler())
	mux.HandleFunc("/ws", wsHub.HandleWebSocket)

	httpServer := &http.Server{
		Addr:    restConfig.Address,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	logger.Info().Str("address", restConfig.Address).Msg("server ready")
	logger.Info().Msg("POST /v1/identify, POST /v1/databases, GET /v1/databases/:id, GET /v1/health, WS /ws")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down gracefully")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
