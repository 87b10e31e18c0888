package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx := context.Background()
	app, err := BuildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	cfg := app.Config

	slog.Info("starting make24 server",
		"environment", cfg.Environment,
		"profile", cfg.Profile,
		"address", cfg.Server.Address,
		"board_adapter", cfg.Storage.Board,
		"store_adapter", cfg.Storage.Store)

	// Repopulate the board from durable scores before accepting traffic.
	if err := app.Hydrate(ctx); err != nil {
		slog.Error("failed to hydrate leaderboard", "error", err)
		os.Exit(1)
	}

	srv := app.Server

	// Expired sessions release their challenge bindings with them.
	app.Sessions.OnEvict(app.Service.DropChallenge)
	sweep := time.NewTicker(time.Hour)
	defer sweep.Stop()
	go func() {
		for range sweep.C {
			app.Sessions.Sweep()
		}
	}()

	go func() {
		slog.Info("server listening", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				return
			}
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during server shutdown", "error", err)
		os.Exit(1)
	}

	// Flush pending durable score writes before exiting.
	app.Service.Close()

	slog.Info("server stopped")
}
