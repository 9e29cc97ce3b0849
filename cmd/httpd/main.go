// Command httpd runs the boilerplate engine HTTP API with the background
// mining scheduler.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/bootstrap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	engine, err := bootstrap.NewEngineComponents(cfg, log)
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		return err
	}
	defer engine.Close()

	if err := engine.Scheduler.Start(); err != nil {
		log.Error("Failed to start mining scheduler", "error", err)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting",
			"service", cfg.Service.Name,
			"version", cfg.Service.Version,
			"port", cfg.Service.Port,
		)
		if serveErr := engine.Server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("HTTP server failed", "error", err)
		engine.Scheduler.Stop()
		return err
	case sig := <-quit:
		log.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	engine.Scheduler.Stop()
	if err := engine.Server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	log.Info("Shutdown complete")
	return nil
}
