// Command server runs the Concoro HTTP API together with the cache sweeper,
// the websocket hub and the notification scheduler.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concoro/internal/app"
	"concoro/internal/config"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] config: %v", err)
	}

	srv, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("[Server] bootstrap: %v", err)
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		_ = cleanup()
		log.Fatalf("[Server] invalid HTTP_PORT %q: %v", cfg.App.HTTPPort, err)
	}

	logger := srv.Container.Logger
	logger.Printf("[Server] %s env=%s site=%s listening=%s cache=%s next_notifications=%s",
		cfg.App.AppName, cfg.App.Environment, cfg.App.SiteBaseURL, addr,
		srv.Container.Cache.Backend(), srv.Scheduler.Next().In(srv.Container.Location).Format(time.RFC3339))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Fiber.Listen(addr)
	}()

	exit := 0
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("[Server] listen failed: %v", err)
			exit = 1
		}
	case <-ctx.Done():
		logger.Printf("[Server] shutting down grace=%s", shutdownGrace)
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := srv.Fiber.ShutdownWithContext(shutCtx); err != nil {
			logger.Printf("[Server] shutdown: %v", err)
		}
		cancel()
	}

	if err := cleanup(); err != nil {
		logger.Printf("[Server] cleanup: %v", err)
	}
	os.Exit(exit)
}
