package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unibuild/internal/fakeapi"
	"unibuild/internal/platform/httpserver"
	"unibuild/internal/platform/logger"
)

// main serves a seeded in-memory UniBuild API for local runs and e2e.
func main() {
	log := logger.New(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "text"))
	addr := envOr("FAKEAPI_ADDR", ":5002")

	api := fakeapi.New(
		fakeapi.WithSecret([]byte(os.Getenv("FAKEAPI_SECRET"))),
		fakeapi.WithLogger(log),
	)
	api.Seed()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(addr, api.Routes())
	go func() {
		log.Info("starting fake UniBuild API", "addr", addr, "password", fakeapi.DemoPassword,
			"accounts", []string{fakeapi.DemoCitizen, fakeapi.DemoArchitect, fakeapi.DemoEngineer})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("fake api stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
