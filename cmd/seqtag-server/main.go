package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jamesainslie/go-seqtag/internal/config"
	"github.com/jamesainslie/go-seqtag/internal/server"
	"github.com/jamesainslie/go-seqtag/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Optional .env for local development.
	_ = godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	file, err := config.Load(settings.ConfigPath)
	if err != nil {
		log.Error("loading pipeline config", "path", settings.ConfigPath, "error", err)
		os.Exit(1)
	}

	pool := worker.New(settings.Workers)
	defer pool.Close()

	pipelines, err := file.Build(pool, settings.Sessions, log)
	if err != nil {
		log.Error("building pipelines", "error", err)
		os.Exit(1)
	}

	srv := server.New(pipelines, log, settings.MaxLineBytes)

	httpServer := &http.Server{
		Addr:        settings.Addr,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting seqtag-server", "addr", settings.Addr, "pipelines", len(pipelines))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
