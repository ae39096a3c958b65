package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/agendalink/internal/api"
	"github.com/dgallion1/agendalink/internal/config"
	"github.com/dgallion1/agendalink/internal/pipeline"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("agendalink-server", pflag.ExitOnError)
	config.RegisterServerFlags(fs)
	fs.Parse(os.Args[1:])

	cfg := config.Load(fs)
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	p, resolver := pipeline.FromConfig(cfg, log)
	resolver.StartCacheCleanup(ctx, time.Minute)

	// Initialize HTTP server.
	srv := api.NewServer(p, resolver.Stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting agendalink",
		"port", cfg.Port,
		"auth", cfg.APIKey != "",
		"resolve_concurrency", cfg.ResolveConcurrency,
		"artifact_dir", cfg.ArtifactDir,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
