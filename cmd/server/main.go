package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/wikistruct/internal/api"
	"github.com/dgallion1/wikistruct/internal/archive"
	"github.com/dgallion1/wikistruct/internal/config"
	"github.com/dgallion1/wikistruct/internal/entity"
	"github.com/dgallion1/wikistruct/internal/fetch"
	"github.com/dgallion1/wikistruct/internal/pipeline"
	"github.com/dgallion1/wikistruct/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	specs := entity.DefaultSpecs()
	if cfg.KindsFile != "" {
		loaded, err := entity.LoadSpecs(cfg.KindsFile)
		if err != nil {
			log.Error("failed to load kind specs", "path", cfg.KindsFile, "error", err)
			os.Exit(1)
		}
		specs = loaded
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent, cfg.MaxRedirects, log)
	arch := archive.New(cfg.DataDir)

	orch := pipeline.NewOrchestrator(cfg, client, arch, st, specs, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		st.Close()
	}()

	log.Info("starting wikistruct", "port", cfg.Port, "wiki", cfg.WikiAPIURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
