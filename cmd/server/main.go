package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/reportgest/internal/api"
	"github.com/dgallion1/reportgest/internal/catalog"
	"github.com/dgallion1/reportgest/internal/config"
	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/pipeline"
	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts, err := cfg.RecordOptions()
	if err != nil {
		log.Error("load phrases", "file", cfg.PhrasesFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize sinks.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("open record store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	var cat *catalog.Client
	if cfg.CatalogURL != "" {
		cat = catalog.NewClient(cfg.CatalogURL, cfg.CatalogAPIKey)
	}

	// Initialize pipeline.
	ex := pipeline.NewExtractor(
		record.NewAssembler(opts),
		parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		cfg.DocTimeout,
		pipeline.NewStats(time.Hour),
	)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, ex, pipeline.NewPublisher(st, cat, log), log)
	orch.Start(ctx)

	// Initialize HTTP server.
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

		if cat != nil {
			cat.Close()
		}
		st.Close()
	}()

	log.Info("starting reportgest", "port", cfg.Port, "db", cfg.DBPath, "catalog", cfg.CatalogURL != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
