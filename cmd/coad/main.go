// coad serves the COA extraction pipeline and record store over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/export"
	"github.com/lecitrade/coa-tracker/internal/parser"
	"github.com/lecitrade/coa-tracker/internal/pdfread"
	"github.com/lecitrade/coa-tracker/internal/pipeline"
	"github.com/lecitrade/coa-tracker/internal/reconcile"
	"github.com/lecitrade/coa-tracker/internal/repository"
	"github.com/lecitrade/coa-tracker/internal/schema"
	"github.com/lecitrade/coa-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer cleanup()
	if err := repository.HealthCheck(ctx, store); err != nil {
		logger.Error("record store health check failed", "error", err)
		os.Exit(1)
	}

	registry := schema.NewRegistry()
	headers := registry.ReferenceHeaders(cfg.Export.ReferenceHeadersPath, logger)

	reader := pdfread.NewReader(pdfread.Config{
		Binary:  cfg.Reader.Binary,
		Timeout: cfg.Reader.Timeout,
	}, logger)
	extractor := parser.NewExtractor(registry, logger)
	engine := reconcile.NewEngine(store, logger)
	processor := pipeline.NewProcessor(reader, extractor, engine, logger)
	exporter := export.NewService(registry, headers, logger)

	srv := server.NewServer(cfg.Server.HTTPAddr, processor, engine, store, exporter, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
