// coa-batch processes a directory of COA PDFs and writes the consolidated
// spreadsheet next to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/constants"
	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/export"
	"github.com/lecitrade/coa-tracker/internal/parser"
	"github.com/lecitrade/coa-tracker/internal/pdfread"
	"github.com/lecitrade/coa-tracker/internal/pipeline"
	"github.com/lecitrade/coa-tracker/internal/reconcile"
	"github.com/lecitrade/coa-tracker/internal/repository"
	"github.com/lecitrade/coa-tracker/internal/schema"
)

func main() {
	var (
		dir     = flag.String("dir", "", "directory of COA PDFs to process (required)")
		out     = flag.String("out", "", "output CSV path (defaults to <dir>/../coa-records.csv)")
		phase   = flag.Int("phase", 2, "extraction phase: 1 targets the initial column set, 2 the full set")
		userStr = flag.String("user", "", "owner user ID (optional UUID)")
		dedup   = flag.Bool("dedup", false, "run store-wide deduplication after the batch")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: --dir is required")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "coa-records.csv")
	}

	var userID *uuid.UUID
	if *userStr != "" {
		id, err := uuid.Parse(*userStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --user: %v\n", err)
			os.Exit(1)
		}
		userID = &id
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, cleanup, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	paths, err := collectPDFs(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Error("no PDF files found", "dir", *dir)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(paths), "phase", *phase)

	registry := schema.NewRegistry()
	reader := pdfread.NewReader(pdfread.Config{
		Binary:  cfg.Reader.Binary,
		Timeout: cfg.Reader.Timeout,
	}, logger)
	extractor := parser.NewExtractor(registry, logger)
	engine := reconcile.NewEngine(store, logger)
	processor := pipeline.NewProcessor(reader, extractor, engine, logger)

	report, err := processor.ProcessBatch(ctx, userID, paths, *phase)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	if *dedup {
		dr, err := engine.DedupAll(ctx, userID)
		if err != nil {
			logger.Error("deduplication failed", "error", err)
			os.Exit(1)
		}
		logger.Info("deduplication complete", "groups", dr.Groups, "deleted", dr.Deleted)
	}

	recs, err := store.FindMany(ctx, repository.Filter{UserID: userID})
	if err != nil {
		logger.Error("failed to load records for export", "error", err)
		os.Exit(1)
	}

	headers := registry.ReferenceHeaders(cfg.Export.ReferenceHeadersPath, logger)
	exporter := export.NewService(registry, headers, logger)

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := exporter.WriteCSV(f, recs); err != nil {
		_ = f.Close()
		logger.Error("failed to write export", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("failed to close output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"received", report.Received,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files received: %d\n", report.Received)
	fmt.Printf("- Succeeded: %d\n", report.Succeeded)
	fmt.Printf("- Failed: %d\n", report.Failed)
	fmt.Printf("- Output: %s\n", *out)
	for _, res := range report.Results {
		if res.Error != "" {
			fmt.Printf("- FAILED %s: %s\n", res.FileName, res.Error)
		}
	}
}

// collectPDFs lists PDF files directly inside dir, sorted by name.
func collectPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !constants.AllowedExt(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
