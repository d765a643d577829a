// Package pipeline drives a PDF from disk to a reconciled record.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/constants"
	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/parser"
	"github.com/lecitrade/coa-tracker/internal/reconcile"
)

// DocumentReader turns a PDF on disk into text plus tables. Satisfied by
// pdfread.Reader; tests substitute a stub.
type DocumentReader interface {
	Read(ctx context.Context, path string) (parser.Document, error)
}

type Processor struct {
	reader    DocumentReader
	extractor *parser.Extractor
	engine    *reconcile.Engine
	logger    *slog.Logger
}

func NewProcessor(reader DocumentReader, extractor *parser.Extractor, engine *reconcile.Engine, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{reader: reader, extractor: extractor, engine: engine, logger: logger}
}

// FileResult reports the outcome of one file in a batch. Warning flags files
// that processed without a hard failure but yielded nothing recognizable.
type FileResult struct {
	FileName string            `json:"file_name"`
	Outcome  reconcile.Outcome `json:"outcome,omitempty"`
	RecordID string            `json:"record_id,omitempty"`
	SampleID string            `json:"sample_id,omitempty"`
	BatchID  string            `json:"batch_id,omitempty"`
	Warning  string            `json:"warning,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchReport summarizes a batch run. Received always equals
// Succeeded + Failed.
type BatchReport struct {
	Received  int          `json:"received"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []FileResult `json:"results"`
}

// ProcessFile runs the full extraction for a single PDF and reconciles the
// result into the store.
func (p *Processor) ProcessFile(ctx context.Context, userID *uuid.UUID, path string, phase int) (*entity.CoaRecord, reconcile.Outcome, error) {
	stored, outcome, _, err := p.processFile(ctx, userID, path, phase)
	return stored, outcome, err
}

func (p *Processor) processFile(ctx context.Context, userID *uuid.UUID, path string, phase int) (*entity.CoaRecord, reconcile.Outcome, string, error) {
	fileName := filepath.Base(path)
	if !constants.AllowedExt(fileName) {
		return nil, "", "", common.NewAppError("INVALID_INPUT", "unsupported file type: "+fileName, common.ErrInvalidInput)
	}

	start := time.Now()
	doc, err := p.reader.Read(ctx, path)
	if err != nil {
		return nil, "", "", err
	}

	rec := p.extractor.Extract(doc, phase)

	// A readable document with no recognizable structure is stored empty, not
	// failed; the mismatch travels as an annotation.
	warning := ""
	if len(rec.Fields) == 0 && len(rec.AdditionalFields) == 0 {
		warning = common.ErrSchemaMismatch.Error()
		p.logger.Warn("pipeline.extract.empty", "file", fileName, "warning", warning)
	}

	stored, outcome, err := p.engine.Upsert(ctx, userID, fileName, rec)
	if err != nil {
		return nil, "", "", err
	}

	p.logger.Info("pipeline.file.ok",
		"file", fileName,
		"outcome", string(outcome),
		"fields", len(stored.Fields),
		"additional_fields", len(stored.AdditionalFields),
		"duration_ms", time.Since(start).Milliseconds())
	return stored, outcome, warning, nil
}

// ProcessBatch runs files sequentially. A failing file is recorded and the
// batch moves on; only an empty batch is an error.
func (p *Processor) ProcessBatch(ctx context.Context, userID *uuid.UUID, paths []string, phase int) (*BatchReport, error) {
	if len(paths) == 0 {
		return nil, common.NewAppError("INVALID_INPUT", "no files to process", common.ErrInvalidInput)
	}

	report := &BatchReport{Received: len(paths)}
	for _, path := range paths {
		fileName := filepath.Base(path)
		res := FileResult{FileName: fileName}

		stored, outcome, warning, err := p.processFile(ctx, userID, path, phase)
		if err != nil {
			res.Error = err.Error()
			report.Failed++
			p.logger.Error("pipeline.file.failed", "file", fileName, "error", err)
		} else {
			res.Outcome = outcome
			res.RecordID = stored.ID.String()
			res.SampleID = entity.StrOrEmpty(stored.SampleID)
			res.BatchID = entity.StrOrEmpty(stored.BatchID)
			res.Warning = warning
			report.Succeeded++
		}
		report.Results = append(report.Results, res)
	}

	p.logger.Info("pipeline.batch.done",
		"received", report.Received,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report, nil
}
