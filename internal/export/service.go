// Package export renders stored records as CSV or XLSX spreadsheets whose
// columns follow the laboratory reference layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/schema"
)

// Columns that carry record identity rather than measured values.
const (
	headerSample = "sample #"
	headerBatch  = "batch"
)

type Service struct {
	registry *schema.Registry
	headers  []string
	logger   *slog.Logger
}

// NewService builds an exporter around a fixed header row. The headers are
// emitted exactly as given, blanks and duplicates included.
func NewService(registry *schema.Registry, headers []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: registry, headers: headers, logger: logger}
}

// WriteCSV streams the header row followed by one row per record.
func (s *Service) WriteCSV(w io.Writer, recs []*entity.CoaRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.headers); err != nil {
		return common.WrapError(err, "write csv header")
	}
	for _, rec := range recs {
		if err := cw.Write(s.row(rec)); err != nil {
			return common.WrapError(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return common.WrapError(err, "flush csv")
	}
	s.logger.Info("export.csv.ok", "records", len(recs), "columns", len(s.headers))
	return nil
}

// WriteXLSX renders the same layout as a single-sheet workbook.
func (s *Service) WriteXLSX(w io.Writer, recs []*entity.CoaRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Records"
	f.SetSheetName("Sheet1", sheet)

	headerRow := make([]any, len(s.headers))
	for i, h := range s.headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return common.WrapError(err, "write xlsx header")
	}

	for i, rec := range recs {
		values := s.row(rec)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return common.WrapError(err, "write xlsx row")
		}
	}

	if err := f.Write(w); err != nil {
		return common.WrapError(err, "write xlsx file")
	}
	s.logger.Info("export.xlsx.ok", "records", len(recs), "columns", len(s.headers))
	return nil
}

// row maps one record onto the header layout. Blank headers produce blank
// cells; unknown headers fall through to the record's extra fields.
func (s *Service) row(rec *entity.CoaRecord) []string {
	out := make([]string, len(s.headers))
	for i, h := range s.headers {
		trimmed := strings.TrimSpace(h)
		if trimmed == "" {
			continue
		}
		switch strings.ToLower(trimmed) {
		case headerSample:
			out[i] = entity.StrOrEmpty(rec.SampleID)
			continue
		case headerBatch:
			out[i] = entity.StrOrEmpty(rec.BatchID)
			continue
		}
		if col, ok := s.registry.Resolve(trimmed); ok {
			if v, exists := rec.Fields[col.Name]; exists {
				out[i] = v
				continue
			}
		}
		if v, exists := rec.Fields[trimmed]; exists {
			out[i] = v
			continue
		}
		if v, exists := rec.AdditionalFields[trimmed]; exists {
			out[i] = v
		}
	}
	return out
}
