package schema

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lecitrade/coa-tracker/internal/common"
)

// ReferenceHeaders returns the export header sequence. When the authoritative
// header spreadsheet exists at path, its first sheet's first row is returned
// exactly as stored: order, duplicates and blank headers are preserved so
// exports reproduce the reference layout byte for byte. Otherwise the
// built-in phase-1 column names are returned.
func (r *Registry) ReferenceHeaders(path string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return r.Names(1)
	}
	headers, err := loadReferenceHeaders(path)
	if err != nil {
		logger.Warn("schema.reference_headers.fallback", "path", path, "error", err)
		return r.Names(1)
	}
	logger.Info("schema.reference_headers.loaded", "path", path, "columns", len(headers))
	return headers
}

func loadReferenceHeaders(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.WrapError(common.ErrConfigMissing, "reference header spreadsheet")
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open reference spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("reference spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read reference sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("reference sheet %q has no header row", sheets[0])
	}
	headers := rows[0]

	// GetRows drops trailing empty cells; the sheet dimension still records
	// the full width, so pad back any blank columns at the end of the layout.
	if width, ok := sheetWidth(f, sheets[0]); ok {
		for len(headers) < width {
			headers = append(headers, "")
		}
	}
	return headers, nil
}

func sheetWidth(f *excelize.File, sheet string) (int, bool) {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0, false
	}
	if i := strings.IndexByte(dim, ':'); i >= 0 {
		dim = dim[i+1:]
	}
	col, _, err := excelize.CellNameToCoordinates(dim)
	if err != nil {
		return 0, false
	}
	return col, true
}
