package parser

import (
	"log/slog"
	"strings"

	"github.com/lecitrade/coa-tracker/constants"
	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/identifier"
	"github.com/lecitrade/coa-tracker/internal/schema"
)

// Extractor turns a parsed document into a canonical field map. It never
// fails on unrecognizable structure: a document with no usable table or text
// yields an empty field set.
type Extractor struct {
	registry *schema.Registry
	logger   *slog.Logger
}

func NewExtractor(registry *schema.Registry, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{registry: registry, logger: logger}
}

// Extract produces the extraction record for one document. phase scopes the
// targeted column set; lab detection and layout classification are internal.
func (e *Extractor) Extract(doc Document, phase int) *entity.ExtractedRecord {
	lab := constants.DetectLab(doc.Text)
	sampleID, batchID := identifier.FromText(doc.Text)
	rec := &entity.ExtractedRecord{
		SampleID:         sampleID,
		BatchID:          batchID,
		Phase:            phase,
		DocumentType:     lab,
		Fields:           make(map[string]string),
		AdditionalFields: make(map[string]string),
	}
	allowed := make(map[string]struct{})
	for _, c := range e.registry.List(phase) {
		allowed[c.Name] = struct{}{}
	}

	components := make(map[string]float64)
	spectral := lab == constants.LabSpectral

	for _, t := range doc.Tables {
		pcol, vcol, header, ok := findValueColumns(t, spectral)
		if !ok {
			continue
		}
		layout := Classify(t, vcol)
		e.logger.Debug("parser.table",
			"page", t.Page,
			"layout", layout.String(),
			"rows", len(t.Rows),
			"label_col", pcol,
			"value_col", vcol,
		)
		if layout == LayoutMalformedMultiValueCell {
			e.extractMalformed(t, pcol, vcol, header, spectral, allowed, rec, components)
		} else {
			e.extractWellFormed(t, pcol, vcol, header, spectral, allowed, rec, components)
		}
	}

	// Raw-text fallback fills whatever the tables did not yield.
	e.extractFromText(doc.Text, allowed, rec, components)

	e.computeDerived(allowed, rec, components)

	e.logger.Info("parser.extract.ok",
		"document_type", lab,
		"phase", phase,
		"fields", len(rec.Fields),
		"additional", len(rec.AdditionalFields),
	)
	return rec
}

// findValueColumns locates the label and value columns of a parameter table.
// Spectral exports mark the value column "Weight-%"; other labs use
// "Result"/"Value" headers or a plain two-column layout.
func findValueColumns(t Table, spectral bool) (labelCol, valueCol, headerRow int, ok bool) {
	if len(t.Rows) < 2 {
		return 0, 0, 0, false
	}
	valueCol = -1
	for i, row := range t.Rows {
		for j, cell := range row {
			lower := strings.ToLower(cell)
			if spectral {
				if strings.Contains(lower, "weight-") && strings.Contains(lower, "%") {
					valueCol, headerRow = j, i
					break
				}
			} else if lower == "result" || lower == "value" || strings.Contains(lower, "weight-%") {
				valueCol, headerRow = j, i
				break
			}
		}
		if valueCol >= 0 {
			break
		}
	}
	if valueCol < 0 {
		if spectral {
			return 0, 0, 0, false
		}
		// Plain parameter/value table: label left, value right.
		if maxCols(t) < 2 {
			return 0, 0, 0, false
		}
		return 0, 1, -1, true
	}
	labelCol = 0
	for i, row := range t.Rows {
		for j, cell := range row {
			if j == valueCol {
				continue
			}
			lower := strings.ToLower(cell)
			if strings.Contains(lower, "analyte") || strings.Contains(lower, "component") ||
				strings.Contains(lower, "compound") || strings.Contains(lower, "parameter") {
				return j, valueCol, headerRow, true
			}
		}
		if i > headerRow {
			break
		}
	}
	return labelCol, valueCol, headerRow, true
}

func maxCols(t Table) int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// extractWellFormed walks the table rows and assigns each matched row label
// the text of its value cell.
func (e *Extractor) extractWellFormed(t Table, pcol, vcol, headerRow int, spectral bool, allowed map[string]struct{}, rec *entity.ExtractedRecord, components map[string]float64) {
	for i := range t.Rows {
		if i <= headerRow {
			continue
		}
		label := strings.TrimSpace(t.Cell(i, pcol))
		value := strings.TrimSpace(t.Cell(i, vcol))
		if label == "" || value == "" {
			continue
		}
		e.assignRow(label, value, spectral, allowed, rec, components)
	}
}

// extractMalformed recovers values from a table whose value column collapsed
// into one newline-packed cell. Expected labels are read in row order
// (skipping rows handled specially), the packed cell is split into its
// numeric lines, and labels pair with values by position. Sum and phosphorus
// rows keep their own cells and are extracted directly.
func (e *Extractor) extractMalformed(t Table, pcol, vcol, headerRow int, spectral bool, allowed map[string]struct{}, rec *entity.ExtractedRecord, components map[string]float64) {
	var labels []string
	var packed string
	for i := range t.Rows {
		if i <= headerRow {
			continue
		}
		cell := t.Cell(i, vcol)
		if packed == "" && strings.Count(cell, "\n") >= 2 && len(NumericLines(cell)) >= minPackedValues {
			packed = cell
		}
		label := strings.TrimSpace(t.Cell(i, pcol))
		if label == "" {
			continue
		}
		if isSumLabel(label) || isPhosphorusLabel(label) {
			// Own-cell rows: value survives even in malformed layouts.
			if value := strings.TrimSpace(cell); value != "" && strings.Count(cell, "\n") < 2 {
				e.assignRow(label, value, spectral, allowed, rec, components)
			}
			continue
		}
		labels = append(labels, label)
	}
	if packed == "" {
		return
	}
	values := NumericLines(packed)
	if len(labels) > len(values) {
		e.logger.Warn("parser.positional.partial",
			"labels", len(labels),
			"values", len(values),
			"missing", len(labels)-len(values),
		)
	}
	for label, value := range PairByIndex(labels, values) {
		e.assignRow(label, value, spectral, allowed, rec, components)
	}
}

// assignRow routes one label/value pair: derived-value components are
// collected, sum and phosphorus labels map to their owning columns, matched
// labels become canonical fields, and everything else is kept in
// AdditionalFields rather than dropped.
func (e *Extractor) assignRow(label, value string, spectral bool, allowed map[string]struct{}, rec *entity.ExtractedRecord, components map[string]float64) {
	if comp, ok := MatchComponent(label); ok {
		if f, ok := ParseDecimal(CleanValue(value, comp)); ok {
			components[comp] = f
		}
		return
	}
	if spectral && isSumLabel(label) {
		e.setField("PL", CleanValue(value, "PL"), allowed, rec)
		return
	}
	if spectral && isPhosphorusLabel(label) {
		e.setField("P", CleanValue(value, "P"), allowed, rec)
		return
	}
	if name, ok := e.MatchLabel(label); ok {
		e.setField(name, CleanValue(value, name), allowed, rec)
		return
	}
	if _, reserved := constants.ReservedKeys[strings.ToLower(label)]; reserved {
		return
	}
	if _, exists := rec.AdditionalFields[label]; !exists {
		rec.AdditionalFields[label] = CleanValue(value, label)
	}
}

// setField assigns a canonical field without overwriting an earlier table's
// value; columns outside the phase scope land in AdditionalFields.
func (e *Extractor) setField(name, value string, allowed map[string]struct{}, rec *entity.ExtractedRecord) {
	if value == "" {
		return
	}
	if _, ok := allowed[name]; !ok {
		if _, exists := rec.AdditionalFields[name]; !exists {
			rec.AdditionalFields[name] = value
		}
		return
	}
	if _, exists := rec.Fields[name]; !exists {
		rec.Fields[name] = value
	}
}

// computeDerived fills parameters defined as sums of measured sub-fractions.
func (e *Extractor) computeDerived(allowed map[string]struct{}, rec *entity.ExtractedRecord, components map[string]float64) {
	if _, exists := rec.Fields["LPC"]; !exists {
		a, hasA := components[Component1LPC]
		b, hasB := components[Component2LPC]
		switch {
		case hasA && hasB:
			e.setField("LPC", FormatRounded2(a+b), allowed, rec)
		case hasA:
			e.setField("LPC", FormatRounded2(a), allowed, rec)
		case hasB:
			e.setField("LPC", FormatRounded2(b), allowed, rec)
		}
	}

	// Heavy metals total: As + Cd + Pb + Hg, never iron.
	if _, exists := rec.Fields["Heavy Metals"]; !exists {
		sum := 0.0
		n := 0
		for _, name := range []string{"Arsenic", "Cadmium", "Lead", "Mercury"} {
			v, ok := rec.Fields[name]
			if !ok {
				v, ok = rec.AdditionalFields[name]
			}
			if !ok {
				continue
			}
			if f, okF := ParseDecimal(v); okF {
				sum += f
				n++
			}
		}
		if n > 0 {
			e.setField("Heavy Metals", FormatRounded2(sum), allowed, rec)
		}
	}
}
