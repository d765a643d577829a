package parser

import (
	"regexp"
	"strings"
)

// Layout classifies a table's structure.
type Layout int

const (
	// LayoutWellFormed tables keep one value per value-column cell.
	LayoutWellFormed Layout = iota
	// LayoutMalformedMultiValueCell tables pack many rows' values into a
	// single newline-separated cell. Some lab exporters concatenate the whole
	// value column into the first row.
	LayoutMalformedMultiValueCell
)

func (l Layout) String() string {
	if l == LayoutMalformedMultiValueCell {
		return "malformed-multi-value-cell"
	}
	return "well-formed"
}

// minPackedValues is the empirical minimum of numeric lines distinguishing a
// genuine multi-value payload from a single value that happens to wrap.
const minPackedValues = 5

var reLeadingDecimal = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)`)

// NumericLines splits a cell on line breaks and returns, in order, the
// decimal number each numeric-looking line starts with. Trailing annotations
// ("10.32(approx)") are dropped; decimal commas become dots.
func NumericLines(cell string) []string {
	var out []string
	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := reLeadingDecimal.FindStringSubmatch(line); m != nil {
			out = append(out, strings.ReplaceAll(m[1], ",", "."))
		}
	}
	return out
}

// Classify inspects the designated value column and decides whether the
// table is well-formed or carries a packed multi-value cell.
func Classify(t Table, valueCol int) Layout {
	for i := range t.Rows {
		cell := t.Cell(i, valueCol)
		if strings.Count(cell, "\n") < 2 {
			continue
		}
		if len(NumericLines(cell)) >= minPackedValues {
			return LayoutMalformedMultiValueCell
		}
	}
	return LayoutWellFormed
}
