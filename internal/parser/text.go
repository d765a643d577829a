package parser

import (
	"regexp"
	"strings"

	"github.com/lecitrade/coa-tracker/internal/entity"
)

// textPatterns capture the remainder of the line after a known parameter
// phrase. They only fill fields the table pass did not yield.
var textPatterns = []struct {
	column string
	re     *regexp.Regexp
}{
	{"AI", regexp.MustCompile(`(?i)(?:Acetone|Aceton)\s+insoluble(?:\s+matter)?\s*:?\s*([^\n\r]+)`)},
	{"AV", regexp.MustCompile(`(?i)Acid\s+value\s*:?\s*([^\n\r]+)`)},
	{"POV", regexp.MustCompile(`(?i)Peroxide\s+value\s*:?\s*([^\n\r]+)`)},
	{"Moisture", regexp.MustCompile(`(?i)Moisture[\s\S]{0,30}?(\d+[.,]\d+\s*%[^\n\r]*)`)},
	{"Color Gardner (10% dil.)", regexp.MustCompile(`(?i)Color\s+Gardner[^\n\r]*?10%?\b[^\n\r]*?(\d+(?:[.,]\d+)?)\b`)},
	{"Viscosity at 25°C", regexp.MustCompile(`(?i)Viscosity\s+at\s+25\s*°?C[\s:]*([^\n\r]+)`)},
	{"Hexane Insolubles", regexp.MustCompile(`(?i)Hexane\s+insoluble(?:s|\s+matter)?\s*:?\s*([^\n\r]+)`)},
	{"Toluene Insolubles", regexp.MustCompile(`(?i)Toluene\s+insoluble(?:s|\s+matter)?\s*:?\s*([^\n\r]+)`)},
	// Metal lines carry an optional CAS number in parentheses before the value.
	{"Iron (Fe)", regexp.MustCompile(`(?i)Iron\s*\(?Fe\)?\s*(?:\([^)]*\)\s*)?([^\n\r]*)`)},
	{"Lead", regexp.MustCompile(`(?i)Lead\s*\(?Pb\)?\s*(?:\([^)]*\)\s*)?([^\n\r]*)`)},
	{"Arsenic", regexp.MustCompile(`(?i)Arsenic\s*\(?As\)?\s*(?:\([^)]*\)\s*)?([^\n\r]*)`)},
	{"Mercury", regexp.MustCompile(`(?i)Mercury\s*\(?Hg\)?\s*(?:\([^)]*\)\s*)?([^\n\r]*)`)},
	{"Cadmium", regexp.MustCompile(`(?i)Cadmium\s*\(?Cd\)?\s*(?:\([^)]*\)\s*)?([^\n\r]*)`)},
	{"Enterobacteriaceae", regexp.MustCompile(`(?i)Enterobacteriaceae\s*:?\s*([^\n\r]+)`)},
	{"Total Plate Count", regexp.MustCompile(`(?i)Total\s+plate\s+count[^\n\r]*?(\d[\d\s.,]*\s*cfu/g|(?:less\s+than|not\s+detected)[^\n\r]*)`)},
	{"Yeasts & Molds", regexp.MustCompile(`(?i)Yeasts\s*(?:&|and)\s*mou?lds\s*:?\s*([^\n\r]+)`)},
	{"Salmonella (in 25g)", regexp.MustCompile(`(?i)Salmonella(?:\s+spp\.?)?\s*(?:\(in\s*25\s*g\))?\s*:?\s*([^\n\r]+)`)},
	{"Ochratoxin A", regexp.MustCompile(`(?i)Ochratoxin\s+A\s*(?:\([^)]+\))?\s*([^\n\r±]*)`)},
	{"PAH4", regexp.MustCompile(`(?i)(?:Sum\s+of\s+)?PAH\s*[- ]?4[^\n\r]*?\s*([^\n\r]+)`)},
	{"Peanut content", regexp.MustCompile(`(?i)Peanut[^\n\r]*?((?:not\s+detected|negative)|\d+(?:[.,]\d+)?\s*(?:mg/kg|ppm))`)},
	{"PCR, 50 cycl. (GMO), 35S/NOS/FMV", regexp.MustCompile(`(?i)GMO[^\n\r]*?((?:negative|not\s+detected)[^\n\r]*)`)},
}

// extractFromText runs the deterministic line patterns over the raw page
// text, filling gaps only. Occurrences that actually carry a value (a digit,
// a detection verdict or a limit) win over bare mentions.
func (e *Extractor) extractFromText(text string, allowed map[string]struct{}, rec *entity.ExtractedRecord, components map[string]float64) {
	if text == "" {
		return
	}
	for _, p := range textPatterns {
		if _, exists := rec.Fields[p.column]; exists {
			continue
		}
		raw := pickCandidate(p.re.FindAllStringSubmatch(text, -1))
		if raw == "" {
			continue
		}
		e.setField(p.column, CleanValue(raw, p.column), allowed, rec)
	}

	// Sub-fraction lines for the LPC derivation. The decimal is searched
	// after the component token so "1-LPC 0.10" yields 0.10, not the 1.
	for _, line := range strings.Split(text, "\n") {
		norm := normalizeLabel(line)
		for key, comp := range componentAliases {
			idx := strings.Index(norm, key)
			if idx < 0 {
				continue
			}
			if _, seen := components[comp]; seen {
				break
			}
			if m := reFirstDecimal.FindString(norm[idx+len(key):]); m != "" {
				if f, okF := ParseDecimal(m); okF {
					components[comp] = f
				}
			}
			break
		}
	}
}

var reHasValue = regexp.MustCompile(`(?i)\d|not\s+detected|less\s+than|negative`)

// pickCandidate prefers the first captured occurrence carrying a value,
// falling back to the last occurrence.
func pickCandidate(matches [][]string) string {
	last := ""
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		c := strings.TrimSpace(m[1])
		if c == "" {
			continue
		}
		if reHasValue.MatchString(c) {
			return c
		}
		last = c
	}
	return last
}
