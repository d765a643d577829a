package parser

import "strings"

// aliases maps lowercased row labels seen in lab exports to canonical column
// names. Extended empirically per lab; the tier order (exact, alias,
// substring) is fixed.
var aliases = map[string]string{
	"phosphatidylcholine":      "PC",
	"phosphatidylethanolamine": "PE",
	"phosphatidylinositol":     "PI",
	"phosphatidic acid":        "PA",
	"lysophosphatidylcholine":  "LPC",
	"phosphorus":               "P",
	"phospholipids":            "PL",
	"acetone insoluble":        "AI",
	"aceton insoluble":         "AI",
	"acetone insoluble matter": "AI",
	"acid value":               "AV",
	"peroxide value":           "POV",
	"iron":                     "Iron (Fe)",
	"iron (fe)":                "Iron (Fe)",
	"lead (pb)":                "Lead",
	"arsenic (as)":             "Arsenic",
	"mercury (hg)":             "Mercury",
	"cadmium (cd)":             "Cadmium",
	"yeasts & moulds":          "Yeasts & Molds",
	"yeasts and moulds":        "Yeasts & Molds",
	"yeasts and molds":         "Yeasts & Molds",
	"total plate count":        "Total Plate Count",
	"total viable count":       "Total Viable count",
	"salmonella":               "Salmonella (in 25g)",
	"salmonella spp.":          "Salmonella (in 25g)",
	"e.coli":                   "E. coli",
	"escherichia coli":         "E. coli",
	"listeria monocytogenes":   "Listeria monocytogenes (in 25g)",
	"gmo screening":            "PCR, 50 cycl. (GMO), 35S/NOS/FMV",
	"sum of pah-4":             "PAH4",
	"pah-4":                    "PAH4",
	"hexane insoluble matter":  "Hexane Insolubles",
	"toluene insoluble matter": "Toluene Insolubles",
	"peanut":                   "Peanut content",
}

// componentAliases maps labels of measured sub-fractions that feed derived
// parameters but are not columns themselves.
var componentAliases = map[string]string{
	"1-lpc":        Component1LPC,
	"2-lpc":        Component2LPC,
	"lysopc(16:0)": Component1LPC,
	"lysopc(18:1)": Component2LPC,
	"lysopc(18:2)": Component2LPC,
}

// Sub-fraction component keys.
const (
	Component1LPC = "1-LPC"
	Component2LPC = "2-LPC"
)

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// MatchLabel resolves a table row label to a canonical column name using the
// contract tiers: exact (case-insensitive), alias table, then substring.
func (e *Extractor) MatchLabel(label string) (string, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return "", false
	}
	if col, ok := e.registry.Resolve(norm); ok && !col.Ignored {
		return col.Name, true
	}
	if name, ok := aliases[norm]; ok {
		return name, true
	}
	// Substring tier: labels often carry method codes or CAS numbers around
	// the parameter name. Short keys are excluded to keep one-letter column
	// names from matching everything.
	for key, name := range aliases {
		if len(key) >= 5 && strings.Contains(norm, key) {
			return name, true
		}
	}
	for _, col := range e.registry.List(0) {
		full := strings.ToLower(col.FullName)
		if len(full) >= 5 && strings.Contains(norm, full) {
			return col.Name, true
		}
	}
	return "", false
}

// MatchComponent resolves labels of derived-value sub-fractions.
func MatchComponent(label string) (string, bool) {
	norm := normalizeLabel(label)
	if name, ok := componentAliases[norm]; ok {
		return name, true
	}
	for key, name := range componentAliases {
		if strings.Contains(norm, key) {
			return name, true
		}
	}
	return "", false
}

// isSumLabel reports labels whose value is the phospholipid total. Sum rows
// keep their value in a distinct cell even inside malformed tables.
func isSumLabel(label string) bool {
	norm := normalizeLabel(label)
	return norm == "sum" || strings.Contains(norm, "total")
}

// isPhosphorusLabel reports the phosphorus row, also extracted from its own
// cell rather than positionally.
func isPhosphorusLabel(label string) bool {
	norm := normalizeLabel(label)
	return norm == "p" || norm == "phosphorus"
}
