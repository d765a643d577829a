package schema

import "strings"

// Category groups canonical parameters by the kind of analysis they report.
type Category string

const (
	CategoryChemical     Category = "Chemical"
	CategoryPL           Category = "PL"
	CategoryContaminant  Category = "Contaminant"
	CategoryMicrobiology Category = "Microbiology"
	CategoryGMO          Category = "GMO"
	CategoryIdentifier   Category = "Identifier"
)

// Column describes one canonical COA parameter.
type Column struct {
	Name       string
	FullName   string
	Laboratory string
	Category   Category
	Unit       string
	Phase      int
	Ignored    bool
}

// Registry is the immutable set of canonical columns, built once at process
// start. Consumers only receive copies.
type Registry struct {
	columns []Column
	byName  map[string]int
}

// NewRegistry builds the built-in column registry.
func NewRegistry() *Registry {
	cols := builtinColumns()
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[strings.ToLower(c.Name)] = i
	}
	return &Registry{columns: cols, byName: byName}
}

// List returns the ordered non-ignored columns for the given phase.
// Phase 1 returns the phase-1 subset; phase 2 (the extended run) returns the
// full set. Phase 0 also returns the full set.
func (r *Registry) List(phase int) []Column {
	out := make([]Column, 0, len(r.columns))
	for _, c := range r.columns {
		if c.Ignored {
			continue
		}
		if phase == 1 && c.Phase != 1 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Names returns the ordered column names for the given phase.
func (r *Registry) Names(phase int) []string {
	cols := r.List(phase)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// Resolve looks up a column by canonical name, case-insensitively.
// Ignored columns resolve too; callers filter on Column.Ignored when needed.
func (r *Registry) Resolve(name string) (Column, bool) {
	i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

func builtinColumns() []Column {
	const (
		spectral = "Spectral Service AG"
		nofalab  = "Nofalab"
		chelab   = "Chelab"
	)
	return []Column{
		// Chemical panel
		{Name: "AI", FullName: "Acetone Insoluble", Laboratory: nofalab, Category: CategoryChemical, Unit: "%", Phase: 1},
		{Name: "AV", FullName: "Acid Value", Laboratory: nofalab, Category: CategoryChemical, Unit: "mg KOH/g", Phase: 1},
		{Name: "POV", FullName: "Peroxide Value", Laboratory: nofalab, Category: CategoryChemical, Unit: "meq O2/kg", Phase: 1},
		{Name: "Moisture", FullName: "Moisture", Laboratory: nofalab, Category: CategoryChemical, Unit: "%", Phase: 1},
		{Name: "Color Gardner (As is)", FullName: "Gardner Color as is", Laboratory: nofalab, Category: CategoryChemical, Phase: 1},
		{Name: "Color Gardner (10% dil.)", FullName: "Gardner Color at 10% dilution", Laboratory: nofalab, Category: CategoryChemical, Phase: 1},
		{Name: "Color Iodine", FullName: "Iodine Color value", Laboratory: nofalab, Category: CategoryChemical, Phase: 2},
		{Name: "Viscosity at 25°C", FullName: "Viscosity at 25°C", Laboratory: nofalab, Category: CategoryChemical, Unit: "Pa.s", Phase: 1},
		{Name: "Toluene Insolubles", FullName: "Toluene insoluble matter", Laboratory: nofalab, Category: CategoryChemical, Unit: "%", Phase: 2},
		{Name: "Hexane Insolubles", FullName: "Hexane insoluble matter", Laboratory: nofalab, Category: CategoryChemical, Unit: "%", Phase: 2},

		// Phospholipid panel, Spectral is authoritative
		{Name: "PC", FullName: "Phosphatidylcholine", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "PE", FullName: "Phosphatidylethanolamine", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "PI", FullName: "Phosphatidylinositol", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "PA", FullName: "Phosphatidic Acid", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "LPC", FullName: "Lysophosphatidylcholine", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "P", FullName: "Phosphorus", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},
		{Name: "PL", FullName: "Phospholipids", Laboratory: spectral, Category: CategoryPL, Unit: "%", Phase: 1},

		// Contaminants
		{Name: "Iron (Fe)", FullName: "Iron content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 1},
		{Name: "Lead", FullName: "Lead content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 1},
		{Name: "Arsenic", FullName: "Arsenic content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 1},
		{Name: "Mercury", FullName: "Mercury content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 1},
		{Name: "Cadmium", FullName: "Cadmium content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 2},
		{Name: "Heavy Metals", FullName: "Heavy metals content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 2},
		{Name: "Pesticides", FullName: "Pesticide residues", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 2},
		{Name: "PAH4", FullName: "Polycyclic Aromatic Hydrocarbons (PAH4)", Laboratory: chelab, Category: CategoryContaminant, Unit: "µg/kg", Phase: 2},
		{Name: "Ochratoxin A", FullName: "Ochratoxin A content", Laboratory: chelab, Category: CategoryContaminant, Unit: "µg/kg", Phase: 2},
		{Name: "Peanut content", FullName: "Peanut allergen content", Laboratory: chelab, Category: CategoryContaminant, Unit: "ppm", Phase: 2},

		// Microbiology
		{Name: "Total Plate Count", FullName: "Total Plate Count", Laboratory: nofalab, Category: CategoryMicrobiology, Unit: "CFU/g", Phase: 1},
		{Name: "Total Viable count", FullName: "Total Viable Count", Laboratory: nofalab, Category: CategoryMicrobiology, Unit: "CFU/g", Phase: 2},
		{Name: "Enterobacteriaceae", FullName: "Enterobacteriaceae", Laboratory: nofalab, Category: CategoryMicrobiology, Unit: "CFU/g", Phase: 2},
		{Name: "Yeasts & Molds", FullName: "Yeasts and Molds count", Laboratory: nofalab, Category: CategoryMicrobiology, Unit: "CFU/g", Phase: 1},
		{Name: "E. coli", FullName: "E. coli presence", Laboratory: nofalab, Category: CategoryMicrobiology, Phase: 1},
		{Name: "Salmonella (in 25g)", FullName: "Salmonella presence in 25g", Laboratory: nofalab, Category: CategoryMicrobiology, Phase: 1},
		{Name: "Listeria monocytogenes (in 25g)", FullName: "Listeria monocytogenes presence in 25g", Laboratory: nofalab, Category: CategoryMicrobiology, Phase: 2},

		// GMO
		{Name: "PCR, 50 cycl. (GMO), 35S/NOS/FMV", FullName: "GMO detection by PCR", Laboratory: chelab, Category: CategoryGMO, Phase: 1},

		// Identifier columns are carried on the record itself, never extracted
		// as parameter fields.
		{Name: "Sample #", FullName: "Sample number", Category: CategoryIdentifier, Phase: 1, Ignored: true},
		{Name: "Batch", FullName: "Batch number", Category: CategoryIdentifier, Phase: 1, Ignored: true},
		{Name: "Remarks", FullName: "Free-form remarks", Category: CategoryIdentifier, Phase: 1, Ignored: true},
	}
}
