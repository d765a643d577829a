package parser

// Table is one extracted table from a document page: ordered rows of ordered
// cell text, exactly as the external reader recovered them.
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// Cell returns the trimmed-bounds cell text, or "" when out of range.
// Malformed exports routinely produce ragged rows.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Document is the parsed form of one COA file: the raw page text plus every
// table the external reader recovered.
type Document struct {
	Text   string  `json:"document_text"`
	Tables []Table `json:"tables"`
}
