package parser

import (
	"reflect"
	"testing"
)

func TestNumericLines(t *testing.T) {
	cell := "25.18\n10,32\nsee remark\n21.69(approx)\n\n3.50"
	want := []string{"25.18", "10.32", "21.69", "3.50"}
	if got := NumericLines(cell); !reflect.DeepEqual(got, want) {
		t.Errorf("NumericLines = %v, want %v", got, want)
	}
}

func TestClassifyWellFormed(t *testing.T) {
	tbl := Table{Rows: [][]string{
		{"Component", "Weight-%"},
		{"PC", "25.18"},
		{"PE", "10.32"},
	}}
	if got := Classify(tbl, 1); got != LayoutWellFormed {
		t.Errorf("Classify = %v, want well-formed", got)
	}
}

func TestClassifyMalformedPackedCell(t *testing.T) {
	tbl := Table{Rows: [][]string{
		{"Component", "Weight-%"},
		{"PC", "25.18\n10.32\n21.69\n3.50\n0.10\n1.05"},
		{"PE", ""},
	}}
	if got := Classify(tbl, 1); got != LayoutMalformedMultiValueCell {
		t.Errorf("Classify = %v, want malformed", got)
	}
}

// A multi-line cell with fewer than five numeric lines is a wrapped value,
// not a packed column.
func TestClassifyWrappedValueStaysWellFormed(t *testing.T) {
	tbl := Table{Rows: [][]string{
		{"Parameter", "Result"},
		{"Remarks", "line one\nline two\nline three"},
		{"AV", "19.3\n(repeat)\nconfirmed"},
	}}
	if got := Classify(tbl, 1); got != LayoutWellFormed {
		t.Errorf("Classify = %v, want well-formed", got)
	}
}

func TestPairByIndex(t *testing.T) {
	got := PairByIndex([]string{"PC", "PE", "PI"}, []string{"25.18", "10.32"})
	want := map[string]string{"PC": "25.18", "PE": "10.32"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PairByIndex = %v, want %v", got, want)
	}
}

func TestPairByIndexExtraValuesDropped(t *testing.T) {
	got := PairByIndex([]string{"PC"}, []string{"25.18", "10.32", "21.69"})
	if len(got) != 1 || got["PC"] != "25.18" {
		t.Errorf("PairByIndex = %v, want only PC", got)
	}
}
