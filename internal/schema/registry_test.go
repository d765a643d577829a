package schema

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestListPhaseSubset(t *testing.T) {
	r := NewRegistry()
	phase1 := r.List(1)
	full := r.List(2)
	if len(phase1) == 0 || len(full) <= len(phase1) {
		t.Fatalf("phase sizes: phase1=%d full=%d", len(phase1), len(full))
	}
	for _, c := range phase1 {
		if c.Phase != 1 {
			t.Errorf("phase-1 list contains %q with phase %d", c.Name, c.Phase)
		}
		if c.Ignored {
			t.Errorf("phase-1 list contains ignored column %q", c.Name)
		}
	}
	// Phase 0 means unscoped and matches the full set.
	if len(r.List(0)) != len(full) {
		t.Error("List(0) should equal the full set")
	}
}

func TestListExcludesIgnored(t *testing.T) {
	for _, c := range NewRegistry().List(0) {
		if c.Name == "Sample #" || c.Name == "Batch" || c.Name == "Remarks" {
			t.Errorf("ignored column %q leaked into List", c.Name)
		}
	}
}

func TestResolve(t *testing.T) {
	r := NewRegistry()
	col, ok := r.Resolve("  viscosity at 25°c ")
	if !ok || col.Name != "Viscosity at 25°C" {
		t.Errorf("Resolve = %+v, %v", col, ok)
	}
	if _, ok := r.Resolve("nope"); ok {
		t.Error("Resolve should miss unknown names")
	}
	// Ignored identifier columns still resolve; callers check Ignored.
	col, ok = r.Resolve("sample #")
	if !ok || !col.Ignored {
		t.Errorf("Resolve(sample #) = %+v, %v", col, ok)
	}
}

func TestReferenceHeadersPreservesLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.xlsx")
	f := excelize.NewFile()
	row := []any{"Sample #", "", "Batch", "AI", "AI"}
	if err := f.SetSheetRow("Sheet1", "A1", &row); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	headers := NewRegistry().ReferenceHeaders(path, slog.Default())
	want := []string{"Sample #", "", "Batch", "AI", "AI"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}

// Trailing blank columns are part of the reference layout and must not be
// trimmed away when the header row is read back.
func TestReferenceHeadersKeepsTrailingBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.xlsx")
	f := excelize.NewFile()
	row := []any{"Sample #", "Batch", "AI"}
	if err := f.SetSheetRow("Sheet1", "A1", &row); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetDimension("Sheet1", "A1:E1"); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	headers := NewRegistry().ReferenceHeaders(path, slog.Default())
	want := []string{"Sample #", "Batch", "AI", "", ""}
	if len(headers) != len(want) {
		t.Fatalf("headers = %q, want %q", headers, want)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}

func TestReferenceHeadersFallback(t *testing.T) {
	r := NewRegistry()
	headers := r.ReferenceHeaders(filepath.Join(t.TempDir(), "missing.xlsx"), slog.Default())
	want := r.Names(1)
	if len(headers) != len(want) {
		t.Fatalf("fallback headers = %v, want phase-1 names", headers)
	}
}
