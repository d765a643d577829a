package export

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/schema"
)

func testRecord() *entity.CoaRecord {
	return &entity.CoaRecord{
		SampleID: entity.StrPtr("M20253004"),
		BatchID:  entity.StrPtr("BA001734"),
		FileName: "spectral.pdf",
		Fields:   map[string]string{"AI": "62.1", "PC": "25.18"},
		AdditionalFields: map[string]string{
			"Refractive index": "1.468",
		},
	}
}

// The header row reproduces the reference layout exactly, blanks included.
func TestWriteCSVHeaderFidelity(t *testing.T) {
	svc := NewService(schema.NewRegistry(), []string{"Sample #", "", "Batch"}, slog.Default())

	var buf bytes.Buffer
	if err := svc.WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if got := strings.TrimRight(first, "\r"); got != "Sample #,,Batch" {
		t.Errorf("header = %q, want %q", got, "Sample #,,Batch")
	}
}

func TestWriteCSVRowMapping(t *testing.T) {
	headers := []string{"Sample #", "", "Batch", "AI", "pc", "Refractive index", "Moisture"}
	svc := NewService(schema.NewRegistry(), headers, slog.Default())

	var buf bytes.Buffer
	if err := svc.WriteCSV(&buf, []*entity.CoaRecord{testRecord()}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	want := "M20253004,,BA001734,62.1,25.18,1.468,"
	if got := strings.TrimRight(lines[1], "\r"); got != want {
		t.Errorf("row = %q, want %q", got, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	headers := []string{"Sample #", "Batch", "AI"}
	svc := NewService(schema.NewRegistry(), headers, slog.Default())

	var buf bytes.Buffer
	if err := svc.WriteXLSX(&buf, []*entity.CoaRecord{testRecord()}); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 record", len(rows))
	}
	if rows[1][0] != "M20253004" || rows[1][1] != "BA001734" || rows[1][2] != "62.1" {
		t.Errorf("row = %v", rows[1])
	}
}
