package pdfread

import (
	"errors"
	"testing"

	"github.com/lecitrade/coa-tracker/internal/common"
)

func TestDecodeDocument(t *testing.T) {
	out := []byte(`{
		"document_text": "Spectral Service AG\nSample description: M20253004",
		"tables": [
			{"page": 1, "rows": [["Component", "Weight-%"], ["PC", "25.18"]]}
		]
	}`)
	doc, err := decodeDocument(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tables) != 1 || doc.Tables[0].Page != 1 {
		t.Errorf("tables = %+v", doc.Tables)
	}
	if got := doc.Tables[0].Cell(1, 0); got != "PC" {
		t.Errorf("cell = %q, want PC", got)
	}
}

func TestDecodeDocumentNoTables(t *testing.T) {
	doc, err := decodeDocument([]byte(`{"document_text": "plain text only"}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != "plain text only" || len(doc.Tables) != 0 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDecodeDocumentRejectsInvalidPayloads(t *testing.T) {
	payloads := [][]byte{
		[]byte(`not json`),
		[]byte(`{"tables": []}`),                                       // missing document_text
		[]byte(`{"document_text": "x", "tables": [{"page": 1}]}`),      // table without rows
		[]byte(`{"document_text": "x", "tables": [{"rows": [[1,2]]}]}`), // non-string cells
	}
	for _, p := range payloads {
		if _, err := decodeDocument(p); !errors.Is(err, common.ErrDocumentUnreadable) {
			t.Errorf("decodeDocument(%s): err = %v, want ErrDocumentUnreadable", p, err)
		}
	}
}

func TestCappedBufferFlagsOverflow(t *testing.T) {
	b := &cappedBuffer{limit: 8}
	n, err := b.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write = %d, %v; the writer must accept the full chunk", n, err)
	}
	if !b.truncated {
		t.Error("overflow not flagged")
	}
	if got := b.buf.String(); got != "01234567" {
		t.Errorf("stored = %q, want the first 8 bytes", got)
	}

	b = &cappedBuffer{limit: 8}
	if _, err := b.Write([]byte("short")); err != nil {
		t.Fatal(err)
	}
	if b.truncated {
		t.Error("within-limit write flagged as overflow")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789abcdef", 8); got != "01234567...(truncated)" {
		t.Errorf("truncate = %q", got)
	}
}
