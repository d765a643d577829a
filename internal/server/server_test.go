package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/export"
	"github.com/lecitrade/coa-tracker/internal/parser"
	"github.com/lecitrade/coa-tracker/internal/pipeline"
	"github.com/lecitrade/coa-tracker/internal/reconcile"
	"github.com/lecitrade/coa-tracker/internal/repository"
	"github.com/lecitrade/coa-tracker/internal/schema"
)

// fixedReader returns the same document for every path; upload tests care
// about routing and reporting, not PDF parsing.
type fixedReader struct {
	doc parser.Document
}

func (r *fixedReader) Read(_ context.Context, _ string) (parser.Document, error) {
	return r.doc, nil
}

func newTestServer(doc parser.Document) (*Server, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	registry := schema.NewRegistry()
	logger := slog.Default()
	engine := reconcile.NewEngine(store, logger)
	processor := pipeline.NewProcessor(&fixedReader{doc: doc}, parser.NewExtractor(registry, logger), engine, logger)
	exporter := export.NewService(registry, []string{"Sample #", "", "Batch", "AV"}, logger)
	return NewServer(":0", processor, engine, store, exporter, logger), store
}

func multipartBody(t *testing.T, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 stub")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadProcessesFile(t *testing.T) {
	srv, store := newTestServer(parser.Document{
		Text: "Nofalab report\nSample No: M20250001\nBatch BA000001\nAcid value: 19,3 mg KOH/g\n",
	})

	body, contentType := multipartBody(t, "coa.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/coa/upload?phase=1", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var report pipeline.BatchReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}

	recs, err := store.FindMany(context.Background(), repository.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Field("AV") != "19.3" {
		t.Errorf("stored = %v", recs)
	}
}

func TestUploadRejectsEmptyRequest(t *testing.T) {
	srv, _ := newTestServer(parser.Document{})
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/coa/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadRejectsBadUserHeader(t *testing.T) {
	srv, _ := newTestServer(parser.Document{})
	body, contentType := multipartBody(t, "coa.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/coa/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "not-a-uuid")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestListRecords(t *testing.T) {
	srv, store := newTestServer(parser.Document{})
	if _, err := store.Create(context.Background(), &entity.CoaRecord{FileName: "a.pdf"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/coa/records", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	srv, _ := newTestServer(parser.Document{})
	req := httptest.NewRequest(http.MethodDelete, "/v1/coa/records/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestExportCSVHeader(t *testing.T) {
	srv, _ := newTestServer(parser.Document{})
	req := httptest.NewRequest(http.MethodGet, "/v1/coa/export.csv", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "Sample #,,Batch,AV\n" {
		t.Errorf("body = %q", got)
	}
}

func TestDedupEndpoint(t *testing.T) {
	srv, store := newTestServer(parser.Document{})
	for _, name := range []string{"x1.pdf", "x2.pdf"} {
		if _, err := store.Create(context.Background(), &entity.CoaRecord{
			SampleID: entity.StrPtr("M20250001"),
			BatchID:  entity.StrPtr("BA000001"),
			FileName: name,
		}); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/coa/dedup", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var report reconcile.DedupReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Deleted != 1 {
		t.Errorf("report = %+v, want 1 deleted", report)
	}
}
