package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/constants"
	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/entity"
	"github.com/lecitrade/coa-tracker/internal/repository"
)

const maxUploadBytes = 64 << 20

// userIDFromRequest reads the optional X-User-ID header. Absent means the
// unscoped legacy pool.
func userIDFromRequest(r *http.Request) (*uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.NewAppError("INVALID_INPUT", "malformed X-User-ID header", common.ErrInvalidInput)
	}
	return &id, nil
}

func phaseFromRequest(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("phase")
	if raw == "" {
		return 2, nil
	}
	phase, err := strconv.Atoi(raw)
	if err != nil || phase < 0 || phase > 2 {
		return 0, common.NewAppError("INVALID_INPUT", "phase must be 0, 1 or 2", common.ErrInvalidInput)
	}
	return phase, nil
}

// handleUpload accepts multipart PDFs, runs the batch pipeline, and returns
// the per-file report. Only an empty or malformed request fails as a whole.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	phase, err := phaseFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT", "malformed multipart body", common.ErrInvalidInput))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, common.NewAppError("INVALID_INPUT", "no files uploaded", common.ErrInvalidInput))
		return
	}

	tmpDir, err := os.MkdirTemp("", "coa-upload-*")
	if err != nil {
		s.writeError(w, common.WrapError(err, "create upload dir"))
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	var paths []string
	for _, fh := range files {
		if !constants.AllowedExt(fh.Filename) {
			s.writeError(w, common.NewAppError("INVALID_INPUT", "unsupported file type: "+fh.Filename, common.ErrInvalidInput))
			return
		}
		dst := filepath.Join(tmpDir, filepath.Base(fh.Filename))
		if err := saveUpload(fh, dst); err != nil {
			s.writeError(w, common.WrapError(err, "store upload "+fh.Filename))
			return
		}
		paths = append(paths, dst)
	}

	report, err := s.processor.ProcessBatch(r.Context(), userID, paths, phase)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func filterFromRequest(r *http.Request) (repository.Filter, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return repository.Filter{}, err
	}
	f := repository.Filter{UserID: userID}
	if v := r.URL.Query().Get("sample_id"); v != "" {
		f.SampleID = entity.StrPtr(v)
	}
	if v := r.URL.Query().Get("batch_id"); v != "" {
		f.BatchID = entity.StrPtr(v)
	}
	return f, nil
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.store.FindMany(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs, "count": len(recs)})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, common.NewAppError("INVALID_INPUT", "malformed record id", common.ErrInvalidInput))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.store.FindMany(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="coa-records.csv"`)
	if err := s.exporter.WriteCSV(w, recs); err != nil {
		s.logger.Error("server.export.csv.failed", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.store.FindMany(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="coa-records.xlsx"`)
	if err := s.exporter.WriteXLSX(w, recs); err != nil {
		s.logger.Error("server.export.xlsx.failed", "error", err)
	}
}

func (s *Server) handleDedup(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.engine.DedupAll(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
