package pdfread

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lecitrade/coa-tracker/internal/common"
	"github.com/lecitrade/coa-tracker/internal/parser"
)

// documentSchema constrains the reader subprocess payload. The subprocess
// reports failure via non-zero exit plus stderr, never via malformed JSON on
// stdout, so anything that fails validation here is a reader bug worth
// rejecting loudly.
const documentSchema = `{
  "type": "object",
  "properties": {
    "document_text": {"type": "string"},
    "tables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "page": {"type": "integer", "minimum": 1},
          "rows": {
            "type": "array",
            "items": {"type": "array", "items": {"type": "string"}}
          }
        },
        "required": ["rows"]
      }
    }
  },
  "required": ["document_text"]
}`

var compiledSchema = jsonschema.MustCompileString("pdfdump.schema.json", documentSchema)

type Config struct {
	Binary  string        // reader binary name or absolute path; empty -> "coa-pdfdump"
	Timeout time.Duration // bounded wait per invocation; expiry is a per-file failure
}

// Reader invokes the external PDF table/text reader: file path in, one JSON
// document out.
type Reader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "coa-pdfdump"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Reader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Read parses one COA file. Unreadable files and reader failures surface as
// ErrDocumentUnreadable so the batch pipeline can contain them per file.
func (r *Reader) Read(ctx context.Context, path string) (parser.Document, error) {
	start := time.Now()

	// Cheap structural preflight: refuse files pdfcpu cannot open before
	// paying for a subprocess.
	pages, err := api.PageCountFile(path)
	if err != nil {
		r.logger.Warn("pdfread.preflight.failed", "path", path, "error", err)
		return parser.Document{}, common.NewAppError("DOCUMENT_UNREADABLE", fmt.Sprintf("preflight %s", path), common.ErrDocumentUnreadable)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	out, errb, err := r.runner.Run(ctx, r.cfg.Binary, path)
	if err != nil {
		return parser.Document{}, common.NewAppError("DOCUMENT_UNREADABLE",
			fmt.Sprintf("reader exited: %s", truncate(string(errb), 512)), common.ErrDocumentUnreadable)
	}

	doc, err := decodeDocument(out)
	if err != nil {
		return parser.Document{}, err
	}

	r.logger.Info("pdfread.ok",
		"path", path,
		"pages", pages,
		"tables", len(doc.Tables),
		"text_bytes", len(doc.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// decodeDocument validates the subprocess payload against the contract schema
// before decoding it.
func decodeDocument(out []byte) (parser.Document, error) {
	var payload any
	if err := json.Unmarshal(out, &payload); err != nil {
		return parser.Document{}, common.NewAppError("DOCUMENT_UNREADABLE", "reader emitted malformed JSON", common.ErrDocumentUnreadable)
	}
	if err := compiledSchema.Validate(payload); err != nil {
		return parser.Document{}, common.NewAppError("DOCUMENT_UNREADABLE", fmt.Sprintf("reader payload invalid: %v", err), common.ErrDocumentUnreadable)
	}
	var doc parser.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		return parser.Document{}, common.NewAppError("DOCUMENT_UNREADABLE", "reader payload decode", common.ErrDocumentUnreadable)
	}
	return doc, nil
}
