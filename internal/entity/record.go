package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedRecord is the outcome of extracting one COA document. It is
// immutable once returned by the value extractor; the identifier resolver may
// produce a copy with refined sample/batch IDs before reconciliation.
type ExtractedRecord struct {
	SampleID     string `json:"sample_id,omitempty"`
	BatchID      string `json:"batch_id,omitempty"`
	Phase        int    `json:"extraction_phase"`
	DocumentType string `json:"document_type,omitempty"`

	// Fields maps canonical parameter names to extracted string values.
	Fields map[string]string `json:"fields"`
	// AdditionalFields keeps extracted keys that matched no known column.
	AdditionalFields map[string]string `json:"additional_fields,omitempty"`
}

// CoaRecord represents a persisted COA row for data transfer between layers.
// UserID is nil for legacy rows predating multi-tenancy.
type CoaRecord struct {
	ID               uuid.UUID         `json:"id"`
	UserID           *uuid.UUID        `json:"user_id,omitempty"`
	SampleID         *string           `json:"sample_id,omitempty"`
	BatchID          *string           `json:"batch_id,omitempty"`
	FileName         string            `json:"file_name"`
	Fields           map[string]string `json:"fields"`
	AdditionalFields map[string]string `json:"additional_fields,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Field returns the value for a canonical parameter, or "" when absent.
func (r *CoaRecord) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

func StrPtr(s string) *string { return &s }

func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
