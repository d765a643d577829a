package constants

import (
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the file extensions accepted for COA ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// ReservedKeys are extraction-result keys that are not parameter columns.
var ReservedKeys = map[string]struct{}{
	"sample_id":        {},
	"batch_id":         {},
	"extraction_phase": {},
	"document_type":    {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt checks whether a file name carries an accepted extension.
func AllowedExt(name string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(name))]
	return ok
}
