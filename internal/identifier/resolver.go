// Package identifier normalizes and recovers sample/batch identifiers so the
// same physical sample compares equal across labs, filenames and typists.
package identifier

import (
	"regexp"
	"strings"
)

var (
	// Sample codes: M + optional internal whitespace + 8 digits.
	reSample = regexp.MustCompile(`\bM\s?\d{8}\b`)
	// Batch codes: letter prefix + 6 digits.
	reBatch = regexp.MustCompile(`\bBA\d{6}\b`)

	reSampleDescription = regexp.MustCompile(`(?i)Sample\s+description:\s*([^\n\r]*)`)
	reSampleNo          = regexp.MustCompile(`(?i)Sample\s+No:\s*([^\n\r]*)`)
)

// NormalizeSampleID produces the canonical comparison form of a sample ID:
// whitespace trimmed, one leading M (any case, optional following whitespace)
// stripped. Returns "" when nothing identifying remains. Idempotent.
func NormalizeSampleID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && (s[0] == 'M' || s[0] == 'm') {
		rest := strings.TrimSpace(s[1:])
		// A bare prefix carries no identity; only strip ahead of a numeric
		// code, "Munich" is not M + unich.
		if rest == "" || (rest[0] >= '0' && rest[0] <= '9') {
			s = rest
		}
	}
	return s
}

// NormalizeBatchID trims only; batch codes carry no prefix variants.
func NormalizeBatchID(s string) string {
	return strings.TrimSpace(s)
}

// FromText extracts sample and batch IDs from document content. The sample
// ID is preferred from the "Sample description" field, then "Sample No",
// then anywhere in the text; whitespace inside the matched code is removed.
func FromText(text string) (sampleID, batchID string) {
	for _, field := range []*regexp.Regexp{reSampleDescription, reSampleNo} {
		if m := field.FindStringSubmatch(text); m != nil {
			if code := reSample.FindString(m[1]); code != "" {
				sampleID = stripSpaces(code)
				break
			}
		}
	}
	if sampleID == "" {
		if code := reSample.FindString(text); code != "" {
			sampleID = stripSpaces(code)
		}
	}
	batchID = reBatch.FindString(text)
	return sampleID, batchID
}

// FromFilename recovers identifiers from an upload's original filename, e.g.
// "BA001734 - M20253004 - Ali.pdf". Both patterns match independently; the
// trailing lab-name token never matters.
func FromFilename(name string) (sampleID, batchID string) {
	if code := reSample.FindString(name); code != "" {
		sampleID = stripSpaces(code)
	}
	batchID = reBatch.FindString(name)
	return sampleID, batchID
}

// Resolve decides the effective identifiers for a document: content-derived
// IDs always win, filename-derived ones only fill gaps.
func Resolve(contentSample, contentBatch, fileName string) (sampleID, batchID string) {
	sampleID, batchID = contentSample, contentBatch
	if sampleID != "" && batchID != "" {
		return sampleID, batchID
	}
	fnSample, fnBatch := FromFilename(fileName)
	if sampleID == "" {
		sampleID = fnSample
	}
	if batchID == "" {
		batchID = fnBatch
	}
	return sampleID, batchID
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
