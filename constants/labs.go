package constants

import "strings"

// Laboratories that issue the COA documents we understand.
const (
	LabSpectral = "Spectral Service AG"
	LabNofalab  = "Nofalab"
	LabChelab   = "Chelab"
	LabUnknown  = ""
)

// spectralIndicators are phrases that identify a Spectral Service AG export.
var spectralIndicators = []string{
	"spectral service ag",
	"spectral service",
	"spectral ag",
	"weight-%",
}

// DetectLab matches known lab header phrases in the document text.
func DetectLab(text string) string {
	lower := strings.ToLower(text)
	for _, ind := range spectralIndicators {
		if strings.Contains(lower, ind) {
			return LabSpectral
		}
	}
	if strings.Contains(lower, "nofalab") {
		return LabNofalab
	}
	if strings.Contains(lower, "chelab") {
		return LabChelab
	}
	return LabUnknown
}
