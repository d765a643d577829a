package identifier

import "testing"

func TestNormalizeSampleID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"M20253004", "20253004"},
		{"m20253004", "20253004"},
		{"M 20253004", "20253004"},
		{"  20253004  ", "20253004"},
		{"20253004", "20253004"},
		{"M", ""},
		{"", ""},
		{"Munich", "Munich"},
	}
	for _, tt := range tests {
		if got := NormalizeSampleID(tt.in); got != tt.want {
			t.Errorf("NormalizeSampleID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSampleIDIdempotent(t *testing.T) {
	for _, in := range []string{"M20253004", "M 20253004", "20253004", "Munich", "M", ""} {
		once := NormalizeSampleID(in)
		if twice := NormalizeSampleID(once); twice != once {
			t.Errorf("NormalizeSampleID not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeSampleIDEquivalence(t *testing.T) {
	variants := []string{"M20253004", "m20253004", " M20253004 ", "20253004", "M 20253004"}
	want := NormalizeSampleID(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeSampleID(v); got != want {
			t.Errorf("NormalizeSampleID(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeBatchID(t *testing.T) {
	if got := NormalizeBatchID("  BA001734 "); got != "BA001734" {
		t.Errorf("NormalizeBatchID = %q, want BA001734", got)
	}
}

func TestFromFilename(t *testing.T) {
	sample, batch := FromFilename("BA001734 - M20253004 - Ali.pdf")
	if sample != "M20253004" {
		t.Errorf("sample = %q, want M20253004", sample)
	}
	if batch != "BA001734" {
		t.Errorf("batch = %q, want BA001734", batch)
	}
}

func TestFromFilenameNoMatch(t *testing.T) {
	sample, batch := FromFilename("scan-2024-01-15.pdf")
	if sample != "" || batch != "" {
		t.Errorf("got (%q, %q), want empty", sample, batch)
	}
}

func TestFromTextPrefersSampleDescription(t *testing.T) {
	text := "Report M99999999\nSample No: M11111111\nSample description: M 20253004 soy lecithin\nBatch BA001734"
	sample, batch := FromText(text)
	if sample != "M20253004" {
		t.Errorf("sample = %q, want M20253004", sample)
	}
	if batch != "BA001734" {
		t.Errorf("batch = %q, want BA001734", batch)
	}
}

func TestFromTextFallsBackToSampleNo(t *testing.T) {
	text := "Sample No: M11111111\nsome other M99999999 mention"
	sample, _ := FromText(text)
	if sample != "M11111111" {
		t.Errorf("sample = %q, want M11111111", sample)
	}
}

func TestFromTextWholeTextFallback(t *testing.T) {
	sample, _ := FromText("analysed material M20250001 arrived sealed")
	if sample != "M20250001" {
		t.Errorf("sample = %q, want M20250001", sample)
	}
}

func TestResolveContentWins(t *testing.T) {
	sample, batch := Resolve("M20250001", "BA000001", "BA999999 - M99999999.pdf")
	if sample != "M20250001" || batch != "BA000001" {
		t.Errorf("got (%q, %q), want content IDs", sample, batch)
	}
}

func TestResolveFilenameFillsGaps(t *testing.T) {
	sample, batch := Resolve("", "BA000001", "BA999999 - M99999999.pdf")
	if sample != "M99999999" {
		t.Errorf("sample = %q, want filename fallback M99999999", sample)
	}
	if batch != "BA000001" {
		t.Errorf("batch = %q, want content BA000001", batch)
	}
}
