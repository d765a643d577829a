package constants

import "testing"

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"coa.pdf", true},
		{"COA.PDF", true},
		{"BA001734 - M20253004 - Ali.pdf", true},
		{"notes.txt", false},
		{"archive.pdf.zip", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := AllowedExt(tt.name); got != tt.want {
			t.Errorf("AllowedExt(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	if got := NormalizeExt(".PDF"); got != "pdf" {
		t.Errorf("NormalizeExt = %q", got)
	}
}
