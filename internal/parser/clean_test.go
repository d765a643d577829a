package parser

import "testing"

func TestCleanValue(t *testing.T) {
	tests := []struct {
		value, parameter, want string
	}{
		{"19,3 mg KOH/g", "AV", "19.3"},
		{"19.3", "AV", "19.3"},
		{"Not detected per 25g", "Salmonella (in 25g)", "negative"},
		{"ND", "Pesticides", "negative"},
		{"Less than 0,5 meq O2/kg", "POV", "0.5"},
		{"Less than 0,01 %", "Toluene Insolubles", "0.00"},
		{"Less than 0.5 %", "Moisture", "0.5"},
		{"0.005 %", "Hexane Insolubles", "0.00"},
		{"Pb) (7439-92-1) Less than 0,02 mg/kg", "Lead", "0.02"},
		{"4183 cP", "Viscosity at 25°C", "4.183"},
		{"Less than 12000 cP", "Viscosity at 25°C", "12"},
		{"4.183", "Viscosity at 25°C", "4.183"},
		{"complies", "E. coli", "complies"},
		{"", "AV", ""},
		{"25,18 %", "PC", "25.18"},
	}
	for _, tt := range tests {
		if got := CleanValue(tt.value, tt.parameter); got != tt.want {
			t.Errorf("CleanValue(%q, %q) = %q, want %q", tt.value, tt.parameter, got, tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	if f, ok := ParseDecimal("1,15"); !ok || f != 1.15 {
		t.Errorf("ParseDecimal(1,15) = %v, %v", f, ok)
	}
	if _, ok := ParseDecimal("negative"); ok {
		t.Error("ParseDecimal(negative) should fail")
	}
}

func TestFormatRounded2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.10 + 1.05, "1.15"},
		{67.41, "67.41"},
		{3.0, "3"},
		{25.184999, "25.18"},
	}
	for _, tt := range tests {
		if got := FormatRounded2(tt.in); got != tt.want {
			t.Errorf("FormatRounded2(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
