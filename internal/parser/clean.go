package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reNotDetected    = regexp.MustCompile(`(?i)\b(?:not\s+detected|nd)\b`)
	reLessThan       = regexp.MustCompile(`(?i)less\s+than\s+(\d+(?:[,.]\d+)?)`)
	reFirstDecimal   = regexp.MustCompile(`\d+(?:[,.]\d+)?`)
	reViscosityUnits = regexp.MustCompile(`(?i)\b(?:cp|centipoise|mpa\.?s|pas)\b`)
	rePlainNumber    = regexp.MustCompile(`^\d+(?:[,.]\d+)?$`)
)

// CleanValue normalizes a raw lab-reported value to the stored form:
//
//	"19,3 mg KOH/g"                      -> "19.3"
//	"Less than 0,5 meq"                  -> "0.5"
//	"Less than 0,01 %"                   -> "0.00"
//	"Not detected per 25g"               -> "negative"
//	"Pb) (7439-92-1) Less than 0,02 mg/kg" -> "0.02"
//	"4183 cP" (Viscosity at 25°C)        -> "4.183"
//
// Values with no numeric content pass through unchanged.
func CleanValue(value, parameter string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	paramLower := strings.ToLower(parameter)
	isViscosity := strings.Contains(paramLower, "viscosity") && strings.Contains(paramLower, "25")

	if reNotDetected.MatchString(value) {
		return "negative"
	}

	if m := reLessThan.FindStringSubmatch(value); m != nil {
		num := strings.ReplaceAll(m[1], ",", ".")
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			if strings.Contains(value, "%") && f <= 0.01 {
				return "0.00"
			}
			if isViscosity {
				return strconv.FormatFloat(f/1000, 'f', -1, 64)
			}
		}
		return num
	}

	m := reFirstDecimal.FindString(value)
	if m == "" {
		return value
	}
	num := strings.ReplaceAll(m, ",", ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return value
	}

	if strings.Contains(value, "%") && f < 0.01 {
		return "0.00"
	}

	// Viscosity arrives in cP, is stored in Pa.s. A plain number means the
	// value was already converted upstream; only divide when units are
	// present.
	if isViscosity && reViscosityUnits.MatchString(value) && !rePlainNumber.MatchString(value) {
		return strconv.FormatFloat(f/1000, 'f', -1, 64)
	}

	return num
}

// ParseDecimal parses a lab decimal that may use a comma separator.
func ParseDecimal(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f, err == nil
}

// FormatRounded2 rounds to 2 decimal places and renders a plain decimal
// string carrying only the digits needed — never binary floating point
// artifact digits.
func FormatRounded2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
