package dataprep

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are the raw cell values treated as absent, mirroring what
// common CSV tooling reads as NA.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"<NA>": {},
}

// IsMissing reports whether a raw cell value denotes a missing value.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// ParseNumeric parses a raw cell as float64. Missing or unparsable cells
// become NaN so they flow into imputation instead of failing the row.
func ParseNumeric(s string) float64 {
	if IsMissing(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseCategory normalizes a raw categorical cell; missing cells become "".
func ParseCategory(s string) string {
	if IsMissing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// ParseNumericColumn parses every cell of col with ParseNumeric.
func ParseNumericColumn(col []string) []float64 {
	out := make([]float64, len(col))
	for i, s := range col {
		out[i] = ParseNumeric(s)
	}
	return out
}
