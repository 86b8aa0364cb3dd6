package domain

import "strings"

// stateCodes is the set of valid two-letter jurisdiction codes (50 states + DC).
var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

// ValidStateCode reports whether code is a recognized two-letter state code.
// Comparison is case-insensitive.
func ValidStateCode(code string) bool {
	_, ok := stateCodes[strings.ToUpper(code)]
	return ok
}

// NormalizeStateCode upper-cases and trims a state code.
func NormalizeStateCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
