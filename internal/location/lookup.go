// Package location supplies state desirability data used when scoring
// contract locations.
package location

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// Lookup resolves a state code to its desirability profile.
type Lookup interface {
	Info(state string) (domain.LocationInfo, error)
}

// StaticLookup serves a fixed snapshot of per-state data.
type StaticLookup struct {
	states map[string]domain.LocationInfo
}

// NewStaticLookup returns a lookup covering all 50 states and DC.
func NewStaticLookup() *StaticLookup {
	states := make(map[string]domain.LocationInfo, len(stateData))
	for code, d := range stateData {
		states[code] = domain.LocationInfo{
			State:             code,
			DesirabilityScore: decimal.NewFromInt(int64(d.score)),
			CostOfLivingIndex: decimal.NewFromInt(int64(d.colIndex)),
			NoIncomeTax:       d.noIncomeTax,
			HighDemand:        d.highDemand,
		}
	}
	return &StaticLookup{states: states}
}

// Info returns the profile for a state code.
func (l *StaticLookup) Info(state string) (domain.LocationInfo, error) {
	info, ok := l.states[domain.NormalizeStateCode(state)]
	if !ok {
		return domain.LocationInfo{}, fmt.Errorf("%w: %q", domain.ErrUnknownState, state)
	}
	return info, nil
}

type stateEntry struct {
	score       int // 0-100
	colIndex    int // 100 = national average
	noIncomeTax bool
	highDemand  bool
}

var stateData = map[string]stateEntry{
	"AL": {score: 52, colIndex: 88},
	"AK": {score: 55, colIndex: 125, noIncomeTax: true, highDemand: true},
	"AZ": {score: 72, colIndex: 103, highDemand: true},
	"AR": {score: 50, colIndex: 89},
	"CA": {score: 78, colIndex: 138, highDemand: true},
	"CO": {score: 80, colIndex: 105, highDemand: true},
	"CT": {score: 62, colIndex: 113},
	"DE": {score: 58, colIndex: 101},
	"DC": {score: 68, colIndex: 140},
	"FL": {score: 75, colIndex: 101, noIncomeTax: true, highDemand: true},
	"GA": {score: 66, colIndex: 91, highDemand: true},
	"HI": {score: 70, colIndex: 180},
	"ID": {score: 64, colIndex: 98},
	"IL": {score: 60, colIndex: 94},
	"IN": {score: 55, colIndex: 91},
	"IA": {score: 54, colIndex: 90},
	"KS": {score: 52, colIndex: 87},
	"KY": {score: 53, colIndex: 93},
	"LA": {score: 51, colIndex: 92},
	"ME": {score: 63, colIndex: 111},
	"MD": {score: 64, colIndex: 116},
	"MA": {score: 70, colIndex: 148},
	"MI": {score: 58, colIndex: 91},
	"MN": {score: 67, colIndex: 95},
	"MS": {score: 47, colIndex: 86},
	"MO": {score: 54, colIndex: 88},
	"MT": {score: 66, colIndex: 103},
	"NE": {score: 55, colIndex: 93},
	"NV": {score: 68, colIndex: 101, noIncomeTax: true, highDemand: true},
	"NH": {score: 67, colIndex: 115, noIncomeTax: true},
	"NJ": {score: 60, colIndex: 114},
	"NM": {score: 58, colIndex: 94, highDemand: true},
	"NY": {score: 72, colIndex: 125, highDemand: true},
	"NC": {score: 70, colIndex: 96, highDemand: true},
	"ND": {score: 52, colIndex: 94},
	"OH": {score: 56, colIndex: 94},
	"OK": {score: 50, colIndex: 86},
	"OR": {score: 71, colIndex: 115},
	"PA": {score: 60, colIndex: 95},
	"RI": {score: 59, colIndex: 110},
	"SC": {score: 64, colIndex: 95},
	"SD": {score: 53, colIndex: 92, noIncomeTax: true},
	"TN": {score: 66, colIndex: 90, noIncomeTax: true, highDemand: true},
	"TX": {score: 74, colIndex: 93, noIncomeTax: true, highDemand: true},
	"UT": {score: 69, colIndex: 102},
	"VT": {score: 62, colIndex: 114},
	"VA": {score: 67, colIndex: 101},
	"WA": {score: 76, colIndex: 116, noIncomeTax: true, highDemand: true},
	"WV": {score: 45, colIndex: 89},
	"WI": {score: 59, colIndex: 95},
	"WY": {score: 56, colIndex: 95, noIncomeTax: true},
}
