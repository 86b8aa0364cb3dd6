package location

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

var hundred = decimal.NewFromInt(100)

func TestInfoNormalizesCode(t *testing.T) {
	l := NewStaticLookup()

	info, err := l.Info(" tx ")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.State != "TX" {
		t.Errorf("State = %q, want TX", info.State)
	}
	if !info.NoIncomeTax {
		t.Error("TX should be flagged as a no-income-tax state")
	}
}

func TestInfoUnknownState(t *testing.T) {
	l := NewStaticLookup()

	_, err := l.Info("ZZ")
	if !errors.Is(err, domain.ErrUnknownState) {
		t.Errorf("Info(ZZ) error = %v, want ErrUnknownState", err)
	}
}

func TestCoversAllStates(t *testing.T) {
	l := NewStaticLookup()
	if got := len(l.states); got != 51 {
		t.Errorf("state count = %d, want 51", got)
	}

	for _, code := range []string{"AK", "FL", "NV", "NH", "SD", "TN", "TX", "WA", "WY"} {
		info, err := l.Info(code)
		if err != nil {
			t.Fatalf("Info(%s): %v", code, err)
		}
		if !info.NoIncomeTax {
			t.Errorf("%s should be flagged as a no-income-tax state", code)
		}
	}
}

func TestScoresWithinRange(t *testing.T) {
	l := NewStaticLookup()
	for code, info := range l.states {
		if info.DesirabilityScore.IsNegative() || info.DesirabilityScore.GreaterThan(hundred) {
			t.Errorf("%s desirability score %s out of range", code, info.DesirabilityScore)
		}
		if info.CostOfLivingIndex.LessThanOrEqual(decimal.Zero) {
			t.Errorf("%s cost of living index %s must be positive", code, info.CostOfLivingIndex)
		}
	}
}
