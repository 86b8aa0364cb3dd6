package tax

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	provider, err := NewStaticProvider()
	if err != nil {
		t.Fatalf("Expected embedded tables to load, got %v", err)
	}
	return NewCalculator(provider)
}

func annual(t *testing.T, c *Calculator, income float64, state string) domain.TaxBreakdown {
	t.Helper()
	out, err := c.Annual(AnnualInput{
		Income:       decimal.NewFromFloat(income),
		State:        state,
		FilingStatus: domain.FilingSingle,
		Year:         2024,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return out
}

func TestAnnual_NoIncomeTaxState(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, 150000, "TX")
	if !out.State.IsZero() {
		t.Errorf("Expected zero state tax for TX, got %s", out.State.String())
	}
}

func TestAnnual_FlatRateState(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, 100000, "PA")
	// 100000 * 3.07%
	expected := decimal.NewFromFloat(3070)
	if !out.State.Equal(expected) {
		t.Errorf("Expected PA state tax %s, got %s", expected.String(), out.State.String())
	}
}

func TestAnnual_FederalBracketWalk(t *testing.T) {
	calc := newTestCalculator(t)

	// Income 60000, single, 2024: taxable = 60000 - 14600 = 45400.
	// 10% of 11600 + 12% of (45400 - 11600) = 1160 + 4056 = 5216.
	out := annual(t, calc, 60000, "TX")
	expected := decimal.NewFromInt(5216)
	if !out.Federal.Equal(expected) {
		t.Errorf("Expected federal tax %s, got %s", expected.String(), out.Federal.String())
	}
}

func TestAnnual_SocialSecurityCapped(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, 300000, "TX")
	// Capped at the 2024 wage base: 160200 * 6.2%.
	expected := decimal.NewFromFloat(9932.40)
	if !out.SocialSecurity.Equal(expected) {
		t.Errorf("Expected social security %s, got %s", expected.String(), out.SocialSecurity.String())
	}
}

func TestAnnual_AdditionalMedicareAboveThreshold(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, 250000, "TX")
	// 250000 * 1.45% + (250000 - 200000) * 0.9% = 3625 + 450.
	expected := decimal.NewFromFloat(4075)
	if !out.Medicare.Equal(expected) {
		t.Errorf("Expected medicare %s, got %s", expected.String(), out.Medicare.String())
	}
}

func TestAnnual_CaliforniaSDI(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, 100000, "CA")
	expected := decimal.NewFromFloat(1100) // 100000 * 1.1%
	if !out.SDI.Equal(expected) {
		t.Errorf("Expected SDI %s, got %s", expected.String(), out.SDI.String())
	}
	if !out.State.IsPositive() {
		t.Errorf("Expected positive CA state tax, got %s", out.State.String())
	}
}

func TestAnnual_NegativeIncomeClampsToZero(t *testing.T) {
	calc := newTestCalculator(t)

	out := annual(t, calc, -50000, "CA")
	for name, amount := range map[string]decimal.Decimal{
		"federal":        out.Federal,
		"state":          out.State,
		"socialSecurity": out.SocialSecurity,
		"medicare":       out.Medicare,
		"sdi":            out.SDI,
	} {
		if !amount.IsZero() {
			t.Errorf("Expected zero %s tax for negative income, got %s", name, amount.String())
		}
	}
}

func TestAnnual_InvalidStateRejected(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Annual(AnnualInput{
		Income:       decimal.NewFromInt(100000),
		State:        "ZZ",
		FilingStatus: domain.FilingSingle,
		Year:         2024,
	})
	if !errors.Is(err, domain.ErrUnknownState) {
		t.Fatalf("Expected ErrUnknownState, got %v", err)
	}
}

func TestAnnual_UnknownYearRejected(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Annual(AnnualInput{
		Income:       decimal.NewFromInt(100000),
		State:        "TX",
		FilingStatus: domain.FilingSingle,
		Year:         1999,
	})
	if !errors.Is(err, domain.ErrUnknownTaxYear) {
		t.Fatalf("Expected ErrUnknownTaxYear, got %v", err)
	}
}

func TestAnnual_MonotonicInIncome(t *testing.T) {
	calc := newTestCalculator(t)

	prev := decimal.Zero
	for _, income := range []float64{0, 10000, 50000, 100000, 180000, 250000, 500000, 1000000} {
		out := annual(t, calc, income, "CA")
		total := out.Total()
		if total.LessThan(prev) {
			t.Fatalf("Tax not monotonic: income %.0f taxed %s, below previous %s",
				income, total.String(), prev.String())
		}
		prev = total
	}
}

func TestLoadFile_MissingPath(t *testing.T) {
	if _, err := LoadFile("does-not-exist.json"); err == nil {
		t.Fatal("Expected error for missing tables file")
	}
}
