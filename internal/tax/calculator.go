// Package tax computes annual federal, state, and payroll tax amounts from
// versioned rate tables. All amounts are decimal; nothing here rounds.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// Calculator computes full-year tax amounts from a table provider.
type Calculator struct {
	provider Provider
}

// NewCalculator creates a new Calculator backed by the given provider.
func NewCalculator(provider Provider) *Calculator {
	return &Calculator{provider: provider}
}

// Table exposes the underlying year table, for callers that need raw
// wage-base and threshold figures (the paycheck engine does).
func (c *Calculator) Table(year int) (*YearTable, error) {
	return c.provider.Table(year)
}

// AnnualInput describes one full-year tax computation.
type AnnualInput struct {
	Income       decimal.Decimal // annualized, net of pre-tax deductions
	State        string
	FilingStatus domain.FilingStatus
	Exemptions   int32
	Year         int
}

// Annual returns the full-year tax breakdown for the input. Negative income
// clamps to zero taxable income; tax amounts are never negative. An invalid
// state code is a validation error; a valid state with no table entry owes
// zero state tax.
func (c *Calculator) Annual(in AnnualInput) (domain.TaxBreakdown, error) {
	var out domain.TaxBreakdown

	if !in.FilingStatus.Valid() {
		return out, domain.ErrFilingStatusInvalid
	}
	state := domain.NormalizeStateCode(in.State)
	if !domain.ValidStateCode(state) {
		return out, fmt.Errorf("%w: %q", domain.ErrUnknownState, in.State)
	}

	table, err := c.provider.Table(in.Year)
	if err != nil {
		return out, err
	}

	income := in.Income
	if income.IsNegative() {
		income = decimal.Zero
	}

	out.Federal = federalTax(table, income, in.FilingStatus, in.Exemptions)
	out.State = stateTax(table, state, income)
	out.SocialSecurity = socialSecurityTax(table, income)
	out.Medicare = medicareTax(table, income, in.FilingStatus)
	out.SDI = sdiTax(table, state, income)
	return out, nil
}

// AnnualFederal returns only the federal income tax for the input.
func (c *Calculator) AnnualFederal(income decimal.Decimal, status domain.FilingStatus, exemptions int32, year int) (decimal.Decimal, error) {
	if !status.Valid() {
		return decimal.Zero, domain.ErrFilingStatusInvalid
	}
	table, err := c.provider.Table(year)
	if err != nil {
		return decimal.Zero, err
	}
	if income.IsNegative() {
		income = decimal.Zero
	}
	return federalTax(table, income, status, exemptions), nil
}

// AnnualState returns only the state income tax for the input.
func (c *Calculator) AnnualState(income decimal.Decimal, state string, year int) (decimal.Decimal, error) {
	state = domain.NormalizeStateCode(state)
	if !domain.ValidStateCode(state) {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownState, state)
	}
	table, err := c.provider.Table(year)
	if err != nil {
		return decimal.Zero, err
	}
	if income.IsNegative() {
		income = decimal.Zero
	}
	return stateTax(table, state, income), nil
}

func federalTax(table *YearTable, income decimal.Decimal, status domain.FilingStatus, exemptions int32) decimal.Decimal {
	taxable := income.
		Sub(table.StandardDeduction[status]).
		Sub(table.ExemptionAllowance.Mul(decimal.NewFromInt32(exemptions)))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return progressiveTax(table.FederalBrackets[status], taxable)
}

func stateTax(table *YearTable, state string, income decimal.Decimal) decimal.Decimal {
	st, ok := table.States[state]
	if !ok {
		return decimal.Zero
	}
	if st.FlatRate != nil {
		return income.Mul(*st.FlatRate)
	}
	return progressiveTax(st.Brackets, income)
}

func socialSecurityTax(table *YearTable, income decimal.Decimal) decimal.Decimal {
	taxable := decimal.Min(income, table.FICA.SocialSecurityWageBase)
	return taxable.Mul(table.FICA.SocialSecurityRate)
}

func medicareTax(table *YearTable, income decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	tax := income.Mul(table.FICA.MedicareRate)
	threshold := table.FICA.AdditionalMedicareThresholds[status]
	if income.GreaterThan(threshold) {
		tax = tax.Add(income.Sub(threshold).Mul(table.FICA.AdditionalMedicareRate))
	}
	return tax
}

func sdiTax(table *YearTable, state string, income decimal.Decimal) decimal.Decimal {
	sdi, ok := table.SDI[state]
	if !ok {
		return decimal.Zero
	}
	taxable := decimal.Min(income, sdi.WageBase)
	return taxable.Mul(sdi.Rate)
}

// progressiveTax walks an ascending bracket schedule, taxing each slice of
// taxable income at its bracket's rate.
func progressiveTax(brackets []Bracket, taxable decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, b := range brackets {
		if taxable.LessThanOrEqual(b.Threshold) {
			break
		}
		upper := taxable
		if i+1 < len(brackets) && taxable.GreaterThan(brackets[i+1].Threshold) {
			upper = brackets[i+1].Threshold
		}
		total = total.Add(upper.Sub(b.Threshold).Mul(b.Rate))
	}
	return total
}
