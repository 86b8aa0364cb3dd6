// Package engine holds the deterministic compensation models: contract
// projection, per-paycheck withholding, and multi-contract comparison.
// Engines are pure and safe for concurrent use.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/tax"
)

var weeksPerYear = decimal.NewFromInt(52)

// ContractEngine projects total compensation for one multi-week contract.
type ContractEngine struct {
	tax *tax.Calculator
}

// NewContractEngine creates a new ContractEngine.
func NewContractEngine(taxCalc *tax.Calculator) *ContractEngine {
	return &ContractEngine{tax: taxCalc}
}

// Calculate projects gross, taxes, net, and effective hourly rate for one
// contract. All intermediate arithmetic stays unrounded; amounts are rounded
// to cents only on the returned result.
func (e *ContractEngine) Calculate(in domain.ContractInput) (*domain.ContractCalculation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	weeks := decimal.NewFromInt32(in.DurationWeeks)
	weeklyWages := in.HourlyRate.Mul(in.HoursPerWeek)

	annualGross := weeklyWages.Mul(weeksPerYear)
	contractGross := weeklyWages.Mul(weeks)

	annualPreTax := in.PreTaxWeekly.Mul(weeksPerYear)
	taxableAnnual := annualGross.Sub(annualPreTax)

	annualTaxes, err := e.tax.Annual(tax.AnnualInput{
		Income:       taxableAnnual,
		State:        in.Location.State,
		FilingStatus: in.FilingStatus,
		Exemptions:   in.Exemptions,
		Year:         in.TaxYear,
	})
	if err != nil {
		return nil, err
	}

	// Taxes accrue over a full year; the contract bears its weeks' share.
	proration := weeks.Div(weeksPerYear)
	contractTaxes := domain.TaxBreakdown{
		Federal:        annualTaxes.Federal.Mul(proration),
		State:          annualTaxes.State.Mul(proration),
		SocialSecurity: annualTaxes.SocialSecurity.Mul(proration),
		Medicare:       annualTaxes.Medicare.Mul(proration),
		SDI:            annualTaxes.SDI.Mul(proration),
	}

	totalStipends := in.Stipends.ContractTotal(in.DurationWeeks)
	annualStipends := in.Stipends.WeeklyTotal().Mul(weeksPerYear)

	contractNet := contractGross.
		Sub(in.PreTaxWeekly.Mul(weeks)).
		Sub(contractTaxes.Total()).
		Add(totalStipends)
	annualNet := annualGross.
		Sub(annualPreTax).
		Sub(annualTaxes.Total()).
		Add(annualStipends)

	effectiveHourly := contractNet.Div(in.TotalHours())
	effectiveTaxRate := annualTaxes.Total().Div(annualGross).Mul(decimal.NewFromInt(100))
	benefitsValue := totalStipends.Add(in.BenefitsAdders)

	return &domain.ContractCalculation{
		Input: in,
		Totals: domain.ContractTotals{
			GrossPay:            roundCents(contractGross),
			NetPay:              roundCents(contractNet),
			AnnualizedGross:     roundCents(annualGross),
			AnnualizedNet:       roundCents(annualNet),
			TotalStipends:       roundCents(totalStipends),
			TotalTaxes:          roundCents(contractTaxes.Total()),
			EffectiveHourlyRate: roundCents(effectiveHourly),
		},
		Taxes: roundBreakdown(contractTaxes),
		Metrics: domain.ContractMetrics{
			EffectiveTaxRate: effectiveTaxRate.Round(2),
			BenefitsValue:    roundCents(benefitsValue),
		},
	}, nil
}

// roundCents rounds a currency amount to the smallest currency unit.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func roundBreakdown(t domain.TaxBreakdown) domain.TaxBreakdown {
	return domain.TaxBreakdown{
		Federal:        roundCents(t.Federal),
		State:          roundCents(t.State),
		SocialSecurity: roundCents(t.SocialSecurity),
		Medicare:       roundCents(t.Medicare),
		SDI:            roundCents(t.SDI),
	}
}
