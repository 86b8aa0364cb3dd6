package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/tax"
)

// PaycheckEngine computes a single pay period's withholding with
// year-to-date reconciliation.
type PaycheckEngine struct {
	tax *tax.Calculator
}

// NewPaycheckEngine creates a new PaycheckEngine.
func NewPaycheckEngine(taxCalc *tax.Calculator) *PaycheckEngine {
	return &PaycheckEngine{tax: taxCalc}
}

// Calculate withholds one pay period. asOf determines how many pay periods
// of the year have elapsed, which drives the YTD drift correction; passing
// it explicitly keeps the engine deterministic.
//
// Income tax withholding annualizes this period's taxable gross, computes
// the annual liability, allocates a per-period target, then corrects for
// drift between expected and actual YTD withholding. Social Security, SDI,
// and Additional Medicare tax only the slice of this period's gross that
// falls below (or above) their wage base or threshold.
func (e *PaycheckEngine) Calculate(in domain.PaycheckInput, asOf time.Time) (*domain.PaycheckCalculation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	table, err := e.tax.Table(in.TaxYear)
	if err != nil {
		return nil, err
	}

	periods := decimal.NewFromInt32(in.PayFrequency.PeriodsPerYear())
	elapsed := decimal.NewFromInt32(PeriodsElapsed(in.PayFrequency, asOf))

	preTax := in.Deductions.PreTaxTotal()
	taxableGross := in.GrossPay.Sub(preTax)
	if taxableGross.IsNegative() {
		taxableGross = decimal.Zero
	}
	annualTaxable := taxableGross.Mul(periods)

	annualFederal, err := e.tax.AnnualFederal(annualTaxable, in.FilingStatus, in.Exemptions, in.TaxYear)
	if err != nil {
		return nil, err
	}
	annualState, err := e.tax.AnnualState(annualTaxable, in.ResidenceState, in.TaxYear)
	if err != nil {
		return nil, err
	}

	federal := reconcileWithholding(annualFederal.Div(periods), elapsed, in.YTD.Federal)
	state := reconcileWithholding(annualState.Div(periods), elapsed, in.YTD.State)

	socialSecurity := wageBaseTax(in.GrossPay, in.YTD.Gross,
		table.FICA.SocialSecurityWageBase, table.FICA.SocialSecurityRate)

	medicare := in.GrossPay.Mul(table.FICA.MedicareRate).
		Add(thresholdTax(in.GrossPay, in.YTD.Gross,
			table.FICA.AdditionalMedicareThresholds[in.FilingStatus],
			table.FICA.AdditionalMedicareRate))

	sdi := decimal.Zero
	if sdiTable, ok := table.SDI[domain.NormalizeStateCode(in.WorkState)]; ok {
		sdi = wageBaseTax(in.GrossPay, in.YTD.Gross, sdiTable.WageBase, sdiTable.Rate)
	}

	taxes := domain.TaxBreakdown{
		Federal:        roundCents(federal),
		State:          roundCents(state),
		SocialSecurity: roundCents(socialSecurity),
		Medicare:       roundCents(medicare),
		SDI:            roundCents(sdi),
	}
	totalTax := taxes.Total()

	deductions := domain.DeductionBreakdown{
		PreTax:  roundCents(preTax),
		PostTax: roundCents(in.Deductions.PostTaxTotal()),
		Total:   roundCents(in.Deductions.Total()),
	}

	netPay := in.GrossPay.Sub(totalTax).Sub(deductions.Total)

	updated := domain.YTDSnapshot{
		Gross:          in.YTD.Gross.Add(in.GrossPay),
		Federal:        in.YTD.Federal.Add(taxes.Federal),
		State:          in.YTD.State.Add(taxes.State),
		SocialSecurity: in.YTD.SocialSecurity.Add(taxes.SocialSecurity),
		Medicare:       in.YTD.Medicare.Add(taxes.Medicare),
		SDI:            in.YTD.SDI.Add(taxes.SDI),
	}

	projection := e.project(in, table, periods, annualFederal, annualState)

	return &domain.PaycheckCalculation{
		Input:      in,
		GrossPay:   roundCents(in.GrossPay),
		Taxes:      taxes,
		TotalTax:   roundCents(totalTax),
		Deductions: deductions,
		NetPay:     roundCents(netPay),
		YTD:        updated,
		Projection: projection,
	}, nil
}

// reconcileWithholding allocates the per-period target and corrects drift:
// the period withholds the gap between expected YTD (target through this
// period, inclusive) and what has actually been withheld so far. Never
// negative.
func reconcileWithholding(target, periodsElapsed, ytdWithheld decimal.Decimal) decimal.Decimal {
	expected := target.Mul(periodsElapsed)
	current := expected.Sub(ytdWithheld)
	if current.IsNegative() {
		return decimal.Zero
	}
	return current
}

// wageBaseTax taxes only the portion of this period's gross that still fits
// under the annual wage base. Once YTD gross has reached the base the tax is
// exactly zero for the rest of the year.
func wageBaseTax(gross, ytdGross, wageBase, rate decimal.Decimal) decimal.Decimal {
	remaining := wageBase.Sub(ytdGross)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	taxable := decimal.Min(gross, remaining)
	return taxable.Mul(rate)
}

// thresholdTax taxes only the portion of this period's gross that falls
// above the annual threshold, splitting the period that crosses it.
func thresholdTax(gross, ytdGross, threshold, rate decimal.Decimal) decimal.Decimal {
	newYTD := ytdGross.Add(gross)
	if newYTD.LessThanOrEqual(threshold) {
		return decimal.Zero
	}
	taxable := gross
	if ytdGross.LessThan(threshold) {
		taxable = newYTD.Sub(threshold)
	}
	return taxable.Mul(rate)
}

func (e *PaycheckEngine) project(in domain.PaycheckInput, table *tax.YearTable, periods, annualFederal, annualState decimal.Decimal) domain.AnnualProjection {
	annualGross := in.GrossPay.Mul(periods)

	ss := decimal.Min(annualGross, table.FICA.SocialSecurityWageBase).
		Mul(table.FICA.SocialSecurityRate)
	medicare := annualGross.Mul(table.FICA.MedicareRate)
	if threshold := table.FICA.AdditionalMedicareThresholds[in.FilingStatus]; annualGross.GreaterThan(threshold) {
		medicare = medicare.Add(annualGross.Sub(threshold).Mul(table.FICA.AdditionalMedicareRate))
	}
	sdi := decimal.Zero
	if sdiTable, ok := table.SDI[domain.NormalizeStateCode(in.WorkState)]; ok {
		sdi = decimal.Min(annualGross, sdiTable.WageBase).Mul(sdiTable.Rate)
	}

	annualTaxes := annualFederal.Add(annualState).Add(ss).Add(medicare).Add(sdi)
	annualNet := annualGross.Sub(annualTaxes).Sub(in.Deductions.Total().Mul(periods))

	return domain.AnnualProjection{
		Gross: roundCents(annualGross),
		Taxes: roundCents(annualTaxes),
		Net:   roundCents(annualNet),
	}
}
