package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaycheckGrossInvalid     = fmt.Errorf("%w: gross pay must be positive", ErrInvalidInput)
	ErrPaycheckFrequencyInvalid = fmt.Errorf("%w: unknown pay frequency", ErrInvalidInput)
	ErrPaycheckStateInvalid     = fmt.Errorf("%w: work or residence state is invalid", ErrInvalidInput)
	ErrPaycheckYTDNegative      = fmt.Errorf("%w: YTD amounts cannot be negative", ErrInvalidInput)
	ErrFilingStatusInvalid      = fmt.Errorf("%w: unknown filing status", ErrInvalidInput)
)

type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJoint    FilingStatus = "married_joint"
	FilingMarriedSeparate FilingStatus = "married_separate"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

func (f FilingStatus) Valid() bool {
	switch f {
	case FilingSingle, FilingMarriedJoint, FilingMarriedSeparate, FilingHeadOfHousehold:
		return true
	}
	return false
}

type PayFrequency string

const (
	FrequencyWeekly      PayFrequency = "weekly"
	FrequencyBiWeekly    PayFrequency = "bi-weekly"
	FrequencySemiMonthly PayFrequency = "semi-monthly"
	FrequencyMonthly     PayFrequency = "monthly"
	FrequencyQuarterly   PayFrequency = "quarterly"
	FrequencyAnnual      PayFrequency = "annual"
)

// PeriodsPerYear returns how many pay periods the frequency yields in a year,
// or 0 for an unknown frequency.
func (f PayFrequency) PeriodsPerYear() int32 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiWeekly:
		return 26
	case FrequencySemiMonthly:
		return 24
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyAnnual:
		return 1
	}
	return 0
}

// YTDSnapshot accumulates gross pay and withheld tax since the start of the
// tax year. Amounts are monotonically non-decreasing across successive
// paychecks within the same year.
type YTDSnapshot struct {
	Gross          decimal.Decimal `json:"gross"`
	Federal        decimal.Decimal `json:"federal"`
	State          decimal.Decimal `json:"state"`
	SocialSecurity decimal.Decimal `json:"socialSecurity"`
	Medicare       decimal.Decimal `json:"medicare"`
	SDI            decimal.Decimal `json:"sdi"`
}

func (y YTDSnapshot) anyNegative() bool {
	for _, d := range []decimal.Decimal{y.Gross, y.Federal, y.State, y.SocialSecurity, y.Medicare, y.SDI} {
		if d.IsNegative() {
			return true
		}
	}
	return false
}

// DeductionInput holds per-period paycheck deductions.
type DeductionInput struct {
	Retirement      decimal.Decimal `json:"retirement"`      // pre-tax
	HealthInsurance decimal.Decimal `json:"healthInsurance"` // pre-tax
	OtherPreTax     decimal.Decimal `json:"otherPreTax"`
	OtherPostTax    decimal.Decimal `json:"otherPostTax"`
}

func (d DeductionInput) PreTaxTotal() decimal.Decimal {
	return d.Retirement.Add(d.HealthInsurance).Add(d.OtherPreTax)
}

func (d DeductionInput) PostTaxTotal() decimal.Decimal {
	return d.OtherPostTax
}

func (d DeductionInput) Total() decimal.Decimal {
	return d.PreTaxTotal().Add(d.PostTaxTotal())
}

// PaycheckInput describes a single pay period to be withheld against.
type PaycheckInput struct {
	GrossPay       decimal.Decimal `json:"grossPay"`
	PayFrequency   PayFrequency    `json:"payFrequency"`
	PayDate        time.Time       `json:"payDate"`
	FilingStatus   FilingStatus    `json:"filingStatus"`
	Exemptions     int32           `json:"exemptions"`
	WorkState      string          `json:"workState"`
	ResidenceState string          `json:"residenceState"`
	TaxYear        int             `json:"taxYear"`
	YTD            YTDSnapshot     `json:"ytd"`
	Deductions     DeductionInput  `json:"deductions"`
}

func (p *PaycheckInput) Validate() error {
	if p.GrossPay.LessThanOrEqual(decimal.Zero) {
		return ErrPaycheckGrossInvalid
	}
	if p.PayFrequency.PeriodsPerYear() == 0 {
		return ErrPaycheckFrequencyInvalid
	}
	if !p.FilingStatus.Valid() {
		return ErrFilingStatusInvalid
	}
	if !ValidStateCode(p.WorkState) || !ValidStateCode(p.ResidenceState) {
		return ErrPaycheckStateInvalid
	}
	if p.YTD.anyNegative() {
		return ErrPaycheckYTDNegative
	}
	return nil
}

// DeductionBreakdown itemizes what was deducted this period.
type DeductionBreakdown struct {
	PreTax  decimal.Decimal `json:"preTax"`
	PostTax decimal.Decimal `json:"postTax"`
	Total   decimal.Decimal `json:"total"`
}

// AnnualProjection extrapolates the current period to a full year.
type AnnualProjection struct {
	Gross decimal.Decimal `json:"gross"`
	Taxes decimal.Decimal `json:"taxes"`
	Net   decimal.Decimal `json:"net"`
}

// PaycheckCalculation is the result of withholding one pay period.
type PaycheckCalculation struct {
	Input      PaycheckInput      `json:"input"`
	GrossPay   decimal.Decimal    `json:"grossPay"`
	Taxes      TaxBreakdown       `json:"taxes"`
	TotalTax   decimal.Decimal    `json:"totalTax"`
	Deductions DeductionBreakdown `json:"deductions"`
	NetPay     decimal.Decimal    `json:"netPay"`
	YTD        YTDSnapshot        `json:"ytd"` // updated through this period
	Projection AnnualProjection   `json:"projection"`
}
