package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrContractRateInvalid     = fmt.Errorf("%w: hourly rate must be positive", ErrInvalidInput)
	ErrContractHoursInvalid    = fmt.Errorf("%w: hours per week must be positive", ErrInvalidInput)
	ErrContractDurationInvalid = fmt.Errorf("%w: duration must be at least 1 week", ErrInvalidInput)
	ErrContractStateInvalid    = fmt.Errorf("%w: contract location state is invalid", ErrInvalidInput)
	ErrContractStipendNegative = fmt.Errorf("%w: stipend amounts cannot be negative", ErrInvalidInput)
)

type ContractType string

const (
	ContractTypeTravelNursing ContractType = "travel_nursing"
	ContractTypeLocumTenens   ContractType = "locum_tenens"
	ContractTypePerDiem       ContractType = "per_diem"
	ContractTypePermanent     ContractType = "permanent"
)

// Location identifies where a contract assignment takes place.
type Location struct {
	State string `json:"state"`
	City  string `json:"city,omitempty"`
}

// Stipends holds the tax-advantaged allowances paid alongside wages.
type Stipends struct {
	HousingWeekly decimal.Decimal `json:"housingWeekly"`
	MealsWeekly   decimal.Decimal `json:"mealsWeekly"`
	TravelOneTime decimal.Decimal `json:"travelOneTime"`
}

// WeeklyTotal returns the recurring weekly stipend amount.
func (s Stipends) WeeklyTotal() decimal.Decimal {
	return s.HousingWeekly.Add(s.MealsWeekly)
}

// ContractTotal returns all stipends paid over a contract of the given duration.
func (s Stipends) ContractTotal(weeks int32) decimal.Decimal {
	return s.WeeklyTotal().Mul(decimal.NewFromInt32(weeks)).Add(s.TravelOneTime)
}

// ContractInput describes a single multi-week locum contract offer.
type ContractInput struct {
	Location       Location        `json:"location"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	HoursPerWeek   decimal.Decimal `json:"hoursPerWeek"`
	DurationWeeks  int32           `json:"durationWeeks"`
	ContractType   ContractType    `json:"contractType"`
	Stipends       Stipends        `json:"stipends"`
	PreTaxWeekly   decimal.Decimal `json:"preTaxWeekly"`   // retirement, premiums, etc. per week
	BenefitsAdders decimal.Decimal `json:"benefitsAdders"` // non-cash compensation over the contract
	FilingStatus   FilingStatus    `json:"filingStatus"`
	Exemptions     int32           `json:"exemptions"`
	TaxYear        int             `json:"taxYear"`
}

func (c *ContractInput) Validate() error {
	if c.HourlyRate.LessThanOrEqual(decimal.Zero) {
		return ErrContractRateInvalid
	}
	if c.HoursPerWeek.LessThanOrEqual(decimal.Zero) {
		return ErrContractHoursInvalid
	}
	if c.DurationWeeks < 1 {
		return ErrContractDurationInvalid
	}
	if !ValidStateCode(c.Location.State) {
		return ErrContractStateInvalid
	}
	if c.Stipends.HousingWeekly.IsNegative() ||
		c.Stipends.MealsWeekly.IsNegative() ||
		c.Stipends.TravelOneTime.IsNegative() {
		return ErrContractStipendNegative
	}
	return nil
}

// TotalHours returns the hours actually worked over the full contract term.
func (c *ContractInput) TotalHours() decimal.Decimal {
	return c.HoursPerWeek.Mul(decimal.NewFromInt32(c.DurationWeeks))
}

// TaxBreakdown itemizes annual or per-contract tax amounts by category.
type TaxBreakdown struct {
	Federal        decimal.Decimal `json:"federal"`
	State          decimal.Decimal `json:"state"`
	SocialSecurity decimal.Decimal `json:"socialSecurity"`
	Medicare       decimal.Decimal `json:"medicare"`
	SDI            decimal.Decimal `json:"sdi"`
}

// Total sums all tax categories.
func (t TaxBreakdown) Total() decimal.Decimal {
	return t.Federal.Add(t.State).Add(t.SocialSecurity).Add(t.Medicare).Add(t.SDI)
}

// ContractTotals holds the money roll-ups for one calculated contract.
type ContractTotals struct {
	GrossPay            decimal.Decimal `json:"grossPay"` // wages over the contract term
	NetPay              decimal.Decimal `json:"netPay"`   // take-home incl. stipends over the term
	AnnualizedGross     decimal.Decimal `json:"annualizedGross"`
	AnnualizedNet       decimal.Decimal `json:"annualizedNet"`
	TotalStipends       decimal.Decimal `json:"totalStipends"`
	TotalTaxes          decimal.Decimal `json:"totalTaxes"`
	EffectiveHourlyRate decimal.Decimal `json:"effectiveHourlyRate"`
}

// ContractMetrics holds derived ratios for one calculated contract.
type ContractMetrics struct {
	EffectiveTaxRate decimal.Decimal `json:"effectiveTaxRate"` // percent of gross wages
	BenefitsValue    decimal.Decimal `json:"benefitsValue"`
}

// ContractCalculation is the immutable result of projecting one contract.
type ContractCalculation struct {
	Input   ContractInput   `json:"input"`
	Totals  ContractTotals  `json:"totals"`
	Taxes   TaxBreakdown    `json:"taxes"`
	Metrics ContractMetrics `json:"metrics"`
}
