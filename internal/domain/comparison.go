package domain

import "github.com/shopspring/decimal"

type ComparisonCriterion string

const (
	CriterionOverall    ComparisonCriterion = "overall"
	CriterionHourlyRate ComparisonCriterion = "hourly_rate"
	CriterionNetPay     ComparisonCriterion = "net_pay"
	CriterionBenefits   ComparisonCriterion = "benefits"
)

// LocationInfo is the desirability profile of a state, supplied by an
// external lookup.
type LocationInfo struct {
	State             string          `json:"state"`
	DesirabilityScore decimal.Decimal `json:"desirabilityScore"` // 0-100
	CostOfLivingIndex decimal.Decimal `json:"costOfLivingIndex"` // 100 = national average
	NoIncomeTax       bool            `json:"noIncomeTax"`
	HighDemand        bool            `json:"highDemand"`
}

// ContractScore is the weighted 0-100 scoring of one contract within a
// comparison set.
type ContractScore struct {
	Overall       decimal.Decimal `json:"overall"`
	Compensation  decimal.Decimal `json:"compensation"`
	Benefits      decimal.Decimal `json:"benefits"`
	Location      decimal.Decimal `json:"location"`
	TaxEfficiency decimal.Decimal `json:"taxEfficiency"`
}

// ScoredContract pairs a calculated contract with its score and its position
// in the original comparison input.
type ScoredContract struct {
	Index       int                  `json:"index"`
	Calculation *ContractCalculation `json:"calculation"`
	Score       ContractScore        `json:"score"`
}

// ComparisonDeltas holds max-to-min percentage spreads across the set.
type ComparisonDeltas struct {
	PayDifferencePct      decimal.Decimal `json:"payDifferencePct"`
	BenefitsDifferencePct decimal.Decimal `json:"benefitsDifferencePct"`
}

// ContractComparison is the full result of comparing 2+ contracts.
type ContractComparison struct {
	Contracts       []ScoredContract            `json:"contracts"`
	Best            map[ComparisonCriterion]int `json:"best"` // index into Contracts
	Deltas          ComparisonDeltas            `json:"deltas"`
	Recommendations []string                    `json:"recommendations"`
}

// PairwiseComparison is the result of comparing exactly two contracts.
type PairwiseComparison struct {
	NetPayDelta     decimal.Decimal `json:"netPayDelta"`     // a minus b, annualized
	GrossPayDelta   decimal.Decimal `json:"grossPayDelta"`   // a minus b, annualized
	HourlyRateDelta decimal.Decimal `json:"hourlyRateDelta"` // effective rates
	StipendDelta    decimal.Decimal `json:"stipendDelta"`
	NetPayDeltaPct  decimal.Decimal `json:"netPayDeltaPct"`
	Recommendation  string          `json:"recommendation,omitempty"`
}

// BreakEvenResult reports how long a higher-paying contract takes to recoup
// one-time switching costs against a lower-paying one.
type BreakEvenResult struct {
	WeeklyPayDelta     decimal.Decimal `json:"weeklyPayDelta"`
	AdditionalCosts    decimal.Decimal `json:"additionalCosts"`
	BreakEvenWeeks     decimal.Decimal `json:"breakEvenWeeks"`
	WithinContractTerm bool            `json:"withinContractTerm"`
}
