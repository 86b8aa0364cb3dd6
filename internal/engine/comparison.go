package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/location"
)

// Scoring weights. Compensation splits 60/40 between hourly rate and net pay.
var (
	weightCompensation  = decimal.NewFromFloat(0.40)
	weightBenefits      = decimal.NewFromFloat(0.25)
	weightLocation      = decimal.NewFromFloat(0.20)
	weightTaxEfficiency = decimal.NewFromFloat(0.15)
	compHourlyShare     = decimal.NewFromFloat(0.60)
	compNetShare        = decimal.NewFromFloat(0.40)

	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// significantPayDifference is the annual net delta above which a
	// two-way comparison emits a recommendation.
	significantPayDifference = decimal.NewFromInt(5000)

	payGapThreshold    = decimal.NewFromInt(20) // percent
	stipendHeavyRatio  = decimal.NewFromFloat(0.25)
	shortDurationWeeks = int32(8)
	longWeeklyHours    = decimal.NewFromInt(40)
)

// ComparisonEngine scores and ranks multiple contract offers.
type ComparisonEngine struct {
	contracts *ContractEngine
	locations location.Lookup
}

// NewComparisonEngine creates a new ComparisonEngine.
func NewComparisonEngine(contracts *ContractEngine, locations location.Lookup) *ComparisonEngine {
	return &ComparisonEngine{contracts: contracts, locations: locations}
}

// Compare calculates and scores two or more contracts. The individual
// calculations fan out concurrently; the first failing calculation aborts
// the whole comparison.
func (e *ComparisonEngine) Compare(ctx context.Context, inputs []domain.ContractInput) (*domain.ContractComparison, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: comparison requires at least 2 contracts, got %d", domain.ErrInsufficientData, len(inputs))
	}

	calcs := make([]*domain.ContractCalculation, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			calc, err := e.contracts.Calculate(in)
			if err != nil {
				return fmt.Errorf("contract %d: %w", i, err)
			}
			calcs[i] = calc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored, err := e.score(calcs)
	if err != nil {
		return nil, err
	}

	best := map[domain.ComparisonCriterion]int{
		domain.CriterionOverall:    bestIndex(scored, domain.CriterionOverall),
		domain.CriterionHourlyRate: bestIndex(scored, domain.CriterionHourlyRate),
		domain.CriterionNetPay:     bestIndex(scored, domain.CriterionNetPay),
		domain.CriterionBenefits:   bestIndex(scored, domain.CriterionBenefits),
	}

	deltas := domain.ComparisonDeltas{
		PayDifferencePct: pctSpread(collect(calcs, func(c *domain.ContractCalculation) decimal.Decimal {
			return c.Totals.AnnualizedNet
		})),
		BenefitsDifferencePct: pctSpread(collect(calcs, func(c *domain.ContractCalculation) decimal.Decimal {
			return c.Metrics.BenefitsValue
		})),
	}

	recs, err := e.recommendations(calcs, best, deltas)
	if err != nil {
		return nil, err
	}

	return &domain.ContractComparison{
		Contracts:       scored,
		Best:            best,
		Deltas:          deltas,
		Recommendations: recs,
	}, nil
}

// Rank orders scored contracts descending by the chosen criterion. The sort
// is stable: ties keep original input order.
func (e *ComparisonEngine) Rank(scored []domain.ScoredContract, criterion domain.ComparisonCriterion) []domain.ScoredContract {
	ranked := make([]domain.ScoredContract, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return criterionValue(ranked[i], criterion).GreaterThan(criterionValue(ranked[j], criterion))
	})
	return ranked
}

// CompareTwo reports pairwise deltas between two calculated contracts, with
// a recommendation when the annual net difference is significant.
func (e *ComparisonEngine) CompareTwo(a, b *domain.ContractCalculation) (*domain.PairwiseComparison, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: both contracts must be calculated", domain.ErrInsufficientData)
	}

	netDelta := a.Totals.AnnualizedNet.Sub(b.Totals.AnnualizedNet)
	result := &domain.PairwiseComparison{
		NetPayDelta:     netDelta,
		GrossPayDelta:   a.Totals.AnnualizedGross.Sub(b.Totals.AnnualizedGross),
		HourlyRateDelta: a.Totals.EffectiveHourlyRate.Sub(b.Totals.EffectiveHourlyRate),
		StipendDelta:    a.Totals.TotalStipends.Sub(b.Totals.TotalStipends),
		NetPayDeltaPct:  pctOf(netDelta, b.Totals.AnnualizedNet),
	}

	if netDelta.Abs().GreaterThan(significantPayDifference) {
		winner := a
		if netDelta.IsNegative() {
			winner = b
		}
		rec := fmt.Sprintf("The %s contract nets %s more per year after taxes",
			winner.Input.Location.State, netDelta.Abs().Round(0).StringFixed(0))
		if info, err := e.locations.Info(winner.Input.Location.State); err == nil && info.NoIncomeTax {
			rec += fmt.Sprintf("; %s levies no state income tax", winner.Input.Location.State)
		}
		result.Recommendation = rec
	}
	return result, nil
}

// BreakEven reports how many weeks of the higher contract's pay advantage it
// takes to recoup one-time switching costs, and whether that happens within
// the higher contract's term.
func (e *ComparisonEngine) BreakEven(higher, lower *domain.ContractCalculation, additionalCosts decimal.Decimal) (*domain.BreakEvenResult, error) {
	if higher == nil || lower == nil {
		return nil, fmt.Errorf("%w: both contracts must be calculated", domain.ErrInsufficientData)
	}

	weeklyDelta := higher.Totals.AnnualizedNet.Sub(lower.Totals.AnnualizedNet).Div(weeksPerYear)

	divisor := weeklyDelta
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
	}
	weeks := additionalCosts.Div(divisor)

	return &domain.BreakEvenResult{
		WeeklyPayDelta:     roundCents(weeklyDelta),
		AdditionalCosts:    roundCents(additionalCosts),
		BreakEvenWeeks:     weeks.Round(2),
		WithinContractTerm: weeklyDelta.IsPositive() && weeks.LessThanOrEqual(decimal.NewFromInt32(higher.Input.DurationWeeks)),
	}, nil
}

func (e *ComparisonEngine) score(calcs []*domain.ContractCalculation) ([]domain.ScoredContract, error) {
	maxHourly := maxOf(calcs, func(c *domain.ContractCalculation) decimal.Decimal { return c.Totals.EffectiveHourlyRate })
	maxNet := maxOf(calcs, func(c *domain.ContractCalculation) decimal.Decimal { return c.Totals.AnnualizedNet })
	maxStipends := maxOf(calcs, func(c *domain.ContractCalculation) decimal.Decimal { return c.Totals.TotalStipends })

	scored := make([]domain.ScoredContract, len(calcs))
	for i, calc := range calcs {
		info, err := e.locations.Info(calc.Input.Location.State)
		if err != nil {
			return nil, err
		}

		comp := compHourlyShare.Mul(normalize(calc.Totals.EffectiveHourlyRate, maxHourly)).
			Add(compNetShare.Mul(normalize(calc.Totals.AnnualizedNet, maxNet)))
		benefits := normalize(calc.Totals.TotalStipends, maxStipends)
		loc := info.DesirabilityScore
		taxEff := hundred.Sub(two.Mul(calc.Metrics.EffectiveTaxRate))
		if taxEff.IsNegative() {
			taxEff = decimal.Zero
		}

		overall := weightCompensation.Mul(comp).
			Add(weightBenefits.Mul(benefits)).
			Add(weightLocation.Mul(loc)).
			Add(weightTaxEfficiency.Mul(taxEff))

		scored[i] = domain.ScoredContract{
			Index:       i,
			Calculation: calc,
			Score: domain.ContractScore{
				Overall:       overall.Round(2),
				Compensation:  comp.Round(2),
				Benefits:      benefits.Round(2),
				Location:      loc.Round(2),
				TaxEfficiency: taxEff.Round(2),
			},
		}
	}
	return scored, nil
}

func (e *ComparisonEngine) recommendations(calcs []*domain.ContractCalculation, best map[domain.ComparisonCriterion]int, deltas domain.ComparisonDeltas) ([]string, error) {
	var recs []string

	if deltas.PayDifferencePct.GreaterThan(payGapThreshold) {
		top := calcs[best[domain.CriterionNetPay]]
		recs = append(recs, fmt.Sprintf("The %s contract nets %s%% more than the lowest offer; weigh the pay gap against other factors",
			top.Input.Location.State, deltas.PayDifferencePct.StringFixed(1)))
	}

	for _, calc := range calcs {
		info, err := e.locations.Info(calc.Input.Location.State)
		if err != nil {
			return nil, err
		}
		if info.NoIncomeTax {
			recs = append(recs, fmt.Sprintf("%s has no state income tax, which boosts take-home pay for the %s contract",
				info.State, info.State))
		}
		if info.HighDemand {
			recs = append(recs, fmt.Sprintf("%s is a high-demand market; extension or renewal is more likely", info.State))
		}
		if !calc.Totals.GrossPay.IsZero() {
			ratio := calc.Totals.TotalStipends.Div(calc.Totals.GrossPay)
			if ratio.GreaterThan(stipendHeavyRatio) {
				recs = append(recs, fmt.Sprintf("A large share of the %s contract's compensation is tax-advantaged stipends", calc.Input.Location.State))
			}
		}
		if calc.Input.DurationWeeks < shortDurationWeeks {
			recs = append(recs, fmt.Sprintf("The %s contract runs only %d weeks; factor in time between assignments",
				calc.Input.Location.State, calc.Input.DurationWeeks))
		}
		if calc.Input.HoursPerWeek.GreaterThan(longWeeklyHours) {
			recs = append(recs, fmt.Sprintf("The %s contract schedules %s hours per week; confirm overtime terms",
				calc.Input.Location.State, calc.Input.HoursPerWeek.String()))
		}
	}
	return recs, nil
}

func criterionValue(sc domain.ScoredContract, criterion domain.ComparisonCriterion) decimal.Decimal {
	switch criterion {
	case domain.CriterionHourlyRate:
		return sc.Calculation.Totals.EffectiveHourlyRate
	case domain.CriterionNetPay:
		return sc.Calculation.Totals.AnnualizedNet
	case domain.CriterionBenefits:
		return sc.Calculation.Metrics.BenefitsValue
	default:
		return sc.Score.Overall
	}
}

// bestIndex is a first-seen-wins max scan.
func bestIndex(scored []domain.ScoredContract, criterion domain.ComparisonCriterion) int {
	best := 0
	for i := 1; i < len(scored); i++ {
		if criterionValue(scored[i], criterion).GreaterThan(criterionValue(scored[best], criterion)) {
			best = i
		}
	}
	return best
}

// normalize maps value onto a 0-100 scale against the set maximum, capped at
// 100. A zero maximum falls back to a divisor of 1.
func normalize(value, max decimal.Decimal) decimal.Decimal {
	divisor := max
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
	}
	n := value.Div(divisor).Mul(hundred)
	if n.GreaterThan(hundred) {
		return hundred
	}
	if n.IsNegative() {
		return decimal.Zero
	}
	return n
}

// pctSpread returns (max-min)/min as a percentage, using 1 as the divisor
// when the minimum is zero.
func pctSpread(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}
	return pctOf(max.Sub(min), min)
}

func pctOf(delta, base decimal.Decimal) decimal.Decimal {
	divisor := base
	if divisor.IsZero() {
		divisor = decimal.NewFromInt(1)
	}
	return delta.Div(divisor).Mul(hundred).Round(2)
}

func maxOf(calcs []*domain.ContractCalculation, get func(*domain.ContractCalculation) decimal.Decimal) decimal.Decimal {
	max := decimal.Zero
	for _, c := range calcs {
		if v := get(c); v.GreaterThan(max) {
			max = v
		}
	}
	return max
}

func collect(calcs []*domain.ContractCalculation, get func(*domain.ContractCalculation) decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(calcs))
	for i, c := range calcs {
		out[i] = get(c)
	}
	return out
}
