package engine

import (
	"time"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// PeriodsElapsed returns how many pay periods of asOf's year have completed
// through asOf, counting the period paid on asOf itself. Bi-weekly and
// semi-monthly counts are calendar approximations (week count halved, month
// split at the 15th) rather than anchored pay-date schedules; any misalignment
// near year boundaries washes out through the YTD drift correction in later
// periods.
func PeriodsElapsed(freq domain.PayFrequency, asOf time.Time) int32 {
	switch freq {
	case domain.FrequencyWeekly:
		return clampPeriods(weeksElapsed(asOf), 52)
	case domain.FrequencyBiWeekly:
		return clampPeriods((weeksElapsed(asOf)+1)/2, 26)
	case domain.FrequencySemiMonthly:
		n := (int32(asOf.Month())-1)*2 + 1
		if asOf.Day() > 15 {
			n++
		}
		return n
	case domain.FrequencyMonthly:
		return int32(asOf.Month())
	case domain.FrequencyQuarterly:
		return (int32(asOf.Month())-1)/3 + 1
	case domain.FrequencyAnnual:
		return 1
	}
	return 0
}

func weeksElapsed(asOf time.Time) int32 {
	return int32((asOf.YearDay() + 6) / 7)
}

func clampPeriods(n, max int32) int32 {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
