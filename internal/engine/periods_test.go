package engine

import (
	"testing"
	"time"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

func TestPeriodsElapsed(t *testing.T) {
	tests := []struct {
		name string
		freq domain.PayFrequency
		date time.Time
		want int32
	}{
		{"weekly first week", domain.FrequencyWeekly, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 1},
		{"weekly mid year", domain.FrequencyWeekly, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 27},
		{"weekly year end capped", domain.FrequencyWeekly, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 52},
		{"bi-weekly second week", domain.FrequencyBiWeekly, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 1},
		{"bi-weekly year end capped", domain.FrequencyBiWeekly, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 26},
		{"semi-monthly first half", domain.FrequencySemiMonthly, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 5},
		{"semi-monthly second half", domain.FrequencySemiMonthly, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 6},
		{"monthly", domain.FrequencyMonthly, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), 9},
		{"quarterly", domain.FrequencyQuarterly, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), 3},
		{"annual", domain.FrequencyAnnual, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodsElapsed(tt.freq, tt.date); got != tt.want {
				t.Errorf("PeriodsElapsed(%s, %s) = %d, want %d", tt.freq, tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestPeriodsElapsed_UnknownFrequency(t *testing.T) {
	if got := PeriodsElapsed("fortnightly", time.Now()); got != 0 {
		t.Errorf("Expected 0 for unknown frequency, got %d", got)
	}
}
