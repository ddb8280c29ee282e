package amortisation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCoveredDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []int
	}{
		{"single month", day(2026, time.March, 5), day(2026, time.March, 28), []int{24}},
		{"four months", day(2026, time.January, 9), day(2026, time.April, 8), []int{23, 28, 31, 8}},
		{"leap february", day(2028, time.February, 10), day(2028, time.March, 1), []int{20, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months := len(tt.want)
			assert.Equal(t, tt.want, CoveredDays(tt.start, tt.end, months))
		})
	}
}

func TestMonthWeights(t *testing.T) {
	half := decimal.RequireFromString("0.5")
	one := decimal.NewFromInt(1)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []decimal.Decimal
	}{
		{"both partial", day(2026, time.January, 9), day(2026, time.April, 8), []decimal.Decimal{half, one, one, half}},
		{"full months", day(2026, time.January, 1), day(2026, time.March, 31), []decimal.Decimal{one, one, one}},
		{"single partial month is never halved twice", day(2026, time.March, 5), day(2026, time.March, 28), []decimal.Decimal{half}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthWeights(tt.start, tt.end, len(tt.want))
			for i := range tt.want {
				assert.True(t, tt.want[i].Equal(got[i]), "weight %d: want %s got %s", i, tt.want[i], got[i])
			}
		})
	}
}

func TestEqualSpreader_RoundsHalfAwayFromZero(t *testing.T) {
	got := EqualSpreader{}.Allocate(time.Time{}, time.Time{}, decimal.RequireFromString("0.05"), 2)
	assert.Equal(t, "0.03", got[0].StringFixed(2))
}
