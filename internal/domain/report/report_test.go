package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		// 2024-01-01是周一
		{date(2024, 1, 1), 1},
		{date(2024, 1, 7), 1},
		{date(2024, 1, 8), 2},
		{date(2024, 2, 1), 5},
		// 2023-01-01是周日,单独构成第1周
		{date(2023, 1, 1), 1},
		{date(2023, 1, 2), 2},
		// 2022-01-01是周六
		{date(2022, 1, 2), 1},
		{date(2022, 1, 3), 2},
		{date(2022, 12, 31), 53},
	}
	for _, tt := range tests {
		if got := WeekOfYear(tt.day); got != tt.want {
			t.Errorf("%s: 期望第%d周，实际第%d周", tt.day.Format("2006-01-02"), tt.want, got)
		}
	}
}

func TestLabel(t *testing.T) {
	day := date(2024, 2, 1)
	assert.Equal(t, "2024-W05", Label(day, PeriodWeekly))
	assert.Equal(t, "2024-02", Label(day, PeriodMonthly))
	assert.Equal(t, "2024", Label(day, PeriodYearly))
}

func TestRollupMonthly(t *testing.T) {
	sales := []Sale{
		{Date: date(2024, 3, 2), Amount: decimal.RequireFromString("28.00")},
		{Date: date(2024, 3, 15), Amount: decimal.RequireFromString("100.50")},
		{Date: date(2024, 3, 31), Amount: decimal.RequireFromString("1.50")},
	}

	points := Rollup(sales, PeriodMonthly)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-03", points[0].Label)
	assert.True(t, points[0].Total.Equal(decimal.RequireFromString("130.00")), "实际%s", points[0].Total)
}

func TestRollupSortedChronologically(t *testing.T) {
	one := decimal.NewFromInt(1)
	sales := []Sale{
		{Date: date(2024, 11, 1), Amount: one},
		{Date: date(2023, 12, 30), Amount: one},
		{Date: date(2024, 2, 1), Amount: one},
		{Date: date(2024, 2, 20), Amount: one},
	}

	weekly := Rollup(sales, PeriodWeekly)
	labels := make([]string, len(weekly))
	for i, p := range weekly {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"2023-W53", "2024-W05", "2024-W08", "2024-W44"}, labels)

	yearly := Rollup(sales, PeriodYearly)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2023", yearly[0].Label)
	assert.True(t, yearly[1].Total.Equal(decimal.NewFromInt(3)))

	assert.Empty(t, Rollup(nil, PeriodMonthly))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Monthly")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)

	_, err = ParsePeriod("daily")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, RoundRating(4.333))
	assert.Equal(t, 4.3, RoundRating(4.25))
	assert.Equal(t, 5.0, RoundRating(5))
}
