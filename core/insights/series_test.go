package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_monthSequence(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want []string
	}{
		{
			name: "spans a year boundary",
			from: time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
			want: []string{"2025-11", "2025-12", "2026-01", "2026-02"},
		},
		{
			name: "single month",
			from: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC),
			want: []string{"2026-05"},
		},
		{
			name: "mid-month endpoints are truncated to their months",
			from: time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			want: []string{"2026-03", "2026-04"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monthSequence(tt.from, tt.to))
		})
	}
}

func Test_daySequence(t *testing.T) {
	got := daySequence(
		time.Date(2026, 2, 27, 18, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC),
	)
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	assert.Equal(t, want, got)
}

func Test_interpolatedMedian(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		want   float64
		wantOK bool
	}{
		{name: "empty", xs: nil, want: 0, wantOK: false},
		{name: "single", xs: []float64{7}, want: 7, wantOK: true},
		{name: "odd count", xs: []float64{30, 10, 20}, want: 20, wantOK: true},
		{name: "even count interpolates", xs: []float64{10, 20}, want: 15, wantOK: true},
		{name: "even count unsorted", xs: []float64{40, 10, 30, 20}, want: 25, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := interpolatedMedian(tt.xs)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func Test_competitionRanks(t *testing.T) {
	tests := []struct {
		name   string
		totals []float64
		want   []int
	}{
		{name: "empty", totals: nil, want: []int{}},
		{name: "distinct", totals: []float64{300, 200, 100}, want: []int{1, 2, 3}},
		{name: "leading tie skips next rank", totals: []float64{300, 300, 100}, want: []int{1, 1, 3}},
		{name: "trailing tie", totals: []float64{300, 100, 100}, want: []int{1, 2, 2}},
		{name: "all tied", totals: []float64{0, 0, 0}, want: []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := competitionRanks(tt.totals)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_percentRate(t *testing.T) {
	assert.Equal(t, 0.0, percentRate(5, 0))
	assert.Equal(t, 50.0, percentRate(1, 2))
	assert.Equal(t, 33.33, percentRate(1, 3))
	assert.Equal(t, 66.67, percentRate(2, 3))
	assert.Equal(t, 100.0, percentRate(3, 3))
}
