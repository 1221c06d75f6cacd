package insights

import (
	"math"
	"sort"
	"time"
)

const (
	monthKey = "2006-01"
	dayKey   = "2006-01-02"
)

// monthSequence generates one "YYYY-MM" key per calendar month from the
// month containing `from` through the month containing `to`, inclusive.
func monthSequence(from, to time.Time) []string {
	from, to = from.UTC(), to.UTC()
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []string
	for !cur.After(end) {
		months = append(months, cur.Format(monthKey))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// daySequence generates one "YYYY-MM-DD" key per calendar day from the day
// containing `from` through the day containing `to`, inclusive.
func daySequence(from, to time.Time) []string {
	from, to = from.UTC(), to.UTC()
	cur := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var days []string
	for !cur.After(end) {
		days = append(days, cur.Format(dayKey))
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// interpolatedMedian computes the continuous-percentile median: linear
// interpolation between order statistics, matching PERCENTILE_CONT(0.5).
// ok is false for an empty sample.
func interpolatedMedian(xs []float64) (median float64, ok bool) {
	n := len(xs)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := 0.5 * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo)), true
}

// competitionRanks assigns standard competition ranking over totals sorted
// descending: ties share a rank, and the next distinct total's rank skips
// by the tie-group size. The input MUST already be sorted descending.
func competitionRanks(totals []float64) []int {
	ranks := make([]int, len(totals))
	for i := range totals {
		if i > 0 && totals[i] == totals[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// percentRate returns part/whole as a percentage rounded to 2 decimals,
// defined as 0 for an empty denominator.
func percentRate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
