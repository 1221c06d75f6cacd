package insights

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/researchops/grantboard/core/grant"
)

const (
	// DefaultMonths is the lookback window applied when none is requested.
	DefaultMonths = 12

	// daily series cap
	maxDailyDays = 365

	// sponsor breakdown cap
	topSponsors = 20
)

type (
	// Repository returns partial aggregates over the grant store. Every
	// method applies the Filter's window and optional narrowing; bucket
	// keys with no matching rows are simply absent (the service zero-fills).
	Repository interface {
		// CountSubmissions counts grants with submitted_at inside the window.
		CountSubmissions(ctx context.Context, f Filter) (int, error)
		// AwardedGrants fetches awarded grants with awarded_at inside the window.
		AwardedGrants(ctx context.Context, f Filter) ([]AwardedGrant, error)
		SubmissionsByMonth(ctx context.Context, f Filter) ([]MonthBucket, error)
		AwardsByMonth(ctx context.Context, f Filter) ([]MonthBucket, error)
		StatusCountsByMonth(ctx context.Context, f Filter) ([]MonthStatusBucket, error)
		SubmissionsByDay(ctx context.Context, f Filter) ([]DayBucket, error)
		AwardsByDay(ctx context.Context, f Filter) ([]DayBucket, error)
		SponsorTotals(ctx context.Context, f Filter) ([]SponsorBucket, error)
		DepartmentSubmissionTotals(ctx context.Context, f Filter) ([]DepartmentBucket, error)
		DepartmentAwardTotals(ctx context.Context, f Filter) ([]DepartmentBucket, error)
		StatusCounts(ctx context.Context, f Filter) ([]StatusBucket, error)
		// FacultyAwardTotals returns one bucket per faculty member (all of
		// them, zero totals included), totalling awarded amounts since `from`.
		FacultyAwardTotals(ctx context.Context, from time.Time, departmentID int) ([]FacultyBucket, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Params narrows an insights request.
type Params struct {
	Months       int
	DepartmentID int
	SponsorType  grant.SponsorType
	Statuses     []grant.Status
}

func (svc *Service) filter(p Params) Filter {
	months := p.Months
	if months <= 0 {
		months = DefaultMonths
	}
	now := svc.now().UTC()
	return Filter{
		From:         now.AddDate(0, -months, 0),
		To:           now,
		DepartmentID: p.DepartmentID,
		SponsorType:  p.SponsorType,
		Statuses:     p.Statuses,
	}
}

// Insights runs the full aggregation set for the dashboard.
func (svc *Service) Insights(ctx context.Context, p Params) (Insights, error) {
	f := svc.filter(p)

	summary, err := svc.summary(ctx, f)
	if err != nil {
		return Insights{}, err
	}
	timeseries, err := svc.timeSeries(ctx, f)
	if err != nil {
		return Insights{}, err
	}
	daily, err := svc.dailyActivity(ctx, f, p.Months)
	if err != nil {
		return Insights{}, err
	}
	sponsors, err := svc.sponsorBreakdown(ctx, f)
	if err != nil {
		return Insights{}, err
	}
	departments, err := svc.departmentBreakdown(ctx, f)
	if err != nil {
		return Insights{}, err
	}
	funnel, err := svc.funnel(ctx, f)
	if err != nil {
		return Insights{}, err
	}

	return Insights{
		Summary:             summary,
		Timeseries:          timeseries,
		DailyActivity:       daily,
		SponsorBreakdown:    sponsors,
		DepartmentBreakdown: departments,
		Funnel:              funnel,
	}, nil
}

// Summary computes the KPI block alone.
func (svc *Service) Summary(ctx context.Context, p Params) (Summary, error) {
	return svc.summary(ctx, svc.filter(p))
}

func (svc *Service) summary(ctx context.Context, f Filter) (Summary, error) {
	submissions, err := svc.repo.CountSubmissions(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	awarded, err := svc.repo.AwardedGrants(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	var totalAwarded float64
	var daysToAward []float64
	for _, g := range awarded {
		totalAwarded += g.Amount
		// awarded rows missing either date are tolerated; they just do not
		// contribute to time-to-award
		if g.SubmittedAt.Valid && g.AwardedAt.Valid {
			daysToAward = append(daysToAward, g.AwardedAt.Time.Sub(g.SubmittedAt.Time).Hours()/24)
		}
	}

	awards := len(awarded)
	var avgAward float64
	if awards > 0 {
		avgAward = math.Round(totalAwarded / float64(awards))
	}

	var median *int
	if m, ok := interpolatedMedian(daysToAward); ok {
		days := int(math.Round(m))
		median = &days
	}

	return Summary{
		Submissions:        submissions,
		Awards:             awards,
		AwardRate:          percentRate(awards, submissions),
		TotalAwardedAmount: totalAwarded,
		MedianTimeToAward:  median,
		AvgAwardSize:       avgAward,
	}, nil
}

// TimeSeries produces the calendar-complete monthly series for the window.
func (svc *Service) TimeSeries(ctx context.Context, p Params) ([]TimeSeriesPoint, error) {
	return svc.timeSeries(ctx, svc.filter(p))
}

func (svc *Service) timeSeries(ctx context.Context, f Filter) ([]TimeSeriesPoint, error) {
	subs, err := svc.repo.SubmissionsByMonth(ctx, f)
	if err != nil {
		return nil, err
	}
	awards, err := svc.repo.AwardsByMonth(ctx, f)
	if err != nil {
		return nil, err
	}
	statuses, err := svc.repo.StatusCountsByMonth(ctx, f)
	if err != nil {
		return nil, err
	}

	subsByMonth := make(map[string]MonthBucket, len(subs))
	for _, b := range subs {
		subsByMonth[b.Month] = b
	}
	awardsByMonth := make(map[string]MonthBucket, len(awards))
	for _, b := range awards {
		awardsByMonth[b.Month] = b
	}
	statusByMonth := make(map[string]StatusCounts)
	for _, b := range statuses {
		counts := statusByMonth[b.Month]
		switch b.Status {
		case grant.StatusDraft:
			counts.Draft += b.Count
		case grant.StatusSubmitted:
			counts.Submitted += b.Count
		case grant.StatusUnderReview:
			counts.UnderReview += b.Count
		case grant.StatusAwarded:
			counts.Awarded += b.Count
		case grant.StatusDeclined:
			counts.Declined += b.Count
		}
		statusByMonth[b.Month] = counts
	}

	months := monthSequence(f.From, f.To)
	series := make([]TimeSeriesPoint, 0, len(months))
	for _, month := range months {
		series = append(series, TimeSeriesPoint{
			Month:         month,
			Submissions:   subsByMonth[month].Count,
			Awards:        awardsByMonth[month].Count,
			AwardedAmount: awardsByMonth[month].Amount,
			StatusCounts:  statusByMonth[month],
		})
	}
	return series, nil
}

func (svc *Service) dailyActivity(ctx context.Context, f Filter, months int) ([]DailyActivityPoint, error) {
	if months <= 0 {
		months = DefaultMonths
	}
	days := months * 30
	if days > maxDailyDays {
		days = maxDailyDays
	}

	daily := f
	daily.From = f.To.AddDate(0, 0, -days)

	subs, err := svc.repo.SubmissionsByDay(ctx, daily)
	if err != nil {
		return nil, err
	}
	awards, err := svc.repo.AwardsByDay(ctx, daily)
	if err != nil {
		return nil, err
	}

	subsByDay := make(map[string]DayBucket, len(subs))
	for _, b := range subs {
		subsByDay[b.Date] = b
	}
	awardsByDay := make(map[string]DayBucket, len(awards))
	for _, b := range awards {
		awardsByDay[b.Date] = b
	}

	dates := daySequence(daily.From, daily.To)
	activity := make([]DailyActivityPoint, 0, len(dates))
	for _, date := range dates {
		activity = append(activity, DailyActivityPoint{
			Date:          date,
			Submissions:   subsByDay[date].Count,
			Awards:        awardsByDay[date].Count,
			AwardedAmount: awardsByDay[date].Amount,
		})
	}
	return activity, nil
}

func (svc *Service) sponsorBreakdown(ctx context.Context, f Filter) ([]SponsorBreakdownPoint, error) {
	buckets, err := svc.repo.SponsorTotals(ctx, f)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Amount > buckets[j].Amount })
	if len(buckets) > topSponsors {
		buckets = buckets[:topSponsors]
	}

	breakdown := make([]SponsorBreakdownPoint, 0, len(buckets))
	for _, b := range buckets {
		breakdown = append(breakdown, SponsorBreakdownPoint{
			Name:          b.Name,
			SponsorType:   b.SponsorType,
			AwardedAmount: b.Amount,
			Count:         b.Count,
		})
	}
	return breakdown, nil
}

func (svc *Service) departmentBreakdown(ctx context.Context, f Filter) ([]DepartmentBreakdownPoint, error) {
	submissions, err := svc.repo.DepartmentSubmissionTotals(ctx, f)
	if err != nil {
		return nil, err
	}
	awards, err := svc.repo.DepartmentAwardTotals(ctx, f)
	if err != nil {
		return nil, err
	}

	awardsByDept := make(map[int]DepartmentBucket, len(awards))
	for _, b := range awards {
		awardsByDept[b.DepartmentID] = b
	}

	breakdown := make([]DepartmentBreakdownPoint, 0, len(submissions))
	for _, b := range submissions {
		// departments with submissions but no awards default to zero
		aw := awardsByDept[b.DepartmentID]
		breakdown = append(breakdown, DepartmentBreakdownPoint{
			DepartmentID:  b.DepartmentID,
			Name:          b.Name,
			AwardedAmount: aw.Amount,
			Awards:        aw.Count,
			Submissions:   b.Count,
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].AwardedAmount > breakdown[j].AwardedAmount })
	return breakdown, nil
}

func (svc *Service) funnel(ctx context.Context, f Filter) (Funnel, error) {
	buckets, err := svc.repo.StatusCounts(ctx, f)
	if err != nil {
		return Funnel{}, err
	}

	var funnel Funnel
	for _, b := range buckets {
		switch b.Status {
		case grant.StatusSubmitted:
			funnel.Submitted = b.Count
		case grant.StatusUnderReview:
			funnel.UnderReview = b.Count
		case grant.StatusAwarded:
			funnel.Awarded = b.Count
		case grant.StatusDeclined:
			funnel.Declined = b.Count
			// drafts never reach the funnel
		}
	}
	return funnel, nil
}

// StatusBreakdown counts in-window grants by every status value,
// zero-defaulting statuses with no grants.
func (svc *Service) StatusBreakdown(ctx context.Context, p Params) (StatusCounts, error) {
	buckets, err := svc.repo.StatusCounts(ctx, svc.filter(p))
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, b := range buckets {
		switch b.Status {
		case grant.StatusDraft:
			counts.Draft = b.Count
		case grant.StatusSubmitted:
			counts.Submitted = b.Count
		case grant.StatusUnderReview:
			counts.UnderReview = b.Count
		case grant.StatusAwarded:
			counts.Awarded = b.Count
		case grant.StatusDeclined:
			counts.Declined = b.Count
		}
	}
	return counts, nil
}

// MetricsSummary is the fixed 12-month KPI block of the landing dashboard.
func (svc *Service) MetricsSummary(ctx context.Context) (MetricsSummary, error) {
	s, err := svc.summary(ctx, svc.filter(Params{Months: DefaultMonths}))
	if err != nil {
		return MetricsSummary{}, err
	}
	return MetricsSummary{
		TotalSubmissions:   s.Submissions,
		TotalAwardedAmount: s.TotalAwardedAmount,
		AwardRate:          s.AwardRate,
		MedianTimeToAward:  s.MedianTimeToAward,
	}, nil
}

// Leaderboard ranks faculty by total awarded amount over the last 12 months.
// Ties share a rank (competition ranking); display order is total DESC then
// name ASC so tied entries stay deterministic.
func (svc *Service) Leaderboard(ctx context.Context, departmentID int) ([]LeaderboardEntry, error) {
	from := svc.now().UTC().AddDate(0, -DefaultMonths, 0)
	buckets, err := svc.repo.FacultyAwardTotals(ctx, from, departmentID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].TotalAwarded != buckets[j].TotalAwarded {
			return buckets[i].TotalAwarded > buckets[j].TotalAwarded
		}
		return buckets[i].FacultyName < buckets[j].FacultyName
	})

	totals := make([]float64, len(buckets))
	for i, b := range buckets {
		totals[i] = b.TotalAwarded
	}
	ranks := competitionRanks(totals)

	leaderboard := make([]LeaderboardEntry, 0, len(buckets))
	for i, b := range buckets {
		leaderboard = append(leaderboard, LeaderboardEntry{
			FacultyID:      b.FacultyID,
			FacultyName:    b.FacultyName,
			DepartmentName: b.DepartmentName,
			TotalAwarded:   b.TotalAwarded,
			Rank:           ranks[i],
		})
	}
	return leaderboard, nil
}
