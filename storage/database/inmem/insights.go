package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/insights"
)

type insightsRepository struct {
	db *DB
}

var _ insights.Repository = (*insightsRepository)(nil) // interface compliance check

func NewInsightsRepository(db *DB) *insightsRepository {
	return &insightsRepository{db: db}
}

// submissionMatch mirrors the SQL submission-population predicate:
// submitted_at inside the window plus the optional narrowing filters.
func (repo insightsRepository) submissionMatch(g grant.Grant, f insights.Filter, withStatuses bool) bool {
	if !g.SubmittedAt.Valid || g.SubmittedAt.Time.Before(f.From) {
		return false
	}
	if f.DepartmentID > 0 && g.DepartmentID != f.DepartmentID {
		return false
	}
	if f.SponsorType != "" {
		s, ok := repo.db.sponsors[g.SponsorID]
		if !ok || s.SponsorType != f.SponsorType {
			return false
		}
	}
	if withStatuses && len(f.Statuses) > 0 {
		found := false
		for _, status := range f.Statuses {
			if g.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// awardMatch mirrors the SQL awarded-set predicate; the status filter never
// applies here.
func (repo insightsRepository) awardMatch(g grant.Grant, f insights.Filter) bool {
	if g.Status != grant.StatusAwarded {
		return false
	}
	if !g.AwardedAt.Valid || g.AwardedAt.Time.Before(f.From) {
		return false
	}
	if f.DepartmentID > 0 && g.DepartmentID != f.DepartmentID {
		return false
	}
	if f.SponsorType != "" {
		s, ok := repo.db.sponsors[g.SponsorID]
		if !ok || s.SponsorType != f.SponsorType {
			return false
		}
	}
	return true
}

func (repo insightsRepository) CountSubmissions(ctx context.Context, f insights.Filter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	count := 0
	for _, g := range repo.db.grants {
		if repo.submissionMatch(*g, f, true) {
			count++
		}
	}
	return count, nil
}

func (repo insightsRepository) AwardedGrants(ctx context.Context, f insights.Filter) ([]insights.AwardedGrant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var grants []insights.AwardedGrant
	for _, g := range repo.db.grants {
		if repo.awardMatch(*g, f) {
			grants = append(grants, insights.AwardedGrant{
				Amount:      g.Amount,
				SubmittedAt: g.SubmittedAt,
				AwardedAt:   g.AwardedAt,
			})
		}
	}
	return grants, nil
}

func monthOf(t time.Time) string { return t.UTC().Format("2006-01") }
func dayOf(t time.Time) string   { return t.UTC().Format("2006-01-02") }

func (repo insightsRepository) SubmissionsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, g := range repo.db.grants {
		if repo.submissionMatch(*g, f, true) {
			counts[monthOf(g.SubmittedAt.Time)]++
		}
	}
	buckets := make([]insights.MonthBucket, 0, len(counts))
	for month, count := range counts {
		buckets = append(buckets, insights.MonthBucket{Month: month, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets, nil
}

func (repo insightsRepository) AwardsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byMonth := make(map[string]*insights.MonthBucket)
	for _, g := range repo.db.grants {
		if !repo.awardMatch(*g, f) {
			continue
		}
		month := monthOf(g.AwardedAt.Time)
		b, ok := byMonth[month]
		if !ok {
			b = &insights.MonthBucket{Month: month}
			byMonth[month] = b
		}
		b.Count++
		b.Amount += g.Amount
	}
	buckets := make([]insights.MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets, nil
}

func (repo insightsRepository) StatusCountsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthStatusBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	type key struct {
		month  string
		status grant.Status
	}
	counts := make(map[key]int)
	for _, g := range repo.db.grants {
		if repo.submissionMatch(*g, f, true) {
			counts[key{monthOf(g.SubmittedAt.Time), g.Status}]++
		}
	}
	buckets := make([]insights.MonthStatusBucket, 0, len(counts))
	for k, count := range counts {
		buckets = append(buckets, insights.MonthStatusBucket{Month: k.month, Status: k.status, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Month != buckets[j].Month {
			return buckets[i].Month < buckets[j].Month
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets, nil
}

func (repo insightsRepository) SubmissionsByDay(ctx context.Context, f insights.Filter) ([]insights.DayBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, g := range repo.db.grants {
		if repo.submissionMatch(*g, f, true) {
			counts[dayOf(g.SubmittedAt.Time)]++
		}
	}
	buckets := make([]insights.DayBucket, 0, len(counts))
	for date, count := range counts {
		buckets = append(buckets, insights.DayBucket{Date: date, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets, nil
}

func (repo insightsRepository) AwardsByDay(ctx context.Context, f insights.Filter) ([]insights.DayBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byDay := make(map[string]*insights.DayBucket)
	for _, g := range repo.db.grants {
		if !repo.awardMatch(*g, f) {
			continue
		}
		date := dayOf(g.AwardedAt.Time)
		b, ok := byDay[date]
		if !ok {
			b = &insights.DayBucket{Date: date}
			byDay[date] = b
		}
		b.Count++
		b.Amount += g.Amount
	}
	buckets := make([]insights.DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets, nil
}

func (repo insightsRepository) SponsorTotals(ctx context.Context, f insights.Filter) ([]insights.SponsorBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byName := make(map[string]*insights.SponsorBucket)
	for _, g := range repo.db.grants {
		if !repo.awardMatch(*g, f) {
			continue
		}
		s, ok := repo.db.sponsors[g.SponsorID]
		if !ok {
			continue
		}
		b, ok := byName[s.Name]
		if !ok {
			b = &insights.SponsorBucket{Name: s.Name, SponsorType: s.SponsorType}
			byName[s.Name] = b
		}
		b.Count++
		b.Amount += g.Amount
	}
	buckets := make([]insights.SponsorBucket, 0, len(byName))
	for _, b := range byName {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

func (repo insightsRepository) departmentTotals(match func(grant.Grant) bool) []insights.DepartmentBucket {
	byID := make(map[int]*insights.DepartmentBucket)
	for _, g := range repo.db.grants {
		if !match(*g) {
			continue
		}
		b, ok := byID[g.DepartmentID]
		if !ok {
			name := ""
			if d, found := repo.db.departments[g.DepartmentID]; found {
				name = d.Name
			}
			b = &insights.DepartmentBucket{DepartmentID: g.DepartmentID, Name: name}
			byID[g.DepartmentID] = b
		}
		b.Count++
		b.Amount += g.Amount
	}
	buckets := make([]insights.DepartmentBucket, 0, len(byID))
	for _, b := range byID {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].DepartmentID < buckets[j].DepartmentID })
	return buckets
}

func (repo insightsRepository) DepartmentSubmissionTotals(ctx context.Context, f insights.Filter) ([]insights.DepartmentBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return repo.departmentTotals(func(g grant.Grant) bool {
		return repo.submissionMatch(g, f, true)
	}), nil
}

func (repo insightsRepository) DepartmentAwardTotals(ctx context.Context, f insights.Filter) ([]insights.DepartmentBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// awarded slice of the same submission window; the status filter is
	// replaced by the awarded predicate
	return repo.departmentTotals(func(g grant.Grant) bool {
		return g.Status == grant.StatusAwarded && repo.submissionMatch(g, f, false)
	}), nil
}

func (repo insightsRepository) StatusCounts(ctx context.Context, f insights.Filter) ([]insights.StatusBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[grant.Status]int)
	for _, g := range repo.db.grants {
		if repo.submissionMatch(*g, f, true) {
			counts[g.Status]++
		}
	}
	buckets := make([]insights.StatusBucket, 0, len(counts))
	for status, count := range counts {
		buckets = append(buckets, insights.StatusBucket{Status: status, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Status < buckets[j].Status })
	return buckets, nil
}

func (repo insightsRepository) FacultyAwardTotals(ctx context.Context, from time.Time, departmentID int) ([]insights.FacultyBucket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	buckets := make([]insights.FacultyBucket, 0, len(repo.db.faculty))
	for _, fac := range repo.db.faculty {
		if departmentID > 0 && fac.DepartmentID != departmentID {
			continue
		}
		deptName := ""
		if d, ok := repo.db.departments[fac.DepartmentID]; ok {
			deptName = d.Name
		}
		bucket := insights.FacultyBucket{
			FacultyID:      fac.ID,
			FacultyName:    fac.Name,
			DepartmentName: deptName,
		}
		for _, g := range repo.db.grants {
			if g.PIID != fac.ID || g.Status != grant.StatusAwarded {
				continue
			}
			if !g.AwardedAt.Valid || g.AwardedAt.Time.Before(from) {
				continue
			}
			if departmentID > 0 && g.DepartmentID != departmentID {
				continue
			}
			bucket.TotalAwarded += g.Amount
		}
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].FacultyID < buckets[j].FacultyID })
	return buckets, nil
}
