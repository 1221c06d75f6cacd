package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/insights"
	inmemdb "github.com/researchops/grantboard/storage/database/inmem"
)

var (
	ctx  = context.Background()
	from = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	db       *inmemdb.DB
	insights insights.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return &fixture{db: db, insights: inmemdb.NewInsightsRepository(db)}
}

// seedGrant resolves entities by natural key and stores one grant.
func (fx *fixture) seedGrant(t *testing.T, title, dept, piEmail string, sponsorType grant.SponsorType, amount float64, status grant.Status, submitted, awarded time.Time) {
	t.Helper()
	repo := inmemdb.NewIngestRepository(fx.db)

	d, err := repo.GetOrCreateDepartment(ctx, dept)
	require.NoError(t, err)
	pi, err := repo.UpsertFacultyByEmail(ctx, "PI "+piEmail, piEmail, d.ID)
	require.NoError(t, err)
	s, err := repo.GetOrCreateSponsor(ctx, "Sponsor "+string(sponsorType), sponsorType)
	require.NoError(t, err)

	g := grant.Grant{
		Title:        title,
		SponsorID:    s.ID,
		PIID:         pi.ID,
		DepartmentID: d.ID,
		Amount:       amount,
		Status:       status,
	}
	if !submitted.IsZero() {
		g.SubmittedAt = null.TimeFrom(submitted)
	}
	if !awarded.IsZero() {
		g.AwardedAt = null.TimeFrom(awarded)
	}
	_, err = repo.CreateGrant(ctx, g)
	require.NoError(t, err)
}

func Test_insightsRepository_windows(t *testing.T) {
	fx := newFixture(t)
	inWindow := from.AddDate(0, 1, 0)
	beforeWindow := from.AddDate(0, -1, 0)

	// in-window submission, awarded in window
	fx.seedGrant(t, "A", "CS", "a@x.edu", grant.SponsorFederal, 100, grant.StatusAwarded, inWindow, inWindow.AddDate(0, 0, 20))
	// submitted before the window: excluded from submissions, but its award date is in window
	fx.seedGrant(t, "B", "CS", "a@x.edu", grant.SponsorFederal, 200, grant.StatusAwarded, beforeWindow, inWindow)
	// never submitted: excluded from submissions
	fx.seedGrant(t, "C", "CS", "a@x.edu", grant.SponsorFederal, 300, grant.StatusDraft, time.Time{}, time.Time{})
	// submitted in window, not awarded
	fx.seedGrant(t, "D", "History", "b@x.edu", grant.SponsorFoundation, 400, grant.StatusDeclined, inWindow, time.Time{})

	f := insights.Filter{From: from}

	count, err := fx.insights.CountSubmissions(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 2, count) // A and D

	awardedSet, err := fx.insights.AwardedGrants(ctx, f)
	require.NoError(t, err)
	assert.Len(t, awardedSet, 2) // A and B, by awarded_at

	// the status filter narrows submissions only
	f.Statuses = []grant.Status{grant.StatusDeclined}
	count, err = fx.insights.CountSubmissions(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	awardedSet, err = fx.insights.AwardedGrants(ctx, f)
	require.NoError(t, err)
	assert.Len(t, awardedSet, 2) // unchanged

	// sponsor type narrows both
	f = insights.Filter{From: from, SponsorType: grant.SponsorFoundation}
	count, err = fx.insights.CountSubmissions(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	awardedSet, err = fx.insights.AwardedGrants(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, awardedSet)
}

func Test_insightsRepository_monthBuckets(t *testing.T) {
	fx := newFixture(t)
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	fx.seedGrant(t, "A", "CS", "a@x.edu", grant.SponsorFederal, 100, grant.StatusAwarded, jan, mar)
	fx.seedGrant(t, "B", "CS", "a@x.edu", grant.SponsorFederal, 250, grant.StatusAwarded, jan, mar)
	fx.seedGrant(t, "C", "CS", "a@x.edu", grant.SponsorFederal, 50, grant.StatusSubmitted, mar, time.Time{})

	f := insights.Filter{From: from}

	subs, err := fx.insights.SubmissionsByMonth(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []insights.MonthBucket{
		{Month: "2026-01", Count: 2},
		{Month: "2026-03", Count: 1},
	}, subs)

	awards, err := fx.insights.AwardsByMonth(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []insights.MonthBucket{
		{Month: "2026-03", Count: 2, Amount: 350},
	}, awards)

	statuses, err := fx.insights.StatusCountsByMonth(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []insights.MonthStatusBucket{
		{Month: "2026-01", Status: grant.StatusAwarded, Count: 2},
		{Month: "2026-03", Status: grant.StatusSubmitted, Count: 1},
	}, statuses)
}

func Test_insightsRepository_departmentAwardTotals(t *testing.T) {
	fx := newFixture(t)
	inWindow := from.AddDate(0, 1, 0)
	beforeWindow := from.AddDate(0, -1, 0)

	// awarded, submitted in window: counted
	fx.seedGrant(t, "A", "CS", "a@x.edu", grant.SponsorFederal, 100, grant.StatusAwarded, inWindow, inWindow)
	// awarded but submitted before window: not in the department award slice
	fx.seedGrant(t, "B", "CS", "a@x.edu", grant.SponsorFederal, 900, grant.StatusAwarded, beforeWindow, inWindow)
	// submitted in window, declined: submissions only
	fx.seedGrant(t, "C", "CS", "a@x.edu", grant.SponsorFederal, 50, grant.StatusDeclined, inWindow, time.Time{})

	f := insights.Filter{From: from, Statuses: []grant.Status{grant.StatusDeclined}}

	// the awarded slice ignores the status filter, replaces it with awarded
	awards, err := fx.insights.DepartmentAwardTotals(ctx, f)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, 1, awards[0].Count)
	assert.Equal(t, 100.0, awards[0].Amount)

	subs, err := fx.insights.DepartmentSubmissionTotals(ctx, f)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 1, subs[0].Count) // status filter applies here
}

func Test_insightsRepository_facultyAwardTotals(t *testing.T) {
	fx := newFixture(t)
	inWindow := from.AddDate(0, 2, 0)

	fx.seedGrant(t, "A", "CS", "a@x.edu", grant.SponsorFederal, 100, grant.StatusAwarded, inWindow, inWindow)
	fx.seedGrant(t, "B", "CS", "a@x.edu", grant.SponsorFederal, 150, grant.StatusAwarded, inWindow, inWindow)
	// declined grants never count toward totals
	fx.seedGrant(t, "C", "History", "b@x.edu", grant.SponsorFederal, 999, grant.StatusDeclined, inWindow, time.Time{})

	buckets, err := fx.insights.FacultyAwardTotals(ctx, from, 0)
	require.NoError(t, err)
	require.Len(t, buckets, 2) // zero-award faculty stay in

	totals := make(map[string]float64, len(buckets))
	for _, b := range buckets {
		totals[b.FacultyName] = b.TotalAwarded
	}
	assert.Equal(t, 250.0, totals["PI a@x.edu"])
	assert.Equal(t, 0.0, totals["PI b@x.edu"])

	// department filter drops other departments' faculty entirely
	filtered, err := fx.insights.FacultyAwardTotals(ctx, from, 1)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "PI a@x.edu", filtered[0].FacultyName)
}
