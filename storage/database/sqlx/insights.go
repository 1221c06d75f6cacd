package sqlxrepos

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/insights"
)

type insightsRepository struct {
	db *sqlx.DB
}

var _ insights.Repository = (*insightsRepository)(nil) // interface compliance check

func NewInsightsRepository(db *sqlx.DB) *insightsRepository {
	return &insightsRepository{db: db}
}

// submissionWhere renders the submission-population conditions: submitted_at
// inside the window plus the optional narrowing filters.
func submissionWhere(f insights.Filter, withStatuses bool) (string, []interface{}) {
	args := []interface{}{f.From.UTC()}
	conds := []string{"g.submitted_at IS NOT NULL", "g.submitted_at >= $1"}

	if f.DepartmentID > 0 {
		args = append(args, f.DepartmentID)
		conds = append(conds, "g.department_id = $"+strconv.Itoa(len(args)))
	}
	if f.SponsorType != "" {
		args = append(args, f.SponsorType)
		conds = append(conds, "s.sponsor_type = $"+strconv.Itoa(len(args)))
	}
	if withStatuses && len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, "g.status = ANY($"+strconv.Itoa(len(args))+")")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// awardWhere renders the awarded-set conditions: status awarded with
// awarded_at inside the window. The status filter never applies here.
func awardWhere(f insights.Filter) (string, []interface{}) {
	args := []interface{}{f.From.UTC()}
	conds := []string{"g.status = 'awarded'", "g.awarded_at IS NOT NULL", "g.awarded_at >= $1"}

	if f.DepartmentID > 0 {
		args = append(args, f.DepartmentID)
		conds = append(conds, "g.department_id = $"+strconv.Itoa(len(args)))
	}
	if f.SponsorType != "" {
		args = append(args, f.SponsorType)
		conds = append(conds, "s.sponsor_type = $"+strconv.Itoa(len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const fromGrants = " FROM grants g JOIN sponsors s ON g.sponsor_id = s.id"

func (repo insightsRepository) CountSubmissions(ctx context.Context, f insights.Filter) (int, error) {
	where, args := submissionWhere(f, true)
	var count int
	if err := repo.db.GetContext(ctx, &count, "SELECT COUNT(*)"+fromGrants+where, args...); err != nil {
		return 0, core.NewDatabaseError("failed to count submissions", err)
	}
	return count, nil
}

func (repo insightsRepository) AwardedGrants(ctx context.Context, f insights.Filter) ([]insights.AwardedGrant, error) {
	where, args := awardWhere(f)
	var grants []insights.AwardedGrant
	query := "SELECT g.amount, g.submitted_at, g.awarded_at" + fromGrants + where
	if err := repo.db.SelectContext(ctx, &grants, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to fetch awarded grants", err)
	}
	return grants, nil
}

func (repo insightsRepository) SubmissionsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthBucket, error) {
	where, args := submissionWhere(f, true)
	query := `SELECT to_char(date_trunc('month', g.submitted_at), 'YYYY-MM') AS month, COUNT(*) AS count` +
		fromGrants + where + " GROUP BY 1 ORDER BY 1"
	var buckets []insights.MonthBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket submissions by month", err)
	}
	return buckets, nil
}

func (repo insightsRepository) AwardsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthBucket, error) {
	where, args := awardWhere(f)
	query := `SELECT to_char(date_trunc('month', g.awarded_at), 'YYYY-MM') AS month,
       COUNT(*) AS count, COALESCE(SUM(g.amount), 0) AS amount` +
		fromGrants + where + " GROUP BY 1 ORDER BY 1"
	var buckets []insights.MonthBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket awards by month", err)
	}
	return buckets, nil
}

func (repo insightsRepository) StatusCountsByMonth(ctx context.Context, f insights.Filter) ([]insights.MonthStatusBucket, error) {
	where, args := submissionWhere(f, true)
	query := `SELECT to_char(date_trunc('month', g.submitted_at), 'YYYY-MM') AS month,
       g.status AS status, COUNT(*) AS count` +
		fromGrants + where + " GROUP BY 1, 2 ORDER BY 1, 2"
	var buckets []insights.MonthStatusBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket statuses by month", err)
	}
	return buckets, nil
}

func (repo insightsRepository) SubmissionsByDay(ctx context.Context, f insights.Filter) ([]insights.DayBucket, error) {
	where, args := submissionWhere(f, true)
	query := `SELECT to_char(date_trunc('day', g.submitted_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count` +
		fromGrants + where + " GROUP BY 1 ORDER BY 1"
	var buckets []insights.DayBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket submissions by day", err)
	}
	return buckets, nil
}

func (repo insightsRepository) AwardsByDay(ctx context.Context, f insights.Filter) ([]insights.DayBucket, error) {
	where, args := awardWhere(f)
	query := `SELECT to_char(date_trunc('day', g.awarded_at), 'YYYY-MM-DD') AS date,
       COUNT(*) AS count, COALESCE(SUM(g.amount), 0) AS amount` +
		fromGrants + where + " GROUP BY 1 ORDER BY 1"
	var buckets []insights.DayBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket awards by day", err)
	}
	return buckets, nil
}

func (repo insightsRepository) SponsorTotals(ctx context.Context, f insights.Filter) ([]insights.SponsorBucket, error) {
	where, args := awardWhere(f)
	query := `SELECT s.name AS name, MIN(s.sponsor_type) AS sponsor_type,
       COUNT(*) AS count, COALESCE(SUM(g.amount), 0) AS amount` +
		fromGrants + where + " GROUP BY s.name"
	var buckets []insights.SponsorBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket awards by sponsor", err)
	}
	return buckets, nil
}

const fromGrantsWithDept = fromGrants + " JOIN departments d ON g.department_id = d.id"

func (repo insightsRepository) DepartmentSubmissionTotals(ctx context.Context, f insights.Filter) ([]insights.DepartmentBucket, error) {
	where, args := submissionWhere(f, true)
	query := `SELECT d.id AS department_id, d.name AS name, COUNT(*) AS count, COALESCE(SUM(g.amount), 0) AS amount` +
		fromGrantsWithDept + where + " GROUP BY d.id, d.name"
	var buckets []insights.DepartmentBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket submissions by department", err)
	}
	return buckets, nil
}

func (repo insightsRepository) DepartmentAwardTotals(ctx context.Context, f insights.Filter) ([]insights.DepartmentBucket, error) {
	// awarded slice of the same submission window; the status filter is
	// replaced by the awarded predicate
	where, args := submissionWhere(f, false)
	query := `SELECT d.id AS department_id, d.name AS name, COUNT(*) AS count, COALESCE(SUM(g.amount), 0) AS amount` +
		fromGrantsWithDept + where + " AND g.status = 'awarded' GROUP BY d.id, d.name"
	var buckets []insights.DepartmentBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to bucket awards by department", err)
	}
	return buckets, nil
}

func (repo insightsRepository) StatusCounts(ctx context.Context, f insights.Filter) ([]insights.StatusBucket, error) {
	where, args := submissionWhere(f, true)
	query := "SELECT g.status AS status, COUNT(*) AS count" + fromGrants + where + " GROUP BY g.status"
	var buckets []insights.StatusBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to count grants by status", err)
	}
	return buckets, nil
}

func (repo insightsRepository) FacultyAwardTotals(ctx context.Context, from time.Time, departmentID int) ([]insights.FacultyBucket, error) {
	// LEFT JOIN keeps zero-award faculty in the result
	query := `
SELECT f.id AS faculty_id, f.name AS faculty_name, d.name AS department_name,
       COALESCE(SUM(g.amount), 0) AS total_awarded
FROM faculty f
JOIN departments d ON f.department_id = d.id
LEFT JOIN grants g ON g.pi_id = f.id
    AND g.status = $2
    AND g.awarded_at IS NOT NULL
    AND g.awarded_at >= $1`
	args := []interface{}{from.UTC(), grant.StatusAwarded}
	if departmentID > 0 {
		query += `
    AND g.department_id = $3
WHERE f.department_id = $3`
		args = append(args, departmentID)
	}
	query += `
GROUP BY f.id, f.name, d.name`

	var buckets []insights.FacultyBucket
	if err := repo.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, core.NewDatabaseError("failed to total awards by faculty", err)
	}
	return buckets, nil
}
