package insights

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/researchops/grantboard/core/grant"
)

// Filter bounds and narrows every aggregation. From/To delimit the lookback
// window ([From, now]); zero/empty optional fields are ignored.
type Filter struct {
	From         time.Time
	To           time.Time
	DepartmentID int
	SponsorType  grant.SponsorType
	// Statuses narrows submission-based aggregates only; award-based
	// aggregates are always the awarded set.
	Statuses []grant.Status
}

// Summary is the KPI block of the insights payload.
type Summary struct {
	Submissions        int     `json:"submissions"`
	Awards             int     `json:"awards"`
	AwardRate          float64 `json:"awardRate"` // percentage, 2 decimals
	TotalAwardedAmount float64 `json:"totalAwardedAmount"`
	MedianTimeToAward  *int    `json:"medianTimeToAward"` // whole days; null when no dated awards
	AvgAwardSize       float64 `json:"avgAwardSize"`
}

// StatusCounts breaks a month's submissions down by status.
type StatusCounts struct {
	Draft       int `json:"draft"`
	Submitted   int `json:"submitted"`
	UnderReview int `json:"under_review"`
	Awarded     int `json:"awarded"`
	Declined    int `json:"declined"`
}

type TimeSeriesPoint struct {
	Month         string       `json:"month"` // "YYYY-MM"
	Submissions   int          `json:"submissions"`
	Awards        int          `json:"awards"`
	AwardedAmount float64      `json:"awardedAmount"`
	StatusCounts  StatusCounts `json:"statusCounts"`
}

type DailyActivityPoint struct {
	Date          string  `json:"date"` // "YYYY-MM-DD"
	Submissions   int     `json:"submissions"`
	Awards        int     `json:"awards"`
	AwardedAmount float64 `json:"awardedAmount"`
}

type SponsorBreakdownPoint struct {
	Name          string            `json:"name"`
	SponsorType   grant.SponsorType `json:"sponsorType"`
	AwardedAmount float64           `json:"awardedAmount"`
	Count         int               `json:"count"`
}

type DepartmentBreakdownPoint struct {
	DepartmentID  int     `json:"departmentId"`
	Name          string  `json:"name"`
	AwardedAmount float64 `json:"awardedAmount"`
	Awards        int     `json:"awards"`
	Submissions   int     `json:"submissions"`
}

// Funnel counts in-window grants by pipeline stage. Drafts never enter it.
type Funnel struct {
	Submitted   int `json:"submitted"`
	UnderReview int `json:"underReview"`
	Awarded     int `json:"awarded"`
	Declined    int `json:"declined"`
}

// Insights is the composite payload of GET /api/insights.
type Insights struct {
	Summary             Summary                    `json:"summary"`
	Timeseries          []TimeSeriesPoint          `json:"timeseries"`
	DailyActivity       []DailyActivityPoint       `json:"dailyActivity"`
	SponsorBreakdown    []SponsorBreakdownPoint    `json:"sponsorBreakdown"`
	DepartmentBreakdown []DepartmentBreakdownPoint `json:"departmentBreakdown"`
	Funnel              Funnel                     `json:"funnel"`
}

// MetricsSummary is the fixed 12-month dashboard KPI block.
type MetricsSummary struct {
	TotalSubmissions   int     `json:"totalSubmissions"`
	TotalAwardedAmount float64 `json:"totalAwardedAmount"`
	AwardRate          float64 `json:"awardRate"`
	MedianTimeToAward  *int    `json:"medianTimeToAward"`
}

type LeaderboardEntry struct {
	FacultyID      int     `json:"facultyId"`
	FacultyName    string  `json:"facultyName"`
	DepartmentName string  `json:"departmentName"`
	TotalAwarded   float64 `json:"totalAwarded"`
	Rank           int     `json:"rank"`
}

// Partial aggregates returned by the Repository. The service owns calendar
// generation, zero-filling, joining and ranking.
type (
	MonthBucket struct {
		Month  string  `db:"month"` // "YYYY-MM"
		Count  int     `db:"count"`
		Amount float64 `db:"amount"`
	}

	DayBucket struct {
		Date   string  `db:"date"` // "YYYY-MM-DD"
		Count  int     `db:"count"`
		Amount float64 `db:"amount"`
	}

	MonthStatusBucket struct {
		Month  string       `db:"month"`
		Status grant.Status `db:"status"`
		Count  int          `db:"count"`
	}

	SponsorBucket struct {
		Name        string            `db:"name"`
		SponsorType grant.SponsorType `db:"sponsor_type"`
		Count       int               `db:"count"`
		Amount      float64           `db:"amount"`
	}

	DepartmentBucket struct {
		DepartmentID int     `db:"department_id"`
		Name         string  `db:"name"`
		Count        int     `db:"count"`
		Amount       float64 `db:"amount"`
	}

	StatusBucket struct {
		Status grant.Status `db:"status"`
		Count  int          `db:"count"`
	}

	FacultyBucket struct {
		FacultyID      int     `db:"faculty_id"`
		FacultyName    string  `db:"faculty_name"`
		DepartmentName string  `db:"department_name"`
		TotalAwarded   float64 `db:"total_awarded"`
	}

	// AwardedGrant carries the fields needed for award totals and
	// time-to-award; either date may be null on tolerated rows.
	AwardedGrant struct {
		Amount      float64   `db:"amount"`
		SubmittedAt null.Time `db:"submitted_at"`
		AwardedAt   null.Time `db:"awarded_at"`
	}
)
