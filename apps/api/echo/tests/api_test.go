package tests

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/ingest"
	"github.com/researchops/grantboard/core/insights"
)

// seedDoc builds a small dataset with dates relative to now so every row
// stays inside the default 12-month window.
func seedDoc() string {
	day := func(d int) string { return time.Now().UTC().AddDate(0, 0, -d).Format("2006-01-02") }
	return "title,sponsor_name,sponsor_type,pi_name,pi_email,department_name,amount,status,submitted_at,awarded_at\n" +
		fmt.Sprintf(`"Solar Cells","NSF","federal","Ada Okafor","ada@example.edu","Physics",1000,"awarded","%s","%s"`, day(90), day(60)) + "\n" +
		fmt.Sprintf(`"Quantum Radios","NSF","federal","Ada Okafor","ada@example.edu","Physics",500,"submitted","%s",`, day(40)) + "\n" +
		fmt.Sprintf(`"Old Maps","Mellon","foundation","Ben Okoye","ben@example.edu","History",200,"declined","%s",`, day(100)) + "\n"
}

func Test_healthCheck(t *testing.T) {
	server := setup(t)

	rec := do(server, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Grantboard", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func Test_ingestGrants(t *testing.T) {
	server := setup(t)

	doc := seedDoc() +
		`"Broken","NSF","galactic","Cy","not-an-email","Physics",-1,"granted",,` + "\n"
	rec := do(server, http.MethodPost, "/api/ingest/grants", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report ingest.Report
	decode(t, rec, &report)
	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 0, report.Updated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 5, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Error, "pi_email")
	assert.Contains(t, report.Errors[0].Error, "sponsor_type")
}

func Test_ingestGrants_emptyBody(t *testing.T) {
	server := setup(t)

	rec := do(server, http.MethodPost, "/api/ingest/grants", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope errEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, http.StatusBadRequest, envelope.Error.StatusCode)
	assert.Contains(t, envelope.Error.Message, "empty")
	assert.False(t, envelope.Error.Timestamp.IsZero())
}

func Test_grantList(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("default page", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants")
		require.Equal(t, http.StatusOK, rec.Code)

		var page grant.PaginatedGrants
		decode(t, rec, &page)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
		require.Len(t, page.Items, 3)
		// submitted_at DESC
		assert.Equal(t, "Quantum Radios", page.Items[0].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants?status=awarded")
		require.Equal(t, http.StatusOK, rec.Code)

		var page grant.PaginatedGrants
		decode(t, rec, &page)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Solar Cells", page.Items[0].Title)
		require.NotNil(t, page.Items[0].Department)
		assert.Equal(t, "Physics", page.Items[0].Department.Name)
	})

	t.Run("search matches PI name", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants?search=okoye")
		require.Equal(t, http.StatusOK, rec.Code)

		var page grant.PaginatedGrants
		decode(t, rec, &page)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("pagination caps pageSize", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants?page=2&pageSize=500")
		require.Equal(t, http.StatusOK, rec.Code)

		var page grant.PaginatedGrants
		decode(t, rec, &page)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 100, page.PageSize)
		assert.Empty(t, page.Items)
	})

	t.Run("bad status is a field error", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants?status=granted")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var envelope errEnvelope
		decode(t, rec, &envelope)
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
		assert.Equal(t, "is not a valid grant status", envelope.Error.Fields["status"])
	})
}

func Test_grantRetrieve(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("found", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/1")
		require.Equal(t, http.StatusOK, rec.Code)

		var g grant.GrantWithRelations
		decode(t, rec, &g)
		assert.Equal(t, 1, g.ID)
		require.NotNil(t, g.PI)
		assert.Equal(t, "ada@example.edu", g.PI.Email)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/99")
		require.Equal(t, http.StatusNotFound, rec.Code)

		var envelope errEnvelope
		decode(t, rec, &envelope)
		assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
		assert.Equal(t, "grant with id 99 not found", envelope.Error.Message)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/abc")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var envelope errEnvelope
		decode(t, rec, &envelope)
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
		assert.Equal(t, "must be an integer", envelope.Error.Fields["id"])
	})
}

func Test_grantExport(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("csv", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/export")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="grants-export.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

		lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
		assert.Len(t, lines, 4) // header + 3 rows
		assert.True(t, strings.HasPrefix(lines[0], `"ID","Title"`))
	})

	t.Run("json", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/export?format=json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="grants-export.json"`, rec.Header().Get("Content-Disposition"))

		var items []grant.GrantWithRelations
		decode(t, rec, &items)
		assert.Len(t, items, 3)
	})

	t.Run("filtered export", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/export?format=json&status=declined")
		require.Equal(t, http.StatusOK, rec.Code)

		var items []grant.GrantWithRelations
		decode(t, rec, &items)
		require.Len(t, items, 1)
		assert.Equal(t, "Old Maps", items[0].Title)
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/grants/export?format=xml")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var envelope errEnvelope
		decode(t, rec, &envelope)
		assert.Equal(t, "must be csv or json", envelope.Error.Fields["format"])
	})
}

func Test_referenceLists(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(server, http.MethodGet, "/api/departments")
	require.Equal(t, http.StatusOK, rec.Code)
	var depts []grant.Department
	decode(t, rec, &depts)
	require.Len(t, depts, 2)
	assert.Equal(t, "History", depts[0].Name) // name ASC

	rec = do(server, http.MethodGet, "/api/sponsors")
	require.Equal(t, http.StatusOK, rec.Code)
	var sponsors []grant.Sponsor
	decode(t, rec, &sponsors)
	assert.Len(t, sponsors, 2)
}

func Test_insightsEndpoint(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("composite payload", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/insights")
		require.Equal(t, http.StatusOK, rec.Code)

		var payload insights.Insights
		decode(t, rec, &payload)
		// default 12-month window: 13 calendar months inclusive
		assert.Len(t, payload.Timeseries, 13)
		assert.NotEmpty(t, payload.DailyActivity)
	})

	t.Run("months out of range", func(t *testing.T) {
		for _, path := range []string{"/api/insights?months=0", "/api/insights?months=40", "/api/insights?months=lots"} {
			rec := do(server, http.MethodGet, path)
			require.Equal(t, http.StatusBadRequest, rec.Code, path)

			var envelope errEnvelope
			decode(t, rec, &envelope)
			assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
			assert.Equal(t, "must be an integer between 1 and 36", envelope.Error.Fields["months"])
		}
	})

	t.Run("status list", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/insights?months=12&status=awarded,declined")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = do(server, http.MethodGet, "/api/insights?status=granted")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_metricsEndpoints(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(server, http.MethodGet, "/api/metrics/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary insights.MetricsSummary
	decode(t, rec, &summary)

	rec = do(server, http.MethodGet, "/api/metrics/status-breakdown")
	require.Equal(t, http.StatusOK, rec.Code)
	var counts insights.StatusCounts
	decode(t, rec, &counts)

	rec = do(server, http.MethodGet, "/api/metrics/timeseries?months=3")
	require.Equal(t, http.StatusOK, rec.Code)
	var series []insights.TimeSeriesPoint
	decode(t, rec, &series)
	assert.Len(t, series, 4)

	// prometheus exposition is mounted at the root
	rec = do(server, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "grantboard_http_requests_total")
}

func Test_facultyLeaderboard(t *testing.T) {
	server := setup(t)
	rec := do(server, http.MethodPost, "/api/ingest/grants", seedDoc())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(server, http.MethodGet, "/api/faculty/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var leaderboard []insights.LeaderboardEntry
	decode(t, rec, &leaderboard)
	require.Len(t, leaderboard, 2)
	assert.Equal(t, "Ada Okafor", leaderboard[0].FacultyName)
	assert.Equal(t, 1, leaderboard[0].Rank)
	assert.Equal(t, 1000.0, leaderboard[0].TotalAwarded)
	assert.Equal(t, 0.0, leaderboard[1].TotalAwarded)
	assert.Equal(t, 2, leaderboard[1].Rank)

	rec = do(server, http.MethodGet, "/api/faculty/leaderboard?department=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
