package grant

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func exportFixture() []GrantWithRelations {
	submitted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	awarded := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	return []GrantWithRelations{
		{
			Grant: Grant{
				ID:          1,
				Title:       `Grants, "quoted" & commas`,
				Amount:      1250.5,
				Status:      StatusAwarded,
				SubmittedAt: null.TimeFrom(submitted),
				AwardedAt:   null.TimeFrom(awarded),
			},
			Sponsor:    &Sponsor{Name: "NSF", SponsorType: SponsorFederal},
			PI:         &Faculty{Name: "Ada Okafor", Email: "ada@example.edu"},
			Department: &Department{Name: "Physics"},
		},
		{
			Grant: Grant{ID: 2, Title: "Draft idea", Status: StatusDraft},
			// nil relations are tolerated and render empty
		},
	}
}

func Test_RenderCSV(t *testing.T) {
	out := string(RenderCSV(exportFixture()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		`"ID","Title","PI Name","PI Email","Department","Sponsor","Sponsor Type","Amount","Status","Submitted At","Awarded At"`,
		lines[0])

	// every field quoted, internal quotes doubled, ISO dates
	assert.Equal(t,
		`"1","Grants, ""quoted"" & commas","Ada Okafor","ada@example.edu","Physics","NSF","federal","1250.5","awarded","2026-01-02T03:04:05Z","2026-03-04T00:00:00Z"`,
		lines[1])

	// null dates and missing relations render empty, still quoted
	assert.Equal(t, `"2","Draft idea","","","","","","0","draft","",""`, lines[2])
}

func Test_RenderCSV_roundTrips(t *testing.T) {
	out := RenderCSV(exportFixture())

	r := csv.NewReader(strings.NewReader(string(out)))
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, row, 11)
	}
	assert.Equal(t, `Grants, "quoted" & commas`, rows[1][1])
}

func Test_RenderCSV_empty(t *testing.T) {
	out := string(RenderCSV(nil))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 1) // header only
}
