package grant

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	// exports are unpaginated; this bounds the fetch
	exportPageSize = 10000
)

// exportHeader is the fixed CSV column set, in order.
var exportHeader = []string{
	"ID",
	"Title",
	"PI Name",
	"PI Email",
	"Department",
	"Sponsor",
	"Sponsor Type",
	"Amount",
	"Status",
	"Submitted At",
	"Awarded At",
}

// Export returns the full filtered grant set for download.
func (svc *Service) Export(ctx context.Context, filter *QueryFilter) ([]GrantWithRelations, error) {
	items, _, err := svc.repo.QueryGrants(ctx, filter, Page{Number: 1, Size: exportPageSize})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []GrantWithRelations{}
	}
	return items, nil
}

// RenderCSV renders grants as a CSV document: fixed header, every field
// quoted, internal quotes doubled, dates as ISO-8601 or empty when null.
func RenderCSV(items []GrantWithRelations) []byte {
	var b strings.Builder
	writeCSVRow(&b, exportHeader)
	for _, g := range items {
		var piName, piEmail, deptName, sponsorName, sponsorType string
		if g.PI != nil {
			piName, piEmail = g.PI.Name, g.PI.Email
		}
		if g.Department != nil {
			deptName = g.Department.Name
		}
		if g.Sponsor != nil {
			sponsorName, sponsorType = g.Sponsor.Name, string(g.Sponsor.SponsorType)
		}
		writeCSVRow(&b, []string{
			strconv.Itoa(g.ID),
			g.Title,
			piName,
			piEmail,
			deptName,
			sponsorName,
			sponsorType,
			strconv.FormatFloat(g.Amount, 'f', -1, 64),
			string(g.Status),
			isoOrEmpty(g.SubmittedAt.Time, g.SubmittedAt.Valid),
			isoOrEmpty(g.AwardedAt.Time, g.AwardedAt.Valid),
		})
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func isoOrEmpty(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
