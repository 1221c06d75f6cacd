package ingest

import (
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/researchops/grantboard/core"
)

// Row is one validated CSV data row, keyed by the document's column names.
type Row struct {
	Title          string    `json:"title" validate:"required"`
	SponsorName    string    `json:"sponsor_name" validate:"required"`
	SponsorType    string    `json:"sponsor_type" validate:"required,sponsortype"`
	PIName         string    `json:"pi_name" validate:"required"`
	PIEmail        string    `json:"pi_email" validate:"required,email"`
	DepartmentName string    `json:"department_name" validate:"required"`
	Amount         float64   `json:"amount" validate:"gte=0"`
	Status         string    `json:"status" validate:"required,grantstatus"`
	SubmittedAt    null.Time `json:"submitted_at"`
	AwardedAt      null.Time `json:"awarded_at"`
}

// RowError is one failed row in a Report; Row is the 1-based line number in
// the document counting the header (the first data row is row 2).
type RowError struct {
	Row   int               `json:"row"`
	Error string            `json:"error"`
	Data  map[string]string `json:"data,omitempty"`
}

// Report is the outcome of ingesting one CSV document.
type Report struct {
	TotalRows int        `json:"totalRows"`
	Inserted  int        `json:"inserted"`
	Updated   int        `json:"updated"`
	Errors    []RowError `json:"errors"`
}

// date layouts accepted for submitted_at/awarded_at cells
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rowFromRecord coerces a raw record into a Row, reporting per-field
// coercion failures. The Row still needs schema validation afterwards.
func rowFromRecord(record map[string]string) (Row, []core.FieldError) {
	row := Row{
		Title:          core.CleanString(record["title"]),
		SponsorName:    core.CleanString(record["sponsor_name"]),
		SponsorType:    core.CleanString(record["sponsor_type"], true /* lower */),
		PIName:         core.CleanString(record["pi_name"]),
		PIEmail:        core.CleanString(record["pi_email"], true /* lower */),
		DepartmentName: core.CleanString(record["department_name"]),
		Status:         core.CleanString(record["status"], true /* lower */),
	}

	var fldErrs []core.FieldError
	if raw := core.CleanString(record["amount"]); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "amount", Error: "must be a number"})
		} else {
			row.Amount = amount
		}
	}
	if raw := core.CleanString(record["submitted_at"]); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "submitted_at", Error: "must be a valid date"})
		} else {
			row.SubmittedAt = null.TimeFrom(t)
		}
	}
	if raw := core.CleanString(record["awarded_at"]); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "awarded_at", Error: "must be a valid date"})
		} else {
			row.AwardedAt = null.TimeFrom(t)
		}
	}
	return row, fldErrs
}

func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func parseDate(raw string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
