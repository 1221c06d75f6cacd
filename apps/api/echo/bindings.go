package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/insights"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100

	minMonths = 1
	maxMonths = 36
)

var errInvalidParams = errors.New("invalid query parameters")

// query-date formats accepted on date_from/date_to
var queryDateLayouts = []string{time.RFC3339, "2006-01-02"}

type grantListRequest struct {
	Filter grant.QueryFilter
	Page   grant.Page
	Format string // export only
}

// Bind parses the listing/export query string; every malformed parameter
// lands in the returned ValidationError as its own field.
func (req *grantListRequest) Bind(ctx echo.Context) error {
	var fldErrs []core.FieldError

	req.Filter.DepartmentID = bindIntParam(ctx, "department", &fldErrs)
	req.Filter.SponsorID = bindIntParam(ctx, "sponsor", &fldErrs)
	req.Filter.Search = ctx.QueryParam("search")

	if status := core.CleanString(ctx.QueryParam("status"), true); status != "" {
		if !grant.ValidStatus(status) {
			fldErrs = append(fldErrs, core.FieldError{Field: "status", Error: "is not a valid grant status"})
		} else {
			req.Filter.Status = grant.Status(status)
		}
	}
	req.Filter.DateFrom = bindDateParam(ctx, "date_from", &fldErrs)
	req.Filter.DateTo = bindDateParam(ctx, "date_to", &fldErrs)

	req.Page = grant.Page{Number: defaultPage, Size: defaultPageSize}
	if page := bindIntParam(ctx, "page", &fldErrs); page > 0 {
		req.Page.Number = page
	}
	if size := bindIntParam(ctx, "pageSize", &fldErrs); size > 0 {
		if size > maxPageSize {
			size = maxPageSize
		}
		req.Page.Size = size
	}

	switch format := core.CleanString(ctx.QueryParam("format"), true); format {
	case "", grant.FormatCSV:
		req.Format = grant.FormatCSV
	case grant.FormatJSON:
		req.Format = grant.FormatJSON
	default:
		fldErrs = append(fldErrs, core.FieldError{Field: "format", Error: "must be csv or json"})
	}

	if len(fldErrs) > 0 {
		return core.NewValidationError(errInvalidParams, fldErrs...)
	}
	return nil
}

type insightsRequest struct {
	Params insights.Params
}

// Bind parses the insights query string. months outside [1, 36] is a
// request-level failure, never silently clamped.
func (req *insightsRequest) Bind(ctx echo.Context) error {
	var fldErrs []core.FieldError

	req.Params.Months = insights.DefaultMonths
	if raw := ctx.QueryParam("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months < minMonths || months > maxMonths {
			fldErrs = append(fldErrs, core.FieldError{Field: "months", Error: "must be an integer between 1 and 36"})
		} else {
			req.Params.Months = months
		}
	}

	req.Params.DepartmentID = bindIntParam(ctx, "departmentId", &fldErrs)

	if st := core.CleanString(ctx.QueryParam("sponsorType"), true); st != "" {
		if !grant.ValidSponsorType(st) {
			fldErrs = append(fldErrs, core.FieldError{Field: "sponsorType", Error: "is not a valid sponsor type"})
		} else {
			req.Params.SponsorType = grant.SponsorType(st)
		}
	}

	// comma-separated; unknown values are rejected, empty segments skipped
	if raw := ctx.QueryParam("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := core.CleanString(part, true)
			if status == "" {
				continue
			}
			if !grant.ValidStatus(status) {
				fldErrs = append(fldErrs, core.FieldError{Field: "status", Error: "is not a valid grant status"})
				continue
			}
			req.Params.Statuses = append(req.Params.Statuses, grant.Status(status))
		}
	}

	if len(fldErrs) > 0 {
		return core.NewValidationError(errInvalidParams, fldErrs...)
	}
	return nil
}

type leaderboardRequest struct {
	DepartmentID int
}

func (req *leaderboardRequest) Bind(ctx echo.Context) error {
	var fldErrs []core.FieldError
	req.DepartmentID = bindIntParam(ctx, "department", &fldErrs)
	if len(fldErrs) > 0 {
		return core.NewValidationError(errInvalidParams, fldErrs...)
	}
	return nil
}

func bindIntParam(ctx echo.Context, name string, fldErrs *[]core.FieldError) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		*fldErrs = append(*fldErrs, core.FieldError{Field: name, Error: "must be an integer"})
		return 0
	}
	return val
}

func bindDateParam(ctx echo.Context, name string, fldErrs *[]core.FieldError) time.Time {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range queryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	*fldErrs = append(*fldErrs, core.FieldError{Field: name, Error: "must be a valid date"})
	return time.Time{}
}
