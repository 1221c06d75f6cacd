package ingest

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
)

var errEmptyDocument = errors.New("CSV document is empty")

type (
	// Repository reconciles validated rows into the entity store by natural
	// key: Department by name, Faculty by email, Sponsor by (name, type),
	// Grant by (title, PI).
	Repository interface {
		GetOrCreateDepartment(ctx context.Context, name string) (grant.Department, error)
		// UpsertFacultyByEmail creates the faculty member, or updates name
		// and department in place when the email already exists.
		UpsertFacultyByEmail(ctx context.Context, name, email string, departmentID int) (grant.Faculty, error)
		GetOrCreateSponsor(ctx context.Context, name string, sponsorType grant.SponsorType) (grant.Sponsor, error)
		// GetGrantByTitleAndPI returns grant.ErrNotFound when no grant matches.
		GetGrantByTitleAndPI(ctx context.Context, title string, piID int) (grant.Grant, error)
		CreateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error)
		UpdateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

// IngestCSV runs the full pipeline on a raw CSV document: parse, validate
// each row, reconcile each valid row into the store. Rows are processed
// sequentially and fail independently; a failed row lands in the report,
// never aborts the rest. An empty document is a request-level failure.
func (svc *Service) IngestCSV(ctx context.Context, text string) (Report, error) {
	records, err := parseDocument(text)
	if err != nil {
		return Report{}, core.NewValidationError(errors.Wrap(err, "malformed CSV"))
	}
	if records == nil && !hasHeader(text) {
		return Report{}, core.NewValidationError(errEmptyDocument)
	}

	report := Report{TotalRows: len(records), Errors: []RowError{}}
	for i, record := range records {
		rowNumber := i + 2 // 1-based, counting the header row

		row, fldErrs := rowFromRecord(record)
		fldErrs = append(fldErrs, svc.validateRow(row)...)
		if len(fldErrs) > 0 {
			report.Errors = append(report.Errors, RowError{
				Row:   rowNumber,
				Error: joinFieldErrors(fldErrs),
				Data:  record,
			})
			continue
		}

		inserted, err := svc.reconcile(ctx, row)
		if err != nil {
			report.Errors = append(report.Errors, RowError{
				Row:   rowNumber,
				Error: err.Error(),
				Data:  record,
			})
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}
	return report, nil
}

func (svc *Service) validateRow(row Row) []core.FieldError {
	err := svc.validate.Struct(row)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []core.FieldError{{Field: "row", Error: err.Error()}}
	}
	fldErrs := make([]core.FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		fldErrs = append(fldErrs, core.FieldError{
			Field: vErr.Field(),
			Error: vErr.Translate(svc.translator),
		})
	}
	return fldErrs
}

// reconcile resolves the row's entities by natural key and upserts the
// grant by (title, PI). Returns whether a new grant was inserted.
func (svc *Service) reconcile(ctx context.Context, row Row) (inserted bool, err error) {
	dept, err := svc.repo.GetOrCreateDepartment(ctx, row.DepartmentName)
	if err != nil {
		return false, errors.Wrap(err, "resolving department")
	}
	pi, err := svc.repo.UpsertFacultyByEmail(ctx, row.PIName, row.PIEmail, dept.ID)
	if err != nil {
		return false, errors.Wrap(err, "resolving faculty")
	}
	sponsor, err := svc.repo.GetOrCreateSponsor(ctx, row.SponsorName, grant.SponsorType(row.SponsorType))
	if err != nil {
		return false, errors.Wrap(err, "resolving sponsor")
	}

	now := time.Now().UTC()
	g := grant.Grant{
		Title:        row.Title,
		SponsorID:    sponsor.ID,
		PIID:         pi.ID,
		DepartmentID: dept.ID,
		Amount:       row.Amount,
		Status:       grant.Status(row.Status),
		SubmittedAt:  row.SubmittedAt,
		AwardedAt:    row.AwardedAt,
		UpdatedAt:    now,
	}

	existing, err := svc.repo.GetGrantByTitleAndPI(ctx, row.Title, pi.ID)
	switch errors.Cause(err) {
	case nil:
		g.ID = existing.ID
		g.CreatedAt = existing.CreatedAt
		if _, err = svc.repo.UpdateGrant(ctx, g); err != nil {
			return false, errors.Wrap(err, "updating grant")
		}
		return false, nil
	case grant.ErrNotFound:
		g.CreatedAt = now
		if _, err = svc.repo.CreateGrant(ctx, g); err != nil {
			return false, errors.Wrap(err, "inserting grant")
		}
		return true, nil
	default:
		return false, errors.Wrap(err, "looking up grant")
	}
}

func joinFieldErrors(fldErrs []core.FieldError) string {
	parts := make([]string, 0, len(fldErrs))
	for _, fe := range fldErrs {
		parts = append(parts, fe.Field+": "+fe.Error)
	}
	return strings.Join(parts, "; ")
}

func hasHeader(text string) bool {
	return strings.TrimSpace(text) != ""
}
