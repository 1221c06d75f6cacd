package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
)

type grantRepository struct {
	db *sqlx.DB
}

var _ grant.Repository = (*grantRepository)(nil) // interface compliance check

func NewGrantRepository(db *sqlx.DB) *grantRepository {
	return &grantRepository{db: db}
}

// grantRow is one joined listing row; relation columns are aliased rel_*.
type grantRow struct {
	grant.Grant
	RelSponsorName    string            `db:"rel_sponsor_name"`
	RelSponsorType    grant.SponsorType `db:"rel_sponsor_type"`
	RelPIName         string            `db:"rel_pi_name"`
	RelPIEmail        string            `db:"rel_pi_email"`
	RelPIDepartmentID int               `db:"rel_pi_department_id"`
	RelDepartmentName string            `db:"rel_department_name"`
}

func (row grantRow) relations() grant.GrantWithRelations {
	return grant.GrantWithRelations{
		Grant: row.Grant,
		Sponsor: &grant.Sponsor{
			ID:          row.SponsorID,
			Name:        row.RelSponsorName,
			SponsorType: row.RelSponsorType,
		},
		PI: &grant.Faculty{
			ID:           row.PIID,
			Name:         row.RelPIName,
			Email:        row.RelPIEmail,
			DepartmentID: row.RelPIDepartmentID,
		},
		Department: &grant.Department{
			ID:   row.DepartmentID,
			Name: row.RelDepartmentName,
		},
	}
}

const grantSelect = `
SELECT g.id, g.title, g.sponsor_id, g.pi_id, g.department_id, g.amount, g.status,
       g.submitted_at, g.awarded_at, g.created_at, g.updated_at,
       s.name AS rel_sponsor_name, s.sponsor_type AS rel_sponsor_type,
       f.name AS rel_pi_name, f.email AS rel_pi_email, f.department_id AS rel_pi_department_id,
       d.name AS rel_department_name
FROM grants g
JOIN sponsors s ON g.sponsor_id = s.id
JOIN faculty f ON g.pi_id = f.id
JOIN departments d ON g.department_id = d.id`

// filterClauses renders the QueryFilter into WHERE conditions and args.
func filterClauses(filter *grant.QueryFilter, args []interface{}) ([]string, []interface{}) {
	var conds []string
	if filter == nil {
		return conds, args
	}
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		conds = append(conds, "g.department_id = $"+strconv.Itoa(len(args)))
	}
	if filter.SponsorID > 0 {
		args = append(args, filter.SponsorID)
		conds = append(conds, "g.sponsor_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "g.status = $"+strconv.Itoa(len(args)))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom.UTC())
		conds = append(conds, "g.submitted_at >= $"+strconv.Itoa(len(args)))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo.UTC())
		conds = append(conds, "g.submitted_at <= $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, fmt.Sprintf("(g.title ILIKE $%s OR f.name ILIKE $%s)", n, n))
	}
	return conds, args
}

func whereSQL(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	sql := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		sql += " AND " + c
	}
	return sql
}

func (repo grantRepository) QueryGrants(ctx context.Context, filter *grant.QueryFilter, page grant.Page) ([]grant.GrantWithRelations, int, error) {
	conds, args := filterClauses(filter, nil)
	where := whereSQL(conds)

	var total int
	countQuery := "SELECT COUNT(*) FROM grants g JOIN faculty f ON g.pi_id = f.id" + where
	if err := repo.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, core.NewDatabaseError("failed to fetch grants", err)
	}

	args = append(args, page.Size)
	limit := "$" + strconv.Itoa(len(args))
	args = append(args, page.Offset())
	offset := "$" + strconv.Itoa(len(args))

	query := grantSelect + where +
		" ORDER BY g.submitted_at DESC NULLS LAST, g.id DESC LIMIT " + limit + " OFFSET " + offset

	var rows []grantRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, core.NewDatabaseError("failed to fetch grants", err)
	}

	items := make([]grant.GrantWithRelations, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.relations())
	}
	return items, total, nil
}

func (repo grantRepository) GetGrantByID(ctx context.Context, id int) (grant.GrantWithRelations, error) {
	var row grantRow
	if err := repo.db.GetContext(ctx, &row, grantSelect+" WHERE g.id = $1", id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return grant.GrantWithRelations{}, grant.ErrNotFound
		}
		return grant.GrantWithRelations{}, core.NewDatabaseError("failed to fetch grant", err)
	}
	return row.relations(), nil
}

func (repo grantRepository) QueryDepartments(ctx context.Context) ([]grant.Department, error) {
	var depts []grant.Department
	if err := repo.db.SelectContext(ctx, &depts, "SELECT id, name FROM departments ORDER BY name"); err != nil {
		return nil, core.NewDatabaseError("failed to fetch departments", err)
	}
	return depts, nil
}

func (repo grantRepository) QuerySponsors(ctx context.Context) ([]grant.Sponsor, error) {
	var sponsors []grant.Sponsor
	if err := repo.db.SelectContext(ctx, &sponsors, "SELECT id, name, sponsor_type FROM sponsors ORDER BY name, sponsor_type"); err != nil {
		return nil, core.NewDatabaseError("failed to fetch sponsors", err)
	}
	return sponsors, nil
}
