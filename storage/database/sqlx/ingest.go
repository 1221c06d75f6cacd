package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/ingest"
)

type ingestRepository struct {
	db *sqlx.DB
}

var _ ingest.Repository = (*ingestRepository)(nil) // interface compliance check

func NewIngestRepository(db *sqlx.DB) *ingestRepository {
	return &ingestRepository{db: db}
}

func (repo ingestRepository) GetOrCreateDepartment(ctx context.Context, name string) (grant.Department, error) {
	// DO UPDATE instead of DO NOTHING so RETURNING yields the existing row
	var dept grant.Department
	err := repo.db.GetContext(ctx, &dept, `
INSERT INTO departments (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name`, name)
	if err != nil {
		return grant.Department{}, core.NewDatabaseError("failed to resolve department", err)
	}
	return dept, nil
}

func (repo ingestRepository) UpsertFacultyByEmail(ctx context.Context, name, email string, departmentID int) (grant.Faculty, error) {
	var fac grant.Faculty
	err := repo.db.GetContext(ctx, &fac, `
INSERT INTO faculty (name, email, department_id) VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, department_id = EXCLUDED.department_id
RETURNING id, name, email, department_id`, name, email, departmentID)
	if err != nil {
		return grant.Faculty{}, core.NewDatabaseError("failed to resolve faculty", err)
	}
	return fac, nil
}

func (repo ingestRepository) GetOrCreateSponsor(ctx context.Context, name string, sponsorType grant.SponsorType) (grant.Sponsor, error) {
	var sponsor grant.Sponsor
	err := repo.db.GetContext(ctx, &sponsor, `
INSERT INTO sponsors (name, sponsor_type) VALUES ($1, $2)
ON CONFLICT (name, sponsor_type) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, sponsor_type`, name, sponsorType)
	if err != nil {
		return grant.Sponsor{}, core.NewDatabaseError("failed to resolve sponsor", err)
	}
	return sponsor, nil
}

func (repo ingestRepository) GetGrantByTitleAndPI(ctx context.Context, title string, piID int) (grant.Grant, error) {
	var g grant.Grant
	err := repo.db.GetContext(ctx, &g, `
SELECT id, title, sponsor_id, pi_id, department_id, amount, status,
       submitted_at, awarded_at, created_at, updated_at
FROM grants WHERE title = $1 AND pi_id = $2
ORDER BY id LIMIT 1`, title, piID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return grant.Grant{}, grant.ErrNotFound
		}
		return grant.Grant{}, core.NewDatabaseError("failed to look up grant", err)
	}
	return g, nil
}

func (repo ingestRepository) CreateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error) {
	err := repo.db.GetContext(ctx, &g, `
INSERT INTO grants (title, sponsor_id, pi_id, department_id, amount, status, submitted_at, awarded_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, title, sponsor_id, pi_id, department_id, amount, status,
          submitted_at, awarded_at, created_at, updated_at`,
		g.Title, g.SponsorID, g.PIID, g.DepartmentID, g.Amount, g.Status,
		g.SubmittedAt, g.AwardedAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return grant.Grant{}, core.NewDatabaseError("failed to insert grant", err)
	}
	return g, nil
}

func (repo ingestRepository) UpdateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error) {
	err := repo.db.GetContext(ctx, &g, `
UPDATE grants
SET sponsor_id = $2, department_id = $3, amount = $4, status = $5,
    submitted_at = $6, awarded_at = $7, updated_at = $8
WHERE id = $1
RETURNING id, title, sponsor_id, pi_id, department_id, amount, status,
          submitted_at, awarded_at, created_at, updated_at`,
		g.ID, g.SponsorID, g.DepartmentID, g.Amount, g.Status,
		g.SubmittedAt, g.AwardedAt, g.UpdatedAt)
	if err != nil {
		return grant.Grant{}, core.NewDatabaseError("failed to update grant", err)
	}
	return g, nil
}
