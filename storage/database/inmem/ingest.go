package inmemdb

import (
	"context"

	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/ingest"
)

type ingestRepository struct {
	db *DB
}

var _ ingest.Repository = (*ingestRepository)(nil) // interface compliance check

func NewIngestRepository(db *DB) *ingestRepository {
	return &ingestRepository{db: db}
}

func (repo ingestRepository) GetOrCreateDepartment(ctx context.Context, name string) (grant.Department, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, d := range repo.db.departments {
		if d.Name == name {
			return *d, nil
		}
	}
	repo.db.deptSeq++
	dept := &grant.Department{ID: repo.db.deptSeq, Name: name}
	repo.db.departments[dept.ID] = dept
	return *dept, nil
}

func (repo ingestRepository) UpsertFacultyByEmail(ctx context.Context, name, email string, departmentID int) (grant.Faculty, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, f := range repo.db.faculty {
		if f.Email == email {
			f.Name = name
			f.DepartmentID = departmentID
			return *f, nil
		}
	}
	repo.db.facultySeq++
	fac := &grant.Faculty{ID: repo.db.facultySeq, Name: name, Email: email, DepartmentID: departmentID}
	repo.db.faculty[fac.ID] = fac
	return *fac, nil
}

func (repo ingestRepository) GetOrCreateSponsor(ctx context.Context, name string, sponsorType grant.SponsorType) (grant.Sponsor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.sponsors {
		if s.Name == name && s.SponsorType == sponsorType {
			return *s, nil
		}
	}
	repo.db.sponsorSeq++
	sponsor := &grant.Sponsor{ID: repo.db.sponsorSeq, Name: name, SponsorType: sponsorType}
	repo.db.sponsors[sponsor.ID] = sponsor
	return *sponsor, nil
}

func (repo ingestRepository) GetGrantByTitleAndPI(ctx context.Context, title string, piID int) (grant.Grant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// lowest id wins, as the SQL ORDER BY id LIMIT 1 does
	var found *grant.Grant
	for _, g := range repo.db.grants {
		if g.Title != title || g.PIID != piID {
			continue
		}
		if found == nil || g.ID < found.ID {
			found = g
		}
	}
	if found == nil {
		return grant.Grant{}, grant.ErrNotFound
	}
	return *found, nil
}

func (repo ingestRepository) CreateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.grantSeq++
	g.ID = repo.db.grantSeq
	stored := g
	repo.db.grants[g.ID] = &stored
	return g, nil
}

func (repo ingestRepository) UpdateGrant(ctx context.Context, g grant.Grant) (grant.Grant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.grants[g.ID]
	if !ok {
		return grant.Grant{}, grant.ErrNotFound
	}
	g.Title = existing.Title
	g.PIID = existing.PIID
	g.CreatedAt = existing.CreatedAt
	stored := g
	repo.db.grants[g.ID] = &stored
	return g, nil
}
