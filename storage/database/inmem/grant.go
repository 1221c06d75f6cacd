package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/researchops/grantboard/core/grant"
)

type grantRepository struct {
	db *DB
}

var _ grant.Repository = (*grantRepository)(nil) // interface compliance check

func NewGrantRepository(db *DB) *grantRepository {
	return &grantRepository{db: db}
}

func (repo grantRepository) relations(g grant.Grant) grant.GrantWithRelations {
	gr := grant.GrantWithRelations{Grant: g}
	if s, ok := repo.db.sponsors[g.SponsorID]; ok {
		sponsor := *s
		gr.Sponsor = &sponsor
	}
	if f, ok := repo.db.faculty[g.PIID]; ok {
		pi := *f
		gr.PI = &pi
	}
	if d, ok := repo.db.departments[g.DepartmentID]; ok {
		dept := *d
		gr.Department = &dept
	}
	return gr
}

func (repo grantRepository) matches(g grant.Grant, filter *grant.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.DepartmentID > 0 && g.DepartmentID != filter.DepartmentID {
		return false
	}
	if filter.SponsorID > 0 && g.SponsorID != filter.SponsorID {
		return false
	}
	if filter.Status != "" && g.Status != filter.Status {
		return false
	}
	if !filter.DateFrom.IsZero() && (!g.SubmittedAt.Valid || g.SubmittedAt.Time.Before(filter.DateFrom)) {
		return false
	}
	if !filter.DateTo.IsZero() && (!g.SubmittedAt.Valid || g.SubmittedAt.Time.After(filter.DateTo)) {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var piName string
		if f, ok := repo.db.faculty[g.PIID]; ok {
			piName = strings.ToLower(f.Name)
		}
		if !strings.Contains(strings.ToLower(g.Title), search) && !strings.Contains(piName, search) {
			return false
		}
	}
	return true
}

func (repo grantRepository) QueryGrants(ctx context.Context, filter *grant.QueryFilter, page grant.Page) ([]grant.GrantWithRelations, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []grant.Grant
	for _, g := range repo.db.grants {
		if repo.matches(*g, filter) {
			matched = append(matched, *g)
		}
	}
	// submitted_at DESC, nulls last, id DESC for stability
	sort.Slice(matched, func(i, j int) bool {
		gi, gj := matched[i], matched[j]
		switch {
		case gi.SubmittedAt.Valid != gj.SubmittedAt.Valid:
			return gi.SubmittedAt.Valid
		case gi.SubmittedAt.Valid && !gi.SubmittedAt.Time.Equal(gj.SubmittedAt.Time):
			return gi.SubmittedAt.Time.After(gj.SubmittedAt.Time)
		default:
			return gi.ID > gj.ID
		}
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}

	items := make([]grant.GrantWithRelations, 0, end-start)
	for _, g := range matched[start:end] {
		items = append(items, repo.relations(g))
	}
	return items, total, nil
}

func (repo grantRepository) GetGrantByID(ctx context.Context, id int) (grant.GrantWithRelations, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.grants[id]; ok {
		return repo.relations(*g), nil
	}
	return grant.GrantWithRelations{}, grant.ErrNotFound
}

func (repo grantRepository) QueryDepartments(ctx context.Context) ([]grant.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	depts := make([]grant.Department, 0, len(repo.db.departments))
	for _, d := range repo.db.departments {
		depts = append(depts, *d)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].Name < depts[j].Name })
	return depts, nil
}

func (repo grantRepository) QuerySponsors(ctx context.Context) ([]grant.Sponsor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sponsors := make([]grant.Sponsor, 0, len(repo.db.sponsors))
	for _, s := range repo.db.sponsors {
		sponsors = append(sponsors, *s)
	}
	sort.Slice(sponsors, func(i, j int) bool {
		if sponsors[i].Name != sponsors[j].Name {
			return sponsors[i].Name < sponsors[j].Name
		}
		return sponsors[i].SponsorType < sponsors[j].SponsorType
	})
	return sponsors, nil
}
