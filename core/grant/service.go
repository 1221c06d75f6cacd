package grant

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("grant not found")
)

type (
	Repository interface {
		// QueryGrants applies AND on the available QueryFilter fields and
		// returns one page ordered by submitted_at DESC (nulls last),
		// along with the unpaginated total.
		QueryGrants(ctx context.Context, filter *QueryFilter, page Page) ([]GrantWithRelations, int, error)
		GetGrantByID(ctx context.Context, id int) (GrantWithRelations, error)
		QueryDepartments(ctx context.Context) ([]Department, error)
		QuerySponsors(ctx context.Context) ([]Sponsor, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) List(ctx context.Context, filter *QueryFilter, page Page) (PaginatedGrants, error) {
	if filter != nil {
		filter.Clean()
	}
	items, total, err := svc.repo.QueryGrants(ctx, filter, page)
	if err != nil {
		return PaginatedGrants{}, err
	}
	if items == nil {
		items = []GrantWithRelations{}
	}
	return PaginatedGrants{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (GrantWithRelations, error) {
	return svc.repo.GetGrantByID(ctx, id)
}

func (svc *Service) Departments(ctx context.Context) ([]Department, error) {
	depts, err := svc.repo.QueryDepartments(ctx)
	if depts == nil {
		depts = []Department{}
	}
	return depts, err
}

func (svc *Service) Sponsors(ctx context.Context) ([]Sponsor, error) {
	sponsors, err := svc.repo.QuerySponsors(ctx)
	if sponsors == nil {
		sponsors = []Sponsor{}
	}
	return sponsors, err
}
