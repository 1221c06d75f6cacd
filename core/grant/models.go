package grant

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/researchops/grantboard/core"
)

// Status is the lifecycle stage of a grant.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusAwarded     Status = "awarded"
	StatusDeclined    Status = "declined"
)

// SponsorType is the category of a funding source.
type SponsorType string

const (
	SponsorFederal    SponsorType = "federal"
	SponsorState      SponsorType = "state"
	SponsorFoundation SponsorType = "foundation"
	SponsorCorporate  SponsorType = "corporate"
	SponsorOther      SponsorType = "other"
)

var (
	AllStatuses = []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusAwarded, StatusDeclined}

	AllSponsorTypes = []SponsorType{SponsorFederal, SponsorState, SponsorFoundation, SponsorCorporate, SponsorOther}
)

func ValidStatus(s string) bool {
	for _, st := range AllStatuses {
		if Status(s) == st {
			return true
		}
	}
	return false
}

func ValidSponsorType(s string) bool {
	for _, st := range AllSponsorTypes {
		if SponsorType(s) == st {
			return true
		}
	}
	return false
}

type Department struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Faculty struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	DepartmentID int    `json:"departmentId" db:"department_id"`
}

type Sponsor struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	SponsorType SponsorType `json:"sponsorType" db:"sponsor_type"`
}

type Grant struct {
	ID           int       `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	SponsorID    int       `json:"sponsorId" db:"sponsor_id"`
	PIID         int       `json:"piId" db:"pi_id"`
	DepartmentID int       `json:"departmentId" db:"department_id"`
	Amount       float64   `json:"amount" db:"amount"`
	Status       Status    `json:"status" db:"status"`
	SubmittedAt  null.Time `json:"submittedAt" db:"submitted_at"`
	AwardedAt    null.Time `json:"awardedAt" db:"awarded_at"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

// GrantWithRelations is a Grant joined with its sponsor, PI and department.
type GrantWithRelations struct {
	Grant
	Sponsor    *Sponsor    `json:"sponsor,omitempty"`
	PI         *Faculty    `json:"pi,omitempty"`
	Department *Department `json:"department,omitempty"`
}

// QueryFilter narrows the grant population. Empty/zero fields are ignored.
// DateFrom/DateTo bound Grant.SubmittedAt.
type QueryFilter struct {
	DepartmentID int
	SponsorID    int
	Status       Status
	DateFrom     time.Time
	DateTo       time.Time
	Search       string // case-insensitive match on title or PI name
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PaginatedGrants is the listing response envelope.
type PaginatedGrants struct {
	Items    []GrantWithRelations `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}
