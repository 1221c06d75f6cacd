// Package inmemdb provides in-memory repository implementations backed by
// plain maps, used by tests and local development in place of Postgres.
package inmemdb

import (
	"context"
	"sync"

	"github.com/researchops/grantboard/core/grant"
)

type DB struct {
	mutex sync.RWMutex

	departments map[int]*grant.Department
	faculty     map[int]*grant.Faculty
	sponsors    map[int]*grant.Sponsor
	grants      map[int]*grant.Grant

	deptSeq    int
	facultySeq int
	sponsorSeq int
	grantSeq   int
}

func Open() (*DB, error) {
	return &DB{
		departments: make(map[int]*grant.Department),
		faculty:     make(map[int]*grant.Faculty),
		sponsors:    make(map[int]*grant.Sponsor),
		grants:      make(map[int]*grant.Grant),
	}, nil
}

// PingContext satisfies the API's health probe; the store is always up.
func (db *DB) PingContext(ctx context.Context) error {
	return nil
}
