package testutil

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool starts a PostgreSQL test container, applies the schema, and
// returns the raw pool. The container is torn down with the test.
//
// Precondition: Docker must be available.
// Postcondition: Returns a connected pool with the schema applied.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}
