package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeenBundleRepository records which bundles the user has opened.
type SeenBundleRepository struct {
	db *pgxpool.Pool
}

// NewSeenBundleRepository creates a SeenBundleRepository backed by the given
// pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSeenBundleRepository(db *pgxpool.Pool) *SeenBundleRepository {
	return &SeenBundleRepository{db: db}
}

// MarkSeen records that the named bundle has been opened. Marking twice is a
// no-op; the first-seen timestamp is kept.
func (r *SeenBundleRepository) MarkSeen(ctx context.Context, bundle string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO seen_bundles (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING`,
		bundle,
	)
	if err != nil {
		return fmt.Errorf("marking bundle seen: %w", err)
	}
	return nil
}

// List returns all seen bundle names ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SeenBundleRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM seen_bundles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing seen bundles: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning seen bundle row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
