package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/spellbench/internal/host"
)

// ErrDraftNotFound is returned when a draft lookup yields no results.
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository persists named spell-collection drafts.
type DraftRepository struct {
	db *pgxpool.Pool
}

// NewDraftRepository creates a DraftRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewDraftRepository(db *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save upserts a draft by name.
//
// Precondition: name must be non-empty.
// Postcondition: A draft row with the given name and source exists.
func (r *DraftRepository) Save(ctx context.Context, name, source string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO drafts (name, source, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET source = $2, updated_at = NOW()`,
		name, source,
	)
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// List returns all drafts ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *DraftRepository) List(ctx context.Context) ([]host.Draft, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, source, updated_at
		FROM drafts ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]host.Draft, 0)
	for rows.Next() {
		var d host.Draft
		if err := rows.Scan(&d.Name, &d.Source, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning draft row: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// Get retrieves a draft by name.
//
// Postcondition: Returns the draft or ErrDraftNotFound.
func (r *DraftRepository) Get(ctx context.Context, name string) (host.Draft, error) {
	var d host.Draft
	err := r.db.QueryRow(ctx, `
		SELECT name, source, updated_at
		FROM drafts WHERE name = $1`,
		name,
	).Scan(&d.Name, &d.Source, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return host.Draft{}, ErrDraftNotFound
		}
		return host.Draft{}, fmt.Errorf("querying draft: %w", err)
	}
	return d, nil
}

// Delete removes a draft by name.
//
// Postcondition: Returns nil on success, ErrDraftNotFound if no row deleted.
func (r *DraftRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}
