package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PinRepository persists the set of pinned spell names.
type PinRepository struct {
	db *pgxpool.Pool
}

// NewPinRepository creates a PinRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPinRepository(db *pgxpool.Pool) *PinRepository {
	return &PinRepository{db: db}
}

// Pin adds a spell name to the pinned set. Pinning twice is a no-op.
func (r *PinRepository) Pin(ctx context.Context, spell string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pins (spell) VALUES ($1)
		ON CONFLICT (spell) DO NOTHING`,
		spell,
	)
	if err != nil {
		return fmt.Errorf("pinning spell: %w", err)
	}
	return nil
}

// Unpin removes a spell name from the pinned set. Unpinning an absent spell
// is a no-op.
func (r *PinRepository) Unpin(ctx context.Context, spell string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM pins WHERE spell = $1`, spell)
	if err != nil {
		return fmt.Errorf("unpinning spell: %w", err)
	}
	return nil
}

// List returns all pinned spell names ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PinRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT spell FROM pins ORDER BY spell ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing pins: %w", err)
	}
	defer rows.Close()

	pins := make([]string, 0)
	for rows.Next() {
		var spell string
		if err := rows.Scan(&spell); err != nil {
			return nil, fmt.Errorf("scanning pin row: %w", err)
		}
		pins = append(pins, spell)
	}
	return pins, rows.Err()
}
