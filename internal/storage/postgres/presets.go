package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/spellbench/internal/host"
)

// ErrPresetNotFound is returned when a preset lookup yields no results.
var ErrPresetNotFound = errors.New("preset not found")

// PresetRepository persists named parameter snapshots as JSONB.
type PresetRepository struct {
	db *pgxpool.Pool
}

// NewPresetRepository creates a PresetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPresetRepository(db *pgxpool.Pool) *PresetRepository {
	return &PresetRepository{db: db}
}

// Save upserts a preset by name.
//
// Precondition: name must be non-empty; params must be non-nil.
func (r *PresetRepository) Save(ctx context.Context, name string, params map[string]int) error {
	blob, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding preset params: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO presets (name, params, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET params = $2, updated_at = NOW()`,
		name, blob,
	)
	if err != nil {
		return fmt.Errorf("saving preset: %w", err)
	}
	return nil
}

// List returns all presets ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PresetRepository) List(ctx context.Context) ([]host.Preset, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, params, updated_at
		FROM presets ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	presets := make([]host.Preset, 0)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Get retrieves a preset by name.
//
// Postcondition: Returns the preset or ErrPresetNotFound.
func (r *PresetRepository) Get(ctx context.Context, name string) (host.Preset, error) {
	p, err := scanPreset(r.db.QueryRow(ctx, `
		SELECT name, params, updated_at
		FROM presets WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return host.Preset{}, ErrPresetNotFound
		}
		return host.Preset{}, err
	}
	return p, nil
}

// scanPreset decodes one preset row, including its JSONB params column.
func scanPreset(row pgx.Row) (host.Preset, error) {
	var (
		p    host.Preset
		blob []byte
	)
	if err := row.Scan(&p.Name, &blob, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return host.Preset{}, err
		}
		return host.Preset{}, fmt.Errorf("scanning preset row: %w", err)
	}
	if err := json.Unmarshal(blob, &p.Params); err != nil {
		return host.Preset{}, fmt.Errorf("decoding preset params: %w", err)
	}
	return p, nil
}
