package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// paramValuesKey is the single row key; the last-used assignment is global
// host state, not per-client.
const paramValuesKey = "last"

// ParameterValueRepository persists the most recent parameter assignment.
type ParameterValueRepository struct {
	db *pgxpool.Pool
}

// NewParameterValueRepository creates a ParameterValueRepository backed by
// the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewParameterValueRepository(db *pgxpool.Pool) *ParameterValueRepository {
	return &ParameterValueRepository{db: db}
}

// SaveLast replaces the stored assignment.
//
// Precondition: params must be non-nil.
func (r *ParameterValueRepository) SaveLast(ctx context.Context, params map[string]int) error {
	blob, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding parameter values: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO parameter_values (key, params, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET params = $2, updated_at = NOW()`,
		paramValuesKey, blob,
	)
	if err != nil {
		return fmt.Errorf("saving parameter values: %w", err)
	}
	return nil
}

// LoadLast returns the stored assignment, or nil when none has been saved
// yet.
func (r *ParameterValueRepository) LoadLast(ctx context.Context) (map[string]int, error) {
	var blob []byte
	err := r.db.QueryRow(ctx, `
		SELECT params FROM parameter_values WHERE key = $1`,
		paramValuesKey,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying parameter values: %w", err)
	}
	var params map[string]int
	if err := json.Unmarshal(blob, &params); err != nil {
		return nil, fmt.Errorf("decoding parameter values: %w", err)
	}
	return params, nil
}
