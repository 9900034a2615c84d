package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/spellbench/internal/storage/postgres"
	"github.com/cory-johannsen/spellbench/internal/testutil"
)

func TestPresetRepository_SaveAndGet(t *testing.T) {
	repo := postgres.NewPresetRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("preset")
	params := map[string]int{"slot": 5, "mod": 4, "level": 9}
	require.NoError(t, repo.Save(ctx, name, params))

	p, err := repo.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)
	assert.Equal(t, params, p.Params)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestPresetRepository_SaveUpserts(t *testing.T) {
	repo := postgres.NewPresetRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("preset")
	require.NoError(t, repo.Save(ctx, name, map[string]int{"slot": 1}))
	require.NoError(t, repo.Save(ctx, name, map[string]int{"slot": 9}))

	p, err := repo.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"slot": 9}, p.Params)
}

func TestPresetRepository_NegativeValues(t *testing.T) {
	repo := postgres.NewPresetRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("preset")
	require.NoError(t, repo.Save(ctx, name, map[string]int{"mod": -5}))

	p, err := repo.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, -5, p.Params["mod"])
}

func TestPresetRepository_GetMissing(t *testing.T) {
	repo := postgres.NewPresetRepository(testutil.NewPool(t))

	_, err := repo.Get(context.Background(), uniqueName("missing"))
	assert.ErrorIs(t, err, postgres.ErrPresetNotFound)
}

func TestPresetRepository_List(t *testing.T) {
	repo := postgres.NewPresetRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("preset")
	require.NoError(t, repo.Save(ctx, name, map[string]int{"slot": 3}))

	presets, err := repo.List(ctx)
	require.NoError(t, err)
	found := false
	for _, p := range presets {
		if p.Name == name {
			found = true
			assert.Equal(t, map[string]int{"slot": 3}, p.Params)
		}
	}
	assert.True(t, found)
}
