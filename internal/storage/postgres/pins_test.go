package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/spellbench/internal/storage/postgres"
	"github.com/cory-johannsen/spellbench/internal/testutil"
)

func TestPinRepository_PinUnpinList(t *testing.T) {
	repo := postgres.NewPinRepository(testutil.NewPool(t))
	ctx := context.Background()

	a := uniqueName("pin_a")
	b := uniqueName("pin_b")
	require.NoError(t, repo.Pin(ctx, a))
	require.NoError(t, repo.Pin(ctx, b))

	pins, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, pins, a)
	assert.Contains(t, pins, b)
	assert.IsIncreasing(t, pins)

	require.NoError(t, repo.Unpin(ctx, a))
	pins, err = repo.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, pins, a)
	assert.Contains(t, pins, b)
}

func TestPinRepository_PinTwiceIsNoop(t *testing.T) {
	repo := postgres.NewPinRepository(testutil.NewPool(t))
	ctx := context.Background()

	spell := uniqueName("pin")
	require.NoError(t, repo.Pin(ctx, spell))
	require.NoError(t, repo.Pin(ctx, spell))

	pins, err := repo.List(ctx)
	require.NoError(t, err)
	count := 0
	for _, p := range pins {
		if p == spell {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPinRepository_UnpinAbsentIsNoop(t *testing.T) {
	repo := postgres.NewPinRepository(testutil.NewPool(t))
	assert.NoError(t, repo.Unpin(context.Background(), uniqueName("absent")))
}

func TestSeenBundleRepository_MarkAndList(t *testing.T) {
	repo := postgres.NewSeenBundleRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("bundle")
	require.NoError(t, repo.MarkSeen(ctx, name))
	require.NoError(t, repo.MarkSeen(ctx, name))

	seen, err := repo.List(ctx)
	require.NoError(t, err)
	count := 0
	for _, s := range seen {
		if s == name {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestParameterValueRepository_RoundTrip(t *testing.T) {
	repo := postgres.NewParameterValueRepository(testutil.NewPool(t))
	ctx := context.Background()

	got, err := repo.LoadLast(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.SaveLast(ctx, map[string]int{"slot": 3, "mod": 2}))
	got, err = repo.LoadLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"slot": 3, "mod": 2}, got)

	// SaveLast replaces, never merges.
	require.NoError(t, repo.SaveLast(ctx, map[string]int{"level": 7}))
	got, err = repo.LoadLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"level": 7}, got)
}
