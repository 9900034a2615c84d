package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/spellbench/internal/storage/postgres"
	"github.com/cory-johannsen/spellbench/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestDraftRepository_SaveAndGet(t *testing.T) {
	repo := postgres.NewDraftRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("draft")
	require.NoError(t, repo.Save(ctx, name, "spell Fireball level 3: 8d6"))

	d, err := repo.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, d.Name)
	assert.Equal(t, "spell Fireball level 3: 8d6", d.Source)
	assert.False(t, d.UpdatedAt.IsZero())
}

func TestDraftRepository_SaveUpserts(t *testing.T) {
	repo := postgres.NewDraftRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("draft")
	require.NoError(t, repo.Save(ctx, name, "spell A: 1d4"))
	require.NoError(t, repo.Save(ctx, name, "spell A: 2d4"))

	d, err := repo.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "spell A: 2d4", d.Source)

	drafts, err := repo.List(ctx)
	require.NoError(t, err)
	count := 0
	for _, got := range drafts {
		if got.Name == name {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDraftRepository_List_OrderedByName(t *testing.T) {
	repo := postgres.NewDraftRepository(testutil.NewPool(t))
	ctx := context.Background()

	base := uniqueName("draft")
	require.NoError(t, repo.Save(ctx, base+"_b", "spell B: 1d6"))
	require.NoError(t, repo.Save(ctx, base+"_a", "spell A: 1d6"))

	drafts, err := repo.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, d := range drafts {
		names = append(names, d.Name)
	}
	require.Contains(t, names, base+"_a")
	require.Contains(t, names, base+"_b")
	assert.IsIncreasing(t, names)
}

func TestDraftRepository_GetMissing(t *testing.T) {
	repo := postgres.NewDraftRepository(testutil.NewPool(t))

	_, err := repo.Get(context.Background(), uniqueName("missing"))
	assert.ErrorIs(t, err, postgres.ErrDraftNotFound)
}

func TestDraftRepository_Delete(t *testing.T) {
	repo := postgres.NewDraftRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("draft")
	require.NoError(t, repo.Save(ctx, name, "spell A: 1d4"))
	require.NoError(t, repo.Delete(ctx, name))

	_, err := repo.Get(ctx, name)
	assert.ErrorIs(t, err, postgres.ErrDraftNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, name), postgres.ErrDraftNotFound)
}
