package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

func TestAnalysisStore_SaveAndGet(t *testing.T) {
	store := NewAnalysisStore()
	ctx := context.Background()

	result := &domain.AnalysisResult{
		ID:      "r1",
		Summary: "Track inspection summary",
	}
	require.NoError(t, store.Save(ctx, result))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Track inspection summary", got.Summary)

	// The stored copy is independent of later mutation
	result.Summary = "mutated"
	got, err = store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Track inspection summary", got.Summary)
}

func TestAnalysisStore_GetMissing(t *testing.T) {
	store := NewAnalysisStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisStore_ListNewestFirst(t *testing.T) {
	store := NewAnalysisStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.Save(ctx, &domain.AnalysisResult{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	results, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "new", results[0].ID)
	assert.Equal(t, "old", results[2].ID)
}

func TestAnalysisStore_Delete(t *testing.T) {
	store := NewAnalysisStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.AnalysisResult{ID: "r1"}))
	require.NoError(t, store.Delete(ctx, "r1"))

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing ID is fine
	assert.NoError(t, store.Delete(ctx, "missing"))
}
