package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysift/storysift-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/storysift/storysift-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testSummary(id string, start time.Time) domain.RunSummary {
	return domain.RunSummary{
		RunID:          id,
		SourcePath:     "/games/example",
		RuntimeVersion: "2021.3.16f1",
		Success:        true,
		FileCount:      12,
		FragmentCount:  340,
		ErrorCount:     1,
		StartTime:      start,
		EndTime:        start.Add(3 * time.Second),
	}
}

func TestStore_SaveAndRecentRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sm := testSummary(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveRun(ctx, sm))
	}

	runs, err := store.RecentRuns(ctx, 10)

	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Newest first.
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "run-0", runs[2].RunID)
	assert.Equal(t, 340, runs[0].FragmentCount)
	assert.Equal(t, "2021.3.16f1", runs[0].RuntimeVersion)
	assert.True(t, runs[0].Success)
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveRun(ctx, testSummary(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := store.RecentRuns(ctx, 2)

	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_SaveRunUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sm := testSummary("run-a", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveRun(ctx, sm))

	sm.FragmentCount = 999
	require.NoError(t, store.SaveRun(ctx, sm))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 999, runs[0].FragmentCount)
}

func TestStore_SaveRunEmptyID(t *testing.T) {
	store := setupTestStore(t)

	err := store.SaveRun(context.Background(), domain.RunSummary{})

	assert.Error(t, err)
}

func TestStore_EmptyHistory(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.RecentRuns(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	store := setupTestStore(t)

	// A second migration pass over the same database must be a no-op.
	require.NoError(t, store.migrate(migrations.FS))
}
