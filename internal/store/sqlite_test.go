package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/demography-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_MigrateTwice(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

// --- Observations ---

func TestSQLite_AppendObservations(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.AppendObservations(ctx, []model.Observation{
		{Year: 2015, State: "6", AgeGroup: "2", Race: "1", Sex: "2", Hisp: "1", Pop: 700},
		{Year: 2014, State: "5", AgeGroup: "1", Race: "2", Sex: "1", Hisp: "1", Pop: 500},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	obs, err := st.Observations(ctx)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, model.Observation{Year: 2014, State: "5", AgeGroup: "1", Race: "2", Sex: "1", Hisp: "1", Pop: 500}, obs[0])
	assert.Equal(t, 2015, obs[1].Year)
}

func TestSQLite_AppendObservations_AppendsOnRerun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	batch := []model.Observation{{Year: 2014, State: "5", AgeGroup: "1", Race: "2", Sex: "1", Hisp: "1", Pop: 500}}
	_, err := st.AppendObservations(ctx, batch)
	require.NoError(t, err)
	_, err = st.AppendObservations(ctx, batch)
	require.NoError(t, err)

	obs, err := st.Observations(ctx)
	require.NoError(t, err)
	assert.Len(t, obs, 2)
}

func TestSQLite_AppendObservations_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.AppendObservations(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// --- Categories ---

func TestSQLite_ReplaceCategories_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []model.CategoryEntry{
		{Category: model.CategorySex, Code: 2, Label: "Female"},
		{Category: model.CategorySex, Code: 1, Label: "Male"},
		{Category: model.CategoryState, Code: 5, Label: "California"},
	}

	require.NoError(t, st.ReplaceCategories(ctx, entries))
	first, err := st.Categories(ctx)
	require.NoError(t, err)

	require.NoError(t, st.ReplaceCategories(ctx, entries))
	second, err := st.Categories(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []model.CategoryEntry{
		{Category: model.CategorySex, Code: 1, Label: "Male"},
		{Category: model.CategorySex, Code: 2, Label: "Female"},
		{Category: model.CategoryState, Code: 5, Label: "California"},
	}, second)
}

func TestSQLite_ReplaceCategories_DuplicateRollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.ReplaceCategories(ctx, []model.CategoryEntry{
		{Category: model.CategoryHisp, Code: 1, Label: "Non-Hispanic"},
	}))

	err := st.ReplaceCategories(ctx, []model.CategoryEntry{
		{Category: model.CategoryHisp, Code: 2, Label: "Hispanic"},
		{Category: model.CategoryHisp, Code: 2, Label: "Hispanic again"},
	})
	require.Error(t, err)

	got, err := st.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryEntry{{Category: model.CategoryHisp, Code: 1, Label: "Non-Hispanic"}}, got)
}

// --- Load log ---

func TestSQLite_LoadLog_Lifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	okID, err := st.StartLoad(ctx, 2014, "2016/pep/charagegroups", t0)
	require.NoError(t, err)
	require.NoError(t, st.CompleteLoad(ctx, okID, 52, t0.Add(time.Second)))

	badID, err := st.StartLoad(ctx, 2015, "2016/pep/charagegroups", t0.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, st.FailLoad(ctx, badID, "extraction error: status 404", t0.Add(2*time.Minute)))

	all, err := st.ListLoads(ctx, LoadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first.
	assert.Equal(t, badID, all[0].ID)
	assert.Equal(t, model.LoadStatusFailed, all[0].Status)
	assert.Equal(t, "extraction error: status 404", all[0].Error)

	assert.Equal(t, okID, all[1].ID)
	assert.Equal(t, model.LoadStatusComplete, all[1].Status)
	assert.Equal(t, int64(52), all[1].Rows)
	assert.WithinDuration(t, t0, all[1].StartedAt, time.Millisecond)
	require.NotNil(t, all[1].CompletedAt)
	assert.WithinDuration(t, t0.Add(time.Second), *all[1].CompletedAt, time.Millisecond)

	failed, err := st.ListLoads(ctx, LoadFilter{Status: model.LoadStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 2015, failed[0].Year)

	byYear, err := st.ListLoads(ctx, LoadFilter{Year: 2014, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, okID, byYear[0].ID)
}

func TestSQLite_ListLoads_Since(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := st.StartLoad(ctx, 2013, "2016/pep/charagegroups", t0.Add(-48*time.Hour))
	require.NoError(t, err)
	recentID, err := st.StartLoad(ctx, 2014, "2016/pep/charagegroups", t0)
	require.NoError(t, err)

	entries, err := st.ListLoads(ctx, LoadFilter{Since: t0.Add(-24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, recentID, entries[0].ID)

	// Bound is inclusive and zone-independent.
	entries, err = st.ListLoads(ctx, LoadFilter{Since: t0.In(time.FixedZone("EST", -5*3600))})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, recentID, entries[0].ID)
}

func TestSQLite_LoadLog_RunningHasNoCompletion(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.StartLoad(ctx, 2019, "2019/pep/charagegroups", time.Now())
	require.NoError(t, err)

	entries, err := st.ListLoads(ctx, LoadFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.LoadStatusRunning, entries[0].Status)
	assert.Nil(t, entries[0].CompletedAt)
	assert.Empty(t, entries[0].Error)
}

func TestSQLite_CompleteLoad_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteLoad(context.Background(), "missing", 1, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
