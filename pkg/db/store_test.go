package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/kamanufred/reBLAST/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *RunStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every new connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := NewRunStore(db)
	require.NoError(t, err)
	return store
}

func sampleRun(id string, created time.Time) Run {
	return Run{
		ID:            id,
		Genome1:       "a.faa",
		Genome2:       "b.faa",
		MolType:       "prot",
		EValue:        0.001,
		MaxTargetSeqs: 5,
		Threads:       2,
		CreatedAt:     created,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	pairs := model.OrthologSet{
		{Genome1ID: "geneA3", Genome2ID: "geneB1"},
		{Genome1ID: "geneA1", Genome2ID: "geneB7"},
	}
	require.NoError(t, store.SaveRun(ctx, sampleRun("run-1", created), pairs))

	run, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, run.PairCount)
	assert.Equal(t, "prot", run.MolType)
	assert.True(t, created.Equal(run.CreatedAt))

	got, err := store.GetOrthologs(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, pairs, got, "report order is kept")
}

func TestSaveRun_EmptySet(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, sampleRun("empty", time.Now()), model.OrthologSet{}))

	got, err := store.GetOrthologs(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveRun_DuplicateID(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, sampleRun("dup", time.Now()), nil))
	assert.Error(t, store.SaveRun(ctx, sampleRun("dup", time.Now()), nil))
}

func TestGetRun_NotFound(t *testing.T) {
	store := newMemoryStore(t)

	_, err := store.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.GetOrthologs(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, sampleRun("old", base), nil))
	require.NoError(t, store.SaveRun(ctx, sampleRun("new", base.Add(time.Hour)), nil))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reblast.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(context.Background(), sampleRun("r", time.Now()), nil))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
