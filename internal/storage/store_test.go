package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

func sampleRun(t *testing.T, createdAt time.Time) RunRecord {
	t.Helper()
	cfg := freqtrack.DefaultConfig()
	cfg.NumSamples = 40
	cfg.ThetaPoints = 60

	res, err := freqtrack.Estimate(context.Background(), cfg)
	require.NoError(t, err)
	run, err := NewRunRecord(res, createdAt)
	require.NoError(t, err)
	return run
}

func TestNewRunRecord(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	run := sampleRun(t, created)

	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, run.CreatedAt.Location())
	assert.True(t, run.CreatedAt.Equal(created))
	assert.Len(t, run.ThetaHistory, 40)
	assert.Len(t, run.MSE, 60)
	assert.Len(t, run.MSEFirst, 60)
	assert.Equal(t, run.MSE[run.CaptureIndex], run.InitialMSE)
	assert.Equal(t, CurrentSchemaVersion, run.SchemaVersion)

	_, err = NewRunRecord(nil, created)
	assert.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	run := sampleRun(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	data, err := EncodeRun(run)
	require.NoError(t, err)
	got, err := DecodeRun(data)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodecVersionMismatch(t *testing.T) {
	run := sampleRun(t, time.Now())
	run.SchemaVersion = CurrentSchemaVersion + 1

	data, err := EncodeRun(run)
	require.NoError(t, err)
	_, err = DecodeRun(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "freqtrack.db"))
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := sampleRun(t, base.Add(time.Minute))
	second := sampleRun(t, base)

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := store.GetRun(ctx, first.ID)
			require.Error(t, err, "store used before Init")

			require.NoError(t, store.Init(ctx))
			require.NoError(t, store.SaveRun(ctx, first))
			require.NoError(t, store.SaveRun(ctx, second))

			got, ok, err := store.GetRun(ctx, first.ID)
			require.NoError(t, err)
			require.True(t, ok)
			if diff := cmp.Diff(first, got); diff != "" {
				t.Fatalf("GetRun mismatch (-want +got):\n%s", diff)
			}

			_, ok, err = store.GetRun(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			infos, err := store.ListRuns(ctx)
			require.NoError(t, err)
			want := []RunInfo{second.Info(), first.Info()}
			if diff := cmp.Diff(want, infos); diff != "" {
				t.Fatalf("ListRuns mismatch (-want +got):\n%s", diff)
			}

			updated := first
			updated.FinalHz = 1234
			require.NoError(t, store.SaveRun(ctx, updated))
			got, _, err = store.GetRun(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, 1234.0, got.FinalHz)

			require.NoError(t, store.DeleteRun(ctx, first.ID))
			infos, err = store.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 1)
			assert.Equal(t, second.ID, infos[0].ID)

			assert.Error(t, store.SaveRun(ctx, RunRecord{}))
		})
	}
}

func TestMemoryStoreCopiesSlices(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	run := sampleRun(t, time.Now())
	require.NoError(t, store.SaveRun(ctx, run))
	run.ThetaHistory[0] = -1

	got, _, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, got.ThetaHistory[0])
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	run := sampleRun(t, time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC))

	store := NewSQLiteStore(path)
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.SaveRun(ctx, run))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(path)
	require.NoError(t, reopened.Init(ctx))
	t.Cleanup(func() { _ = reopened.Close() })

	got, ok, err := reopened.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("mismatch after reopen (-want +got):\n%s", diff)
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	require.NoError(t, CloseIfSupported(store))

	store, err = NewStore("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, CloseIfSupported(store))

	_, err = NewStore("unknown", "")
	assert.Error(t, err)
}
