package predictions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "predictions.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec := Record{
		UserID:         "user-1",
		PredictedPrice: 66123.45,
		ActualPrice:    65000,
		Confidence:     84,
		Accuracy:       80.5,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Latest(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, rec.PredictedPrice, got.PredictedPrice)
	assert.Equal(t, rec.ActualPrice, got.ActualPrice)
	assert.Equal(t, rec.Confidence, got.Confidence)
	assert.Equal(t, rec.Accuracy, got.Accuracy)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
}

func TestSQLiteStore_LatestPicksNewestRow(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, Record{
			UserID:         "user-1",
			PredictedPrice: float64(100 + i),
			ActualPrice:    100,
			Confidence:     80,
			Accuracy:       78,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := store.Latest(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 102.0, got.PredictedPrice)
}

func TestSQLiteStore_LatestUnknownUser(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Latest(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoPrediction)
}

func TestSQLiteStore_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Save(ctx, Record{UserID: "a", PredictedPrice: 1, ActualPrice: 1, Confidence: 80, Accuracy: 78}))
	require.NoError(t, store.Save(ctx, Record{UserID: "b", PredictedPrice: 2, ActualPrice: 2, Confidence: 80, Accuracy: 78}))

	got, err := store.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.PredictedPrice)
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	var store Store = NoopStore{}

	assert.NoError(t, store.Save(ctx, Record{UserID: "x"}))
	_, err := store.Latest(ctx, "x")
	assert.ErrorIs(t, err, ErrNoPrediction)
	assert.NoError(t, store.Close())
}
