package services

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcoracle/internal/dataprocessing"
	"btcoracle/internal/predictions"
)

type memoryStore struct {
	mu      sync.Mutex
	records []predictions.Record
	saveErr error
}

func (m *memoryStore) Save(_ context.Context, rec predictions.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryStore) Latest(_ context.Context, userID string) (*predictions.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, predictions.ErrNoPrediction
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func newTestService(store predictions.Store) *PredictionService {
	deriver := dataprocessing.NewDeriver(rand.New(rand.NewSource(7)))
	pipeline := dataprocessing.NewPipeline(deriver, slog.Default())
	return NewPredictionService(pipeline, store, nil, slog.Default())
}

func csvUpload(data string) dataprocessing.Upload {
	return dataprocessing.Upload{
		Filename:    "prices.csv",
		ContentType: "text/csv",
		Data:        []byte(data),
	}
}

func TestProcessUpload_ReturnsBundleAndPersists(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)

	bundle, err := svc.ProcessUpload(context.Background(), "user-1",
		csvUpload("Date,Price\n2024-01-01,42000\n2024-01-02,43000\n"))
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Len(t, bundle.PriceData, 2)

	require.Eventually(t, func() bool {
		return store.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	rec, err := svc.LatestEstimate(context.Background(), "user-1")
	require.NoError(t, err)
	est := bundle.Estimate()
	assert.Equal(t, est.PredictedPrice, rec.PredictedPrice)
	assert.Equal(t, est.ActualPrice, rec.ActualPrice)
	assert.Equal(t, est.Confidence, rec.Confidence)
	assert.Equal(t, est.Accuracy, rec.Accuracy)
}

func TestProcessUpload_PipelineErrorSkipsPersistence(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)

	_, err := svc.ProcessUpload(context.Background(), "user-1",
		csvUpload("Foo,Bar\n1,2\n"))
	require.Error(t, err)

	var schemaErr *dataprocessing.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.Zero(t, store.count())
}

func TestProcessUpload_StoreFailureDoesNotAffectResult(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("disk full")}
	svc := newTestService(store)

	bundle, err := svc.ProcessUpload(context.Background(), "user-1",
		csvUpload("Date,Price\n2024-01-01,42000\n"))
	require.NoError(t, err)
	assert.NotNil(t, bundle)
}

func TestLatestEstimate_NoPrediction(t *testing.T) {
	svc := newTestService(&memoryStore{})

	_, err := svc.LatestEstimate(context.Background(), "missing-user")
	assert.ErrorIs(t, err, ErrNoPredictionFound)
}

func TestSampleBundle(t *testing.T) {
	svc := newTestService(&memoryStore{})

	bundle := svc.SampleBundle()
	require.NotNil(t, bundle)
	assert.Len(t, bundle.PriceData, 31)
	assert.NotEmpty(t, bundle.CandlestickData)
}
