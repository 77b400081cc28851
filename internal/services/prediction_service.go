package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"btcoracle/internal/dataprocessing"
	"btcoracle/internal/infrastructure"
	"btcoracle/internal/predictions"
)

// ErrNoPredictionFound is returned when a user has no stored estimate yet.
var ErrNoPredictionFound = errors.New("no prediction found for user")

// defaultPersistTimeout bounds the detached persistence write.
const defaultPersistTimeout = 10 * time.Second

// PredictionService orchestrates the ingestion pipeline and the
// best-effort persistence of the resulting point estimate.
type PredictionService struct {
	pipeline       *dataprocessing.Pipeline
	store          predictions.Store
	metrics        *infrastructure.Metrics
	logger         *slog.Logger
	persistTimeout time.Duration
}

// NewPredictionService creates the service. metrics may be nil.
func NewPredictionService(pipeline *dataprocessing.Pipeline, store predictions.Store, metrics *infrastructure.Metrics, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		pipeline:       pipeline,
		store:          store,
		metrics:        metrics,
		logger:         logger.With(slog.String("component", "prediction_service")),
		persistTimeout: defaultPersistTimeout,
	}
}

// ProcessUpload runs the pipeline for one upload and, on success, persists
// the point estimate for the user in the background. Persistence failures
// are logged and never surfaced: the derived views are returned to the
// caller regardless of storage outcome.
func (s *PredictionService) ProcessUpload(ctx context.Context, userID string, up dataprocessing.Upload) (*dataprocessing.DerivedBundle, error) {
	bundle, err := s.pipeline.Run(ctx, up)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	s.recordOutcome(nil)
	if s.metrics != nil {
		s.metrics.RecordDatasetRows(len(bundle.PriceData))
	}

	go s.persistEstimate(userID, bundle.Estimate())

	return bundle, nil
}

// persistEstimate writes the estimate with its own timeout context,
// detached from the request lifecycle.
func (s *PredictionService) persistEstimate(userID string, est dataprocessing.PointEstimate) {
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	rec := predictions.Record{
		UserID:         userID,
		PredictedPrice: est.PredictedPrice,
		ActualPrice:    est.ActualPrice,
		Confidence:     est.Confidence,
		Accuracy:       est.Accuracy,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Error("failed to persist prediction",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Info("prediction persisted",
		slog.String("user_id", userID),
		slog.Float64("predicted_price", est.PredictedPrice))
}

// LatestEstimate returns the most recently stored estimate for the user.
func (s *PredictionService) LatestEstimate(ctx context.Context, userID string) (*predictions.Record, error) {
	rec, err := s.store.Latest(ctx, userID)
	if errors.Is(err, predictions.ErrNoPrediction) {
		return nil, ErrNoPredictionFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// SampleBundle returns the synthetic starter dataset for dashboards
// without an upload yet.
func (s *PredictionService) SampleBundle() *dataprocessing.DerivedBundle {
	return s.pipeline.Sample()
}

func (s *PredictionService) recordOutcome(err error) {
	if s.metrics == nil {
		return
	}

	var parseErr *dataprocessing.ParseError
	var schemaErr *dataprocessing.SchemaError
	var emptyErr *dataprocessing.EmptyDatasetError
	switch {
	case err == nil:
		s.metrics.RecordUpload("accepted")
	case errors.As(err, &parseErr):
		s.metrics.RecordUpload("parse_error")
	case errors.As(err, &schemaErr):
		s.metrics.RecordUpload("schema_error")
	case errors.As(err, &emptyErr):
		s.metrics.RecordUpload("empty_dataset")
	default:
		s.metrics.RecordUpload("error")
	}
}
