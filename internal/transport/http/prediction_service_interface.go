package http

import (
	"context"

	"btcoracle/internal/dataprocessing"
	"btcoracle/internal/predictions"
)

// PredictionServiceInterface defines the service contract the prediction
// handler depends on. Defined at the consumer per Go convention, and to
// keep handler tests free of pipeline wiring.
type PredictionServiceInterface interface {
	ProcessUpload(ctx context.Context, userID string, up dataprocessing.Upload) (*dataprocessing.DerivedBundle, error)
	LatestEstimate(ctx context.Context, userID string) (*predictions.Record, error)
	SampleBundle() *dataprocessing.DerivedBundle
}
