package dataprocessing

import (
	"context"
	"log/slog"
)

// Pipeline runs the parse -> infer -> normalize -> derive chain for one
// upload. Each invocation works on its own record sequence and produces
// its own bundle; there is no cross-run state beyond the shared random
// source in the Deriver.
type Pipeline struct {
	deriver *Deriver
	logger  *slog.Logger
}

// NewPipeline creates a pipeline. A nil deriver gets a time-seeded one and
// a nil logger falls back to slog.Default.
func NewPipeline(deriver *Deriver, logger *slog.Logger) *Pipeline {
	if deriver == nil {
		deriver = NewDeriver(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		deriver: deriver,
		logger:  logger.With(slog.String("component", "pipeline")),
	}
}

// Run executes the full chain. It returns ParseError, SchemaError or
// EmptyDatasetError on validation failures; given at least one normalized
// row it always returns a bundle.
func (p *Pipeline) Run(ctx context.Context, up Upload) (*DerivedBundle, error) {
	table, err := ParseUpload(up)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "upload parsed",
		slog.String("filename", up.Filename),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Records)))

	if len(table.Records) == 0 {
		return nil, &EmptyDatasetError{Reason: EmptyReasonNoRows}
	}

	schema, err := InferSchema(table.Columns)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "schema inferred",
		slog.String("date_column", schema.DateColumn),
		slog.String("price_column", schema.PriceColumn))

	series := Normalize(table, schema, p.logger)
	if len(series) == 0 {
		return nil, &EmptyDatasetError{Reason: EmptyReasonNoParsedRows}
	}

	bundle := p.deriver.Derive(series)
	p.logger.InfoContext(ctx, "derivation complete",
		slog.Int("points", len(series)),
		slog.Int("candles", len(bundle.CandlestickData)),
		slog.Float64("actual_price", bundle.ActualPrice))
	return bundle, nil
}

// Sample returns the synthetic starter bundle for dashboards with no
// uploads yet.
func (p *Pipeline) Sample() *DerivedBundle {
	return p.deriver.SampleBundle()
}
