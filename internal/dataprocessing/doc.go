// Package dataprocessing implements the ingestion pipeline that turns an
// uploaded tabular price-history file into the derived views consumed by
// the dashboard.
//
// The pipeline runs in four stages, in dependency order:
//
//  1. Row Parser: tokenizes the raw bytes (CSV or xlsx) into ordered,
//     loosely typed records keyed by the source header names.
//  2. Schema Inferencer: locates the timestamp and price columns from the
//     header names using case-insensitive substring heuristics.
//  3. Record Normalizer: converts each record into a canonical, timestamped
//     OHLC point, resolving ambiguous date encodings and dropping rows with
//     unparseable dates or prices.
//  4. Derivation Engine: computes the price series, a synthetic
//     actual-vs-predicted series, trailing moving averages, a candlestick
//     window, and a single forward point estimate.
//
// Row-level failures are tolerated silently; only wholesale data loss is an
// error (EmptyDatasetError). Parser and inferencer failures abort the run
// with ParseError and SchemaError respectively. Given a non-empty canonical
// series, derivation never fails.
//
// Note that the "prediction" outputs are a bounded random perturbation of
// the input prices, not a model output. The randomness is isolated behind a
// seedable source so tests can pin it down.
package dataprocessing
