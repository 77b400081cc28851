package dataprocessing

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// displayLabelFormat renders the chart axis label (month abbreviation,
// day, hour, minute). The label is derived; the epoch-millisecond
// timestamp stays authoritative.
const displayLabelFormat = "Jan 2, 03:04 PM"

// maxEpochMillis bounds accepted numeric timestamps to representable
// calendar dates (±100,000,000 days around the epoch).
const maxEpochMillis = int64(8.64e15)

// dateLayouts are tried in order for free-form date strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
}

// Literal OHLC column names read from each record. These are exact-case
// lookups, not subject to the inferencer's fuzzy matching.
var ohlcColumns = [4]string{"Open", "High", "Low", "Close"}

// Normalize converts raw records into the canonical series, in input
// order. Rows whose date or price cannot be resolved are dropped silently;
// the caller escalates to EmptyDatasetError only when nothing survives.
// The series is not re-sorted by timestamp and timestamps are not deduped.
func Normalize(table *Table, schema Schema, logger *slog.Logger) []CanonicalPoint {
	if logger == nil {
		logger = slog.Default()
	}

	series := make([]CanonicalPoint, 0, len(table.Records))
	dropped := 0
	for _, record := range table.Records {
		ts, ok := resolveTimestamp(record[schema.DateColumn])
		if !ok {
			dropped++
			continue
		}
		price, ok := parsePrice(record[schema.PriceColumn])
		if !ok {
			dropped++
			continue
		}

		point := CanonicalPoint{
			Date:            ts.Format(displayLabelFormat),
			TimestampMillis: ts.UnixMilli(),
			Price:           price,
		}
		ohlc := [4]*float64{&point.Open, &point.High, &point.Low, &point.Close}
		for i, col := range ohlcColumns {
			if v, ok := parsePrice(record[col]); ok {
				*ohlc[i] = v
			} else {
				*ohlc[i] = price
			}
		}
		series = append(series, point)
	}

	if dropped > 0 {
		logger.Warn("dropped rows during normalization",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(series)))
	}
	return series
}

// resolveTimestamp turns a raw date cell into a time. Numeric values are
// disambiguated by decimal digit count: exactly 10 digits means Unix
// seconds, anything else is taken as Unix milliseconds. This is a
// heuristic, not format detection; epoch values in other scales are not
// handled. Non-numeric values are parsed as free-form date strings.
func resolveTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if millis, ok := epochMillis(s); ok {
		if millis > maxEpochMillis || millis < -maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(millis).UTC(), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// epochMillis applies the digit-count heuristic to a fully numeric value.
func epochMillis(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Tolerate fractional epochs such as "1700000000.5".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		v = int64(f)
	}

	if digitCount(s) == 10 {
		return v * 1000, true
	}
	return v, true
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '.' {
			break
		}
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// parsePrice parses a cell as a finite float, tolerating thousands
// separators.
func parsePrice(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
