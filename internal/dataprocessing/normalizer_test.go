package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimestamp_DigitCountHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantMillis int64
		wantOK     bool
	}{
		{
			name:       "10 digits treated as unix seconds",
			raw:        "1700000000",
			wantMillis: 1700000000000,
			wantOK:     true,
		},
		{
			name:       "13 digits treated as unix millis",
			raw:        "1700000000000",
			wantMillis: 1700000000000,
			wantOK:     true,
		},
		{
			name:       "9 digits falls through as millis",
			raw:        "170000000",
			wantMillis: 170000000,
			wantOK:     true,
		},
		{
			name:   "absurdly large epoch rejected",
			raw:    "99999999999999999",
			wantOK: false,
		},
		{
			name:   "empty cell",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "not a date at all",
			raw:    "yesterday-ish",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := resolveTimestamp(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantMillis, ts.UnixMilli())
			}
		})
	}
}

func TestResolveTimestamp_DateStrings(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15 09:30:00", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T09:30:00Z", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ts, ok := resolveTimestamp(tt.raw)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(ts), "got %v", ts)
		})
	}
}

func TestNormalize(t *testing.T) {
	schema := Schema{DateColumn: "Date", PriceColumn: "Price"}

	t.Run("drops unparseable rows silently", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{
				{"Date": "2024-01-01", "Price": "100"},
				{"Date": "2024-01-02", "Price": "110"},
				{"Date": "2024-01-03", "Price": "bad"},
				{"Date": "not a date", "Price": "120"},
			},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 2)
		assert.Equal(t, 100.0, series[0].Price)
		assert.Equal(t, 110.0, series[1].Price)
	})

	t.Run("ohlc falls back to price when absent", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{{"Date": "2024-01-01", "Price": "100"}},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 1)
		p := series[0]
		assert.Equal(t, 100.0, p.Open)
		assert.Equal(t, 100.0, p.High)
		assert.Equal(t, 100.0, p.Low)
		assert.Equal(t, 100.0, p.Close)
	})

	t.Run("literal ohlc columns are exact case", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price", "Open", "high"},
			Records: []RawRecord{{
				"Date": "2024-01-01", "Price": "100",
				"Open": "95", "high": "130",
			}},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 1)
		assert.Equal(t, 95.0, series[0].Open)
		// "high" is not "High"; the fuzzy matcher does not apply here.
		assert.Equal(t, 100.0, series[0].High)
	})

	t.Run("thousands separators in prices", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{{"Date": "2024-01-01", "Price": "45,123.50"}},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 1)
		assert.Equal(t, 45123.50, series[0].Price)
	})

	t.Run("non finite prices dropped", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{
				{"Date": "2024-01-01", "Price": "NaN"},
				{"Date": "2024-01-02", "Price": "+Inf"},
			},
		}
		assert.Empty(t, Normalize(table, schema, nil))
	})

	t.Run("input order preserved, no sorting or dedup", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{
				{"Date": "2024-01-03", "Price": "120"},
				{"Date": "2024-01-01", "Price": "100"},
				{"Date": "2024-01-01", "Price": "100"},
			},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 3)
		assert.Equal(t, 120.0, series[0].Price)
		assert.Equal(t, series[1].TimestampMillis, series[2].TimestampMillis)
	})

	t.Run("display label format", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Date", "Price"},
			Records: []RawRecord{{"Date": "2024-01-15 09:30:00", "Price": "100"}},
		}
		series := Normalize(table, schema, nil)
		require.Len(t, series, 1)
		assert.Equal(t, "Jan 15, 09:30 AM", series[0].Date)
	})
}
