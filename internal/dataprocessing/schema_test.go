package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchema(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		wantDate  string
		wantPrice string
		wantErr   []string
	}{
		{
			name:      "plain date and price",
			columns:   []string{"Date", "Price"},
			wantDate:  "Date",
			wantPrice: "Price",
		},
		{
			name:      "timestamp and close substrings",
			columns:   []string{"Timestamp", "Close"},
			wantDate:  "Timestamp",
			wantPrice: "Close",
		},
		{
			name:      "dt and btc exact matches",
			columns:   []string{"dt", "btc"},
			wantDate:  "dt",
			wantPrice: "btc",
		},
		{
			name:      "case insensitive, original case preserved",
			columns:   []string{"TRADE_DATE", "ClosePrice"},
			wantDate:  "TRADE_DATE",
			wantPrice: "ClosePrice",
		},
		{
			name:      "first match by column order wins",
			columns:   []string{"CreatedTime", "Date", "Close", "Price"},
			wantDate:  "CreatedTime",
			wantPrice: "Close",
		},
		{
			name:    "value is deliberately not a price match",
			columns: []string{"Foo", "Value"},
			wantErr: []string{"date", "price"},
		},
		{
			name:    "missing price only",
			columns: []string{"Date", "Volume"},
			wantErr: []string{"price"},
		},
		{
			name:    "missing date only",
			columns: []string{"Id", "Price"},
			wantErr: []string{"date"},
		},
		{
			name:    "dt must be exact, not substring",
			columns: []string{"width", "Price"},
			wantErr: []string{"date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := InferSchema(tt.columns)
			if tt.wantErr != nil {
				var schemaErr *SchemaError
				require.ErrorAs(t, err, &schemaErr)
				assert.Equal(t, tt.wantErr, schemaErr.Missing)
				assert.Contains(t, schemaErr.Error(), "missing required columns")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, schema.DateColumn)
			assert.Equal(t, tt.wantPrice, schema.PriceColumn)
		})
	}
}
