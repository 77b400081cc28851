package dataprocessing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseUpload_CSV(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantColumns []string
		wantRows    int
		wantErr     bool
	}{
		{
			name:        "header and rows",
			data:        "Date,Price\n2024-01-01,100\n2024-01-02,110\n",
			wantColumns: []string{"Date", "Price"},
			wantRows:    2,
		},
		{
			name:        "skips fully empty rows",
			data:        "Date,Price\n2024-01-01,100\n,\n\n2024-01-02,110\n",
			wantColumns: []string{"Date", "Price"},
			wantRows:    2,
		},
		{
			name:        "header only",
			data:        "Date,Price\n",
			wantColumns: []string{"Date", "Price"},
			wantRows:    0,
		},
		{
			name:        "ragged rows tolerated",
			data:        "Date,Price,Open\n2024-01-01,100\n2024-01-02,110,111,999\n",
			wantColumns: []string{"Date", "Price", "Open"},
			wantRows:    2,
		},
		{
			name:    "empty file",
			data:    "",
			wantErr: true,
		},
		{
			name:    "unbalanced quotes",
			data:    "Date,Price\n\"2024-01-01,100\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseUpload(Upload{Filename: "data.csv", Data: []byte(tt.data)})
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, table.Columns)
			assert.Len(t, table.Records, tt.wantRows)
		})
	}
}

func TestParseUpload_CSVPreservesHeaderCase(t *testing.T) {
	table, err := ParseUpload(Upload{
		Filename: "data.csv",
		Data:     []byte("TIMESTAMP,btc\n2024-01-01,100\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TIMESTAMP", "btc"}, table.Columns)
	assert.Equal(t, "100", table.Records[0]["btc"])
}

func TestParseUpload_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-01-01", 100}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"2024-01-02", 110}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseUpload(Upload{Filename: "data.xlsx", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Price"}, table.Columns)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "2024-01-01", table.Records[0]["Date"])
}

func TestParseUpload_XLSXByMagicWithoutExtension(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-01-01", 100}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseUpload(Upload{Filename: "upload", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
}

func TestParseUpload_XLSXGarbage(t *testing.T) {
	_, err := ParseUpload(Upload{Filename: "data.xlsx", Data: []byte("not a zip")})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "xlsx", parseErr.Flavor)
}

func TestParseUpload_LegacyXLSKeepsItsFlavor(t *testing.T) {
	// Legacy OLE workbooks are not zip containers, so excelize rejects
	// them; the error must name the format the user sent.
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("legacy workbook")...)
	_, err := ParseUpload(Upload{Filename: "data.xls", Data: ole})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "xls", parseErr.Flavor)
}
