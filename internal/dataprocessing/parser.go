package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Upload is one file delivered by the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// xlsxMagic is the zip local-file-header signature; xlsx files are zip
// containers.
var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// ParseUpload tokenizes the uploaded bytes into an ordered Table, choosing
// the flavor from the filename extension, the declared content type, or the
// file magic, in that order. CSV is the default flavor.
func ParseUpload(up Upload) (*Table, error) {
	if flavor, ok := spreadsheetFlavor(up); ok {
		return parseXLSX(up.Data, flavor)
	}
	return parseCSV(up.Data)
}

// spreadsheetFlavor reports whether the upload should go through excelize
// and under which flavor name. Legacy .xls workbooks are routed there too
// (many are mislabeled xlsx files) but keep their own flavor so a parse
// failure names the format the user actually sent.
func spreadsheetFlavor(up Upload) (string, bool) {
	switch strings.ToLower(filepath.Ext(up.Filename)) {
	case ".xlsx", ".xlsm":
		return "xlsx", true
	case ".xls":
		return "xls", true
	case ".csv", ".txt", ".tsv":
		return "", false
	}
	ct := strings.ToLower(up.ContentType)
	if strings.Contains(ct, "spreadsheetml") || strings.Contains(ct, "ms-excel") {
		return "xlsx", true
	}
	if bytes.HasPrefix(up.Data, xlsxMagic) {
		return "xlsx", true
	}
	return "", false
}

// parseCSV reads delimited text using the first row as the header and
// skipping fully empty rows. Rows may be ragged; cells beyond the header
// width are ignored and missing cells are left absent from the record.
func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Flavor: "csv", Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Flavor: "csv", Err: errors.New("no header row")}
	}
	return buildTable("csv", rows)
}

// parseXLSX reads the first sheet that contains any rows. Excelize returns
// every cell as a string, which is what the normalizer expects.
func parseXLSX(data []byte, flavor string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Flavor: flavor, Err: err}
	}
	defer f.Close()

	var rows [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = sheetRows
			break
		}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Flavor: flavor, Err: errors.New("no sheet with rows")}
	}
	return buildTable(flavor, rows)
}

// buildTable assembles a Table from tokenized rows. The first row is the
// header; a header without any non-empty cells is a parse failure.
func buildTable(flavor string, rows [][]string) (*Table, error) {
	header := make([]string, len(rows[0]))
	var columns []string
	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		header[i] = name
		if name != "" {
			columns = append(columns, name)
		}
	}
	if len(columns) == 0 {
		return nil, &ParseError{Flavor: flavor, Err: fmt.Errorf("header row has no columns")}
	}

	table := &Table{Columns: columns}
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make(RawRecord, len(columns))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			record[name] = row[i]
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
