package dataprocessing

import (
	"fmt"
	"strings"
)

// ParseError reports that the uploaded content could not be tokenized into
// rows. It aborts the pipeline; the user is asked to re-upload.
type ParseError struct {
	Flavor string // "csv", "xlsx" or "xls"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s content: %v", e.Flavor, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports that the required date or price column could not be
// located by the inferencer heuristics.
type SchemaError struct {
	Missing []string // roles that could not be resolved: "date", "price"
	Columns []string // header names that were inspected
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Reasons for EmptyDatasetError, distinguishing "the file had no data rows"
// from "rows existed but none had a parseable date and price".
const (
	EmptyReasonNoRows        = "no data rows"
	EmptyReasonNoParsedRows  = "no rows with parseable dates and prices"
)

// EmptyDatasetError reports that zero rows survived normalization. It is
// surfaced distinctly from SchemaError so the user knows the columns were
// found but the values were unusable.
type EmptyDatasetError struct {
	Reason string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("empty dataset: %s", e.Reason)
}
