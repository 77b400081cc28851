package dataprocessing

import "strings"

// A columnPredicate tests one lowercased header name.
type columnPredicate func(string) bool

func contains(sub string) columnPredicate {
	return func(name string) bool { return strings.Contains(name, sub) }
}

func equals(exact string) columnPredicate {
	return func(name string) bool { return name == exact }
}

// Inference rules, evaluated in a fixed order so the tie-break stays
// explicit: for each role the first matching column in header order wins.
// Generic terms like "value" are deliberately excluded; a dataset whose
// only price-like column is named "Value" is rejected rather than guessed.
var (
	datePredicates  = []columnPredicate{contains("date"), contains("time"), equals("dt")}
	pricePredicates = []columnPredicate{contains("price"), contains("close"), equals("btc")}
)

// InferSchema identifies the timestamp and price columns from the header
// names. Matching is case-insensitive; the original casing is preserved in
// the result so records can be read back by their source keys.
func InferSchema(columns []string) (Schema, error) {
	schema := Schema{
		DateColumn:  findColumn(columns, datePredicates),
		PriceColumn: findColumn(columns, pricePredicates),
	}

	var missing []string
	if schema.DateColumn == "" {
		missing = append(missing, "date")
	}
	if schema.PriceColumn == "" {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return Schema{}, &SchemaError{Missing: missing, Columns: columns}
	}
	return schema, nil
}

func findColumn(columns []string, predicates []columnPredicate) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, match := range predicates {
			if match(lower) {
				return col
			}
		}
	}
	return ""
}
