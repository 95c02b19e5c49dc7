package domain

import (
	"encoding/json"
	"strconv"
)

// RowMajorOutputMode is the host output mode that delivers results as
// arrays of row values aligned with the field list.
const RowMajorOutputMode = "json_rows"

// DefaultRowCap is the number of rows requested from the host per render.
const DefaultRowCap = 10000

// FetchParams describes the data shape the visualization asks the host for.
type FetchParams struct {
	OutputMode string `json:"output_mode"`
	Count      int    `json:"count"`
}

// Field is a column descriptor in a result set.
type Field struct {
	Name string `json:"name"`
}

// ResultSet is a row-major table of search results.
type ResultSet struct {
	Fields []Field `json:"fields"`
	Rows   [][]any `json:"rows"`
}

// ColumnNames returns the field names in column order.
func (rs ResultSet) ColumnNames() []string {
	names := make([]string, len(rs.Fields))
	for i, f := range rs.Fields {
		names[i] = f.Name
	}
	return names
}

// Truncate returns a copy limited to at most n rows. Non-positive n is a no-op.
func (rs ResultSet) Truncate(n int) ResultSet {
	if n <= 0 || len(rs.Rows) <= n {
		return rs
	}
	return ResultSet{Fields: rs.Fields, Rows: rs.Rows[:n]}
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// DisplayValue renders a raw cell value as popup text.
// Null cells render as the empty string.
func DisplayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// cell returns the value at column i, or nil when the row is short.
func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}
