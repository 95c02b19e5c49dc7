package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

const defaultDescription = "No description"

// Classify groups result rows into category buckets of validated points.
// Rows with unparseable or out-of-range coordinates are dropped and counted.
// It has no side effects.
func Classify(rs ResultSet, catalog *Catalog) (Classification, error) {
	if len(rs.Fields) == 0 || len(rs.Rows) == 0 {
		return Classification{}, ErrEmptyResult
	}

	columns := rs.ColumnNames()
	mapping, err := ResolveFields(columns, catalog.Fields())
	if err != nil {
		return Classification{}, err
	}

	out := Classification{
		Buckets:   make(map[Category][]PointRecord),
		TotalRows: len(rs.Rows),
	}

	for _, row := range rs.Rows {
		point, ok := classifyRow(row, columns, mapping, catalog)
		if !ok {
			out.DroppedRows++
			continue
		}
		if _, seen := out.Buckets[point.Category]; !seen {
			out.Order = append(out.Order, point.Category)
		}
		out.Buckets[point.Category] = append(out.Buckets[point.Category], point)
		out.ValidRows++
	}

	if out.ValidRows == 0 {
		return Classification{}, fmt.Errorf("%w: all %d rows had invalid coordinates", ErrNoValidRows, out.TotalRows)
	}
	return out, nil
}

func classifyRow(row []any, columns []string, m FieldMapping, catalog *Catalog) (PointRecord, bool) {
	lat, ok := parseCoordinate(cell(row, m.Latitude))
	if !ok {
		return PointRecord{}, false
	}
	lon, ok := parseCoordinate(cell(row, m.Longitude))
	if !ok {
		return PointRecord{}, false
	}
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return PointRecord{}, false
	}

	point := PointRecord{
		Latitude:    lat,
		Longitude:   lon,
		Description: defaultDescription,
		Category:    Other,
	}
	if m.Description != -1 {
		point.Description = DisplayValue(cell(row, m.Description))
	}
	if m.Category != -1 {
		point.Category = catalog.NormalizeCategory(DisplayValue(cell(row, m.Category)))
	}
	if m.Color != -1 {
		point.CustomColor = strings.TrimSpace(DisplayValue(cell(row, m.Color)))
	}

	for i, name := range columns {
		if m.claims(i) {
			continue
		}
		point.ExtraFields = append(point.ExtraFields, ExtraField{Name: name, Value: cell(row, i)})
	}
	return point, true
}

// parseCoordinate accepts JSON numbers and numeric strings. NaN and infinities
// are rejected.
func parseCoordinate(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
