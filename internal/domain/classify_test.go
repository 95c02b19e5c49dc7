package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Field{Name: n}
	}
	return out
}

func TestClassify(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("drops out-of-range latitude", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("latitude", "longitude", "description", "category"),
			Rows: [][]any{
				{40.0, -75.0, "A", "highway"},
				{200.0, -75.0, "B", "highway"},
			},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)

		require.Len(t, result.Points(Highway), 1)
		assert.Equal(t, "A", result.Points(Highway)[0].Description)
		assert.Equal(t, []Category{Highway}, result.Order)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 1, result.ValidRows)
		assert.Equal(t, 1, result.DroppedRows)
	})

	t.Run("string coordinates and synonyms", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("Lat", "LNG", "desc", "Type", "county", "state"),
			Rows: [][]any{
				{"31.02", " -98.44 ", "Chappel stop", "Rest Areas", "San Saba", "TX"},
				{"34.94", "-95.59", "Dow", "truckstop", "Pittsburg", "OK"},
			},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)

		want := []PointRecord{{
			Latitude:    31.02,
			Longitude:   -98.44,
			Description: "Chappel stop",
			Category:    RestArea,
			ExtraFields: []ExtraField{{Name: "county", Value: "San Saba"}, {Name: "state", Value: "TX"}},
		}}
		if diff := cmp.Diff(want, result.Points(RestArea)); diff != "" {
			t.Fatalf("rest_area bucket mismatch (-want +got):\n%s", diff)
		}
		assert.Len(t, result.Points(TruckStop), 1)
		assert.Equal(t, []Category{RestArea, TruckStop}, result.Order)
	})

	t.Run("missing description and category columns", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("lat", "lon", "name"),
			Rows:   [][]any{{10.0, 20.0, "somewhere"}},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)

		points := result.Points(Other)
		require.Len(t, points, 1)
		assert.Equal(t, "No description", points[0].Description)
		assert.Equal(t, []ExtraField{{Name: "name", Value: "somewhere"}}, points[0].ExtraFields)
	})

	t.Run("color column sets custom color", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("latitude", "longitude", "category", "marker_color"),
			Rows: [][]any{
				{1.0, 1.0, "school", "#00FF00"},
				{2.0, 2.0, "school", "  "},
			},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)

		points := result.Points(School)
		require.Len(t, points, 2)
		assert.Equal(t, "#00FF00", points[0].CustomColor)
		assert.Empty(t, points[1].CustomColor)
		assert.Empty(t, points[0].ExtraFields)
	})

	t.Run("unknown category passes through", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("latitude", "longitude", "category"),
			Rows:   [][]any{{1.0, 1.0, "Fuel Depot"}, {1.0, 1.0, nil}},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)

		assert.Len(t, result.Points(Category("fuel_depot")), 1)
		assert.Len(t, result.Points(Other), 1)
	})

	t.Run("boundary coordinates are valid", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("latitude", "longitude"),
			Rows:   [][]any{{90.0, 180.0}, {-90.0, -180.0}, {90.0001, 0.0}, {0.0, -180.5}},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)
		assert.Equal(t, 2, result.ValidRows)
		assert.Equal(t, 2, result.DroppedRows)
	})

	t.Run("short rows are dropped or padded", func(t *testing.T) {
		rs := ResultSet{
			Fields: fields("latitude", "longitude", "extra"),
			Rows:   [][]any{{1.0}, {1.0, 2.0}},
		}

		result, err := Classify(rs, catalog)
		require.NoError(t, err)
		require.Equal(t, 1, result.ValidRows)
		assert.Equal(t, []ExtraField{{Name: "extra", Value: nil}}, result.Points(Other)[0].ExtraFields)
	})
}

func TestClassify_EveryValidRowInExactlyOneBucket(t *testing.T) {
	rs := ResultSet{
		Fields: fields("latitude", "longitude", "category"),
		Rows: [][]any{
			{1.0, 1.0, "highway"},
			{2.0, 2.0, "road"},
			{3.0, 3.0, "school"},
			{"bad", 3.0, "school"},
			{4.0, 4.0, "weigh"},
			{5.0, 5.0, ""},
			{math.NaN(), 5.0, "highway"},
		},
	}

	result, err := Classify(rs, DefaultCatalog())
	require.NoError(t, err)

	total := 0
	for _, cat := range result.Order {
		total += len(result.Buckets[cat])
	}
	assert.Equal(t, result.ValidRows, total)
	assert.Equal(t, 5, result.ValidRows)
	assert.Equal(t, 2, result.DroppedRows)
	assert.Equal(t, map[Category]int{Highway: 2, School: 1, WeighStation: 1, Other: 1}, result.Counts())
}

func TestClassify_Errors(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name string
		rs   ResultSet
		want error
	}{
		{"no rows", ResultSet{Fields: fields("latitude", "longitude")}, ErrEmptyResult},
		{"no fields", ResultSet{Rows: [][]any{{1.0, 2.0}}}, ErrEmptyResult},
		{"no longitude", ResultSet{Fields: fields("latitude", "description"), Rows: [][]any{{1.0, "x"}}}, ErrMissingRequiredField},
		{"all rows invalid", ResultSet{Fields: fields("lat", "lon"), Rows: [][]any{{"x", "y"}, {91.0, 0.0}}}, ErrNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.rs, catalog)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassify_MissingFieldNamesAvailableColumns(t *testing.T) {
	rs := ResultSet{
		Fields: fields("latitude", "description", "category"),
		Rows:   [][]any{{1.0, "x", "highway"}},
	}

	_, err := Classify(rs, DefaultCatalog())
	require.Error(t, err)

	var mfe *MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, []string{"longitude"}, mfe.Missing)
	assert.Equal(t, []string{"latitude", "description", "category"}, mfe.Available)
	assert.Contains(t, err.Error(), "latitude, description, category")
	assert.Equal(t, "missing_required_field", ErrorKind(err))
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float", 40.5, 40.5, true},
		{"int", 12, 12, true},
		{"string", "-75.25", -75.25, true},
		{"padded string", "  3.5 ", 3.5, true},
		{"json number", json.Number("1.25"), 1.25, true},
		{"empty string", "", 0, false},
		{"garbage", "40abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"NaN string", "NaN", 0, false},
		{"infinity", math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCoordinate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "empty_result", ErrorKind(ErrEmptyResult))
	assert.Equal(t, "no_valid_rows", ErrorKind(ErrNoValidRows))
	assert.Equal(t, "map_surface_unavailable", ErrorKind(ErrMapSurfaceUnavailable))
	assert.Equal(t, "unknown", ErrorKind(errors.New("boom")))
}
