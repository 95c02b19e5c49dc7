package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

func TestConvert(t *testing.T) {
	in := "lat,lon,description,type\n" +
		"39.9526,-75.1652,I-95 Exit 22,highway\n" +
		"41.2033,-77.1945,\"Clinton County, Rest Area\",Rest Areas\n" +
		",,Missing,\n"

	rs, err := convert(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"lat", "lon", "description", "type"}, rs.ColumnNames())
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, []any{json.Number("39.9526"), json.Number("-75.1652"), "I-95 Exit 22", "highway"}, rs.Rows[0])
	assert.Equal(t, "Clinton County, Rest Area", rs.Rows[1][2])
	assert.Equal(t, []any{nil, nil, "Missing", nil}, rs.Rows[2])

	cls, err := domain.Classify(rs, domain.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 2, cls.ValidRows)
	assert.Equal(t, 1, cls.DroppedRows)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"header only", "lat,lon\n"},
		{"empty", ""},
		{"ragged quote", "lat,lon\n\"1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert(strings.NewReader(tt.in))
			require.Error(t, err)
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue("  "))
	assert.Equal(t, json.Number("1e3"), cellValue("1e3"))
	assert.Equal(t, "N/A", cellValue(" N/A "))
}
