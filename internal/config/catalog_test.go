package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

const customCatalog = `
fallback_color: "#111111"
layers:
  - category: Fuel Depot
    label: Fuel Depots
    color: "#00FF00"
    icon: fuel
  - category: highway
    label: Roads
synonyms:
  gas: fuel_depot
fields:
  latitude: [y]
  longitude: [x]
`

func TestLoadCatalog_DefaultWhenUnset(t *testing.T) {
	c, err := LoadCatalog(&Config{})
	require.NoError(t, err)

	assert.Len(t, c.Layers(), 9)
	assert.Equal(t, domain.RestArea, c.NormalizeCategory("Rest Areas"))
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customCatalog), 0o600))

	c, err := LoadCatalog(&Config{LayerCatalogPath: path})
	require.NoError(t, err)

	layers := c.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, domain.Category("fuel_depot"), layers[0].Category)
	assert.Equal(t, "#00FF00", c.DefaultColor("fuel_depot"))
	assert.Equal(t, "#111111", c.DefaultColor(domain.Highway))
	assert.Equal(t, "Roads", c.Label(domain.Highway))
	assert.Equal(t, domain.Category("fuel_depot"), c.NormalizeCategory("GAS"))
	assert.Equal(t, "#111111", c.FallbackColor())

	fields := c.Fields()
	assert.Equal(t, []string{"y"}, fields.Latitude)
	assert.Equal(t, []string{"x"}, fields.Longitude)
	assert.Equal(t, domain.DefaultFieldSynonyms().Description, fields.Description)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(&Config{LayerCatalogPath: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LAYER_CATALOG_PATH")
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "empty document uses defaults", doc: ""},
		{name: "fallback only", doc: `fallback_color: "#222222"`},
		{name: "unknown key", doc: "colours: []", wantErr: "decode catalog"},
		{name: "malformed yaml", doc: "layers: [", wantErr: "decode catalog"},
		{
			name:    "duplicate layer",
			doc:     "layers:\n  - category: school\n  - category: School\n",
			wantErr: "duplicate layer",
		},
		{
			name:    "empty category",
			doc:     "layers:\n  - label: Nothing\n",
			wantErr: "empty category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCatalog(strings.NewReader(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.Layers(), 9)
			assert.Equal(t, domain.Highway, c.NormalizeCategory("road"))
		})
	}
}

func TestParseCatalog_FallbackOverride(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(`fallback_color: "#222222"`))
	require.NoError(t, err)
	assert.Equal(t, "#222222", c.FallbackColor())
	assert.Equal(t, "#222222", c.DefaultColor("fuel_depot"))
	assert.Equal(t, "#FF6B6B", c.DefaultColor(domain.Highway))
}
