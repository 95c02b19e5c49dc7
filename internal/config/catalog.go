package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

// catalogFile is the on-disk layout of LAYER_CATALOG_PATH.
//
//	fallback_color: "#808080"
//	layers:
//	  - category: highway
//	    label: Highways
//	    color: "#FF6B6B"
//	    icon: road
//	synonyms:
//	  road: highway
//	fields:
//	  latitude: [latitude, lat]
//
// Omitted sections fall back to the built-in defaults.
type catalogFile struct {
	FallbackColor string            `yaml:"fallback_color"`
	Layers        []catalogLayer    `yaml:"layers"`
	Synonyms      map[string]string `yaml:"synonyms"`
	Fields        *catalogFields    `yaml:"fields"`
}

type catalogLayer struct {
	Category string `yaml:"category"`
	Label    string `yaml:"label"`
	Color    string `yaml:"color"`
	Icon     string `yaml:"icon"`
}

type catalogFields struct {
	Latitude    []string `yaml:"latitude"`
	Longitude   []string `yaml:"longitude"`
	Description []string `yaml:"description"`
	Category    []string `yaml:"category"`
	Color       []string `yaml:"color"`
}

// LoadCatalog returns the layer catalog for cfg. Without LAYER_CATALOG_PATH
// the built-in catalog is used.
func LoadCatalog(cfg *Config) (*domain.Catalog, error) {
	if cfg.LayerCatalogPath == "" {
		return domain.DefaultCatalog(), nil
	}

	f, err := os.Open(cfg.LayerCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open LAYER_CATALOG_PATH: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("LAYER_CATALOG_PATH %s: %w", cfg.LayerCatalogPath, err)
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog document. Unknown keys are rejected.
func ParseCatalog(r io.Reader) (*domain.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	}

	return file.toCatalog()
}

func (f catalogFile) toCatalog() (*domain.Catalog, error) {
	defaults := domain.DefaultCatalog()

	layers := defaults.Layers()
	if len(f.Layers) > 0 {
		layers = make([]domain.LayerDef, 0, len(f.Layers))
		for _, l := range f.Layers {
			layers = append(layers, domain.LayerDef{
				Category: domain.Category(l.Category),
				Label:    l.Label,
				Color:    l.Color,
				Icon:     l.Icon,
			})
		}
	}

	var synonyms map[string]domain.Category
	if f.Synonyms != nil {
		synonyms = make(map[string]domain.Category, len(f.Synonyms))
		for raw, target := range f.Synonyms {
			synonyms[raw] = domain.Category(target)
		}
	} else if len(f.Layers) == 0 {
		synonyms = defaults.Synonyms()
	}

	fields := defaults.Fields()
	if f.Fields != nil {
		fields = mergeFields(fields, *f.Fields)
	}

	fallback := f.FallbackColor
	if fallback == "" {
		fallback = defaults.FallbackColor()
	}

	return domain.NewCatalog(layers, synonyms, fields, fallback)
}

func mergeFields(base domain.FieldSynonyms, override catalogFields) domain.FieldSynonyms {
	pick := func(b, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return b
	}
	return domain.FieldSynonyms{
		Latitude:    pick(base.Latitude, override.Latitude),
		Longitude:   pick(base.Longitude, override.Longitude),
		Description: pick(base.Description, override.Description),
		Category:    pick(base.Category, override.Category),
		Color:       pick(base.Color, override.Color),
	}
}
