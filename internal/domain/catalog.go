package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Category is the canonical layer a point belongs to.
type Category string

// Known categories.
const (
	Highway       Category = "highway"
	RestArea      Category = "rest_area"
	WelcomeCenter Category = "welcome_center"
	WeighStation  Category = "weigh_station"
	TruckStop     Category = "truck_stop"
	TravelPlaza   Category = "travel_plaza"
	SexOffender   Category = "sex_offender"
	School        Category = "school"
	StateBoundary Category = "state_boundary"

	// Other is used when a row carries no category at all.
	Other Category = "other"
)

// DefaultFallbackColor is the neutral marker color for categories without a
// palette entry.
const DefaultFallbackColor = "#808080"

// LayerDef is the static definition of a known layer.
type LayerDef struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

// FieldSynonyms lists the accepted column names per role, in priority order.
type FieldSynonyms struct {
	Latitude    []string `json:"latitude"`
	Longitude   []string `json:"longitude"`
	Description []string `json:"description"`
	Category    []string `json:"category"`
	Color       []string `json:"color"`
}

func (f FieldSynonyms) clone() FieldSynonyms {
	return FieldSynonyms{
		Latitude:    slices.Clone(f.Latitude),
		Longitude:   slices.Clone(f.Longitude),
		Description: slices.Clone(f.Description),
		Category:    slices.Clone(f.Category),
		Color:       slices.Clone(f.Color),
	}
}

// Catalog is immutable layer configuration shared by the classifier and the
// layer state store. Accessors return copies.
type Catalog struct {
	layers        []LayerDef
	index         map[Category]int
	synonyms      map[string]Category
	fields        FieldSynonyms
	fallbackColor string
}

// NewCatalog validates and freezes a catalog. Synonym keys are normalized the
// same way category input is, and every layer category maps to itself.
func NewCatalog(layers []LayerDef, synonyms map[string]Category, fields FieldSynonyms, fallbackColor string) (*Catalog, error) {
	if len(fields.Latitude) == 0 || len(fields.Longitude) == 0 {
		return nil, errors.New("catalog: latitude and longitude synonyms are required")
	}
	if fallbackColor == "" {
		fallbackColor = DefaultFallbackColor
	}

	c := &Catalog{
		layers:        make([]LayerDef, 0, len(layers)),
		index:         make(map[Category]int, len(layers)),
		synonyms:      make(map[string]Category, len(synonyms)+len(layers)),
		fields:        fields.clone(),
		fallbackColor: fallbackColor,
	}

	for _, l := range layers {
		key := Category(normalizeKey(string(l.Category)))
		if key == "" {
			return nil, errors.New("catalog: layer with empty category")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate layer %q", key)
		}
		l.Category = key
		if l.Color == "" {
			l.Color = fallbackColor
		}
		c.index[key] = len(c.layers)
		c.layers = append(c.layers, l)
		c.synonyms[string(key)] = key
	}

	for raw, target := range synonyms {
		key := normalizeKey(raw)
		canonical := Category(normalizeKey(string(target)))
		if key == "" || canonical == "" {
			return nil, fmt.Errorf("catalog: empty synonym mapping %q -> %q", raw, target)
		}
		c.synonyms[key] = canonical
	}

	return c, nil
}

// DefaultCatalog returns the built-in layer configuration.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultLayers(), defaultSynonyms(), DefaultFieldSynonyms(), DefaultFallbackColor)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// DefaultFieldSynonyms returns the built-in column synonym lists.
func DefaultFieldSynonyms() FieldSynonyms {
	return FieldSynonyms{
		Latitude:    []string{"latitude", "lat", "Latitude"},
		Longitude:   []string{"longitude", "lon", "lng", "Longitude"},
		Description: []string{"description", "desc", "Description"},
		Category:    []string{"category", "type", "Category", "Type"},
		Color:       []string{"color", "colour", "marker_color", "Color"},
	}
}

func defaultLayers() []LayerDef {
	return []LayerDef{
		{Category: Highway, Label: "Highways", Color: "#FF6B6B", Icon: "road"},
		{Category: RestArea, Label: "Rest Areas", Color: "#4ECDC4", Icon: "parking"},
		{Category: WelcomeCenter, Label: "Welcome Centers", Color: "#45B7D1", Icon: "info"},
		{Category: WeighStation, Label: "Weigh Stations", Color: "#FFA07A", Icon: "scale"},
		{Category: TruckStop, Label: "Truck Stops", Color: "#98D8C8", Icon: "truck"},
		{Category: TravelPlaza, Label: "Travel Plazas", Color: "#F7DC6F", Icon: "building"},
		{Category: SexOffender, Label: "Sex Offender Addresses", Color: "#E74C3C", Icon: "warning"},
		{Category: School, Label: "School Addresses", Color: "#3498DB", Icon: "school"},
		{Category: StateBoundary, Label: "State Boundaries", Color: "#9B59B6", Icon: "boundary"},
	}
}

func defaultSynonyms() map[string]Category {
	return map[string]Category{
		"highways":         Highway,
		"road":             Highway,
		"rest_areas":       RestArea,
		"rest_stop":        RestArea,
		"welcome_centers":  WelcomeCenter,
		"welcome":          WelcomeCenter,
		"weigh_stations":   WeighStation,
		"weigh":            WeighStation,
		"truck_stops":      TruckStop,
		"truckstop":        TruckStop,
		"travel_plazas":    TravelPlaza,
		"plaza":            TravelPlaza,
		"sex_offenders":    SexOffender,
		"offender":         SexOffender,
		"schools":          School,
		"state_boundaries": StateBoundary,
		"boundary":         StateBoundary,
		"state":            StateBoundary,
	}
}

// Layers returns the known layer definitions in catalog order.
func (c *Catalog) Layers() []LayerDef {
	return slices.Clone(c.layers)
}

// Layer returns the definition of a known category.
func (c *Catalog) Layer(cat Category) (LayerDef, bool) {
	i, ok := c.index[cat]
	if !ok {
		return LayerDef{}, false
	}
	return c.layers[i], true
}

// Known reports whether cat has a catalog entry.
func (c *Catalog) Known(cat Category) bool {
	_, ok := c.index[cat]
	return ok
}

// Position returns the catalog order of cat, or -1 for custom categories.
func (c *Catalog) Position(cat Category) int {
	if i, ok := c.index[cat]; ok {
		return i
	}
	return -1
}

// DefaultColor returns the palette color for cat, or the fallback color.
func (c *Catalog) DefaultColor(cat Category) string {
	if l, ok := c.Layer(cat); ok {
		return l.Color
	}
	return c.fallbackColor
}

// FallbackColor returns the neutral color for uncatalogued categories.
func (c *Catalog) FallbackColor() string {
	return c.fallbackColor
}

// Label returns the display label for cat. Custom categories get a
// title-cased label derived from their name.
func (c *Catalog) Label(cat Category) string {
	if l, ok := c.Layer(cat); ok && l.Label != "" {
		return l.Label
	}
	return titleCase(string(cat))
}

// Fields returns the column synonym lists.
func (c *Catalog) Fields() FieldSynonyms {
	return c.fields.clone()
}

// Synonyms returns the normalized synonym table, including the identity
// entry for every layer.
func (c *Catalog) Synonyms() map[string]Category {
	return maps.Clone(c.synonyms)
}
