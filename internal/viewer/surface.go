package viewer

import (
	"slices"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

// MapSurface is the rendering collaborator the controller draws on.
// Implementations must be safe for use from multiple goroutines.
type MapSurface interface {
	// CreateSurface builds the map inside the named anchor. It returns an
	// error wrapping domain.ErrMapSurfaceUnavailable when the anchor does
	// not exist.
	CreateSurface(anchor string, opts SurfaceOptions) error
	// AddOverlayGroup attaches g, replacing any group already attached for
	// the same category.
	AddOverlayGroup(g *OverlayGroup)
	// RemoveOverlayGroup detaches the group for cat. Unknown categories are
	// ignored.
	RemoveOverlayGroup(cat domain.Category)
	// InvalidateSize makes the surface recompute its dimensions.
	InvalidateSize()
}

// SurfaceOptions configures a newly created map surface.
type SurfaceOptions struct {
	CenterLat       float64 `json:"center_lat"`
	CenterLon       float64 `json:"center_lon"`
	Zoom            int     `json:"zoom"`
	MinZoom         int     `json:"min_zoom"`
	MaxZoom         int     `json:"max_zoom"`
	TileURL         string  `json:"tile_url"`
	TileAttribution string  `json:"tile_attribution"`
}

// DefaultSurfaceOptions centers the map on the contiguous United States.
func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		CenterLat: 39.8283,
		CenterLon: -98.5795,
		Zoom:      5,
		MinZoom:   3,
		MaxZoom:   19,
	}
}

// Marker is a colored pin with an info popup.
type Marker struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Color     string  `json:"color"`
	Popup     Popup   `json:"popup"`
}

// OverlayGroup is the set of markers for one category, attached to or
// detached from the surface as a unit.
type OverlayGroup struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Icon     string          `json:"icon,omitempty"`
	Color    string          `json:"color"`
	Markers  []Marker        `json:"markers"`
}

// Len returns the number of markers in the group.
func (g *OverlayGroup) Len() int {
	return len(g.Markers)
}

// Recolored returns a copy of g with every marker drawn in color. Marker
// positions and popups are kept as they are.
func (g *OverlayGroup) Recolored(color string) *OverlayGroup {
	out := g.Clone()
	out.Color = color
	for i := range out.Markers {
		out.Markers[i].Color = color
	}
	return out
}

// Clone returns a deep copy of g.
func (g *OverlayGroup) Clone() *OverlayGroup {
	out := *g
	out.Markers = make([]Marker, len(g.Markers))
	for i, m := range g.Markers {
		m.Popup.Lines = slices.Clone(m.Popup.Lines)
		out.Markers[i] = m
	}
	return &out
}
