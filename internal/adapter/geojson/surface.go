// Package geojson implements the map surface in memory and exposes the
// attached overlay groups as GeoJSON for browser clients and snapshot
// consumers.
package geojson

import (
	"fmt"
	"slices"
	"sync"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

// Surface is an in-memory viewer.MapSurface. Only anchors registered with
// NewSurface can host the map.
type Surface struct {
	mu sync.RWMutex

	anchors map[string]bool
	created bool
	anchor  string
	opts    viewer.SurfaceOptions
	groups  []*viewer.OverlayGroup
	resizes int
}

var _ viewer.MapSurface = (*Surface)(nil)

// NewSurface creates a surface that accepts the given anchors.
func NewSurface(anchors ...string) *Surface {
	s := &Surface{anchors: make(map[string]bool, len(anchors))}
	for _, a := range anchors {
		s.anchors[a] = true
	}
	return s
}

// CreateSurface builds the map in anchor. Creating it again resets the
// attached groups.
func (s *Surface) CreateSurface(anchor string, opts viewer.SurfaceOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.anchors[anchor] {
		return fmt.Errorf("%w: #%s", domain.ErrMapSurfaceUnavailable, anchor)
	}
	s.created = true
	s.anchor = anchor
	s.opts = opts
	s.groups = nil
	return nil
}

// AddOverlayGroup attaches g. A group already attached for the same
// category is replaced in place.
func (s *Surface) AddOverlayGroup(g *viewer.OverlayGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(g.Category); i >= 0 {
		s.groups[i] = g
		return
	}
	s.groups = append(s.groups, g)
}

// RemoveOverlayGroup detaches the group for cat.
func (s *Surface) RemoveOverlayGroup(cat domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(cat); i >= 0 {
		s.groups = slices.Delete(s.groups, i, i+1)
	}
}

// InvalidateSize bumps the size generation so clients re-measure.
func (s *Surface) InvalidateSize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizes++
}

func (s *Surface) indexLocked(cat domain.Category) int {
	return slices.IndexFunc(s.groups, func(g *viewer.OverlayGroup) bool {
		return g.Category == cat
	})
}

// Groups returns copies of the attached groups in attach order.
func (s *Surface) Groups() []*viewer.OverlayGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*viewer.OverlayGroup, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

// FeatureCollection returns the attached markers as GeoJSON points.
func (s *Surface) FeatureCollection() *orbjson.FeatureCollection {
	return FeatureCollection(s.Groups())
}

// Bound returns the box enclosing every attached marker. The second result
// is false when nothing is attached.
func (s *Surface) Bound() (orb.Bound, bool) {
	return Bound(s.Groups())
}

// Viewport describes how clients should draw the surface.
type Viewport struct {
	Anchor          string    `json:"anchor"`
	Created         bool      `json:"created"`
	CenterLat       float64   `json:"center_lat"`
	CenterLon       float64   `json:"center_lon"`
	Zoom            int       `json:"zoom"`
	MinZoom         int       `json:"min_zoom"`
	MaxZoom         int       `json:"max_zoom"`
	TileURL         string    `json:"tile_url"`
	TileAttribution string    `json:"tile_attribution"`
	SizeGeneration  int       `json:"size_generation"`
	Layers          int       `json:"layers"`
	BBox            []float64 `json:"bbox,omitempty"`
}

// Viewport returns the surface options and current extent.
func (s *Surface) Viewport() Viewport {
	s.mu.RLock()
	vp := Viewport{
		Anchor:          s.anchor,
		Created:         s.created,
		CenterLat:       s.opts.CenterLat,
		CenterLon:       s.opts.CenterLon,
		Zoom:            s.opts.Zoom,
		MinZoom:         s.opts.MinZoom,
		MaxZoom:         s.opts.MaxZoom,
		TileURL:         s.opts.TileURL,
		TileAttribution: s.opts.TileAttribution,
		SizeGeneration:  s.resizes,
		Layers:          len(s.groups),
	}
	s.mu.RUnlock()

	if b, ok := s.Bound(); ok {
		vp.BBox = orbjson.NewBBox(b)
	}
	return vp
}

// FeatureCollection converts overlay groups into one GeoJSON collection,
// one point feature per marker.
func FeatureCollection(groups []*viewer.OverlayGroup) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	for _, g := range groups {
		for i, m := range g.Markers {
			f := orbjson.NewFeature(orb.Point{m.Longitude, m.Latitude})
			f.ID = fmt.Sprintf("%s-%d", g.Category, i)
			f.Properties["category"] = string(g.Category)
			f.Properties["label"] = g.Label
			f.Properties["color"] = m.Color
			f.Properties["description"] = m.Popup.Title
			f.Properties["popup_html"] = m.Popup.HTML()
			fc.Append(f)
		}
	}
	if b, ok := Bound(groups); ok {
		fc.BBox = orbjson.NewBBox(b)
	}
	return fc
}

// Bound returns the box enclosing every marker in groups.
func Bound(groups []*viewer.OverlayGroup) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, g := range groups {
		for _, m := range g.Markers {
			mp = append(mp, orb.Point{m.Longitude, m.Latitude})
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}
