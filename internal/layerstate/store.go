// Package layerstate tracks per-category visibility, color and point counts
// across renders. Visibility and color survive new data; counts are replaced
// on every render.
package layerstate

import (
	"cmp"
	"slices"
	"sync"

	"github.com/couchcryptid/search-layer-map/internal/domain"
)

// Layer is a point-in-time view of one category's state.
type Layer struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Icon     string          `json:"icon,omitempty"`
	Color    string          `json:"color"`
	Visible  bool            `json:"visible"`
	Count    int             `json:"count"`
}

type entry struct {
	visible bool
	color   string
	count   int
}

// Store is safe for concurrent use.
type Store struct {
	catalog *domain.Catalog

	mu     sync.RWMutex
	layers map[domain.Category]*entry
}

// New creates a store seeded with the catalog's layers, all visible.
func New(catalog *domain.Catalog) *Store {
	s := &Store{catalog: catalog}
	s.Reset()
	return s
}

// Reset restores catalog defaults and forgets custom categories.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = make(map[domain.Category]*entry)
	for _, l := range s.catalog.Layers() {
		s.layers[l.Category] = &entry{visible: true, color: l.Color}
	}
}

// entryLocked returns the entry for cat, creating it with defaults.
// Callers must hold the write lock.
func (s *Store) entryLocked(cat domain.Category) *entry {
	e, ok := s.layers[cat]
	if !ok {
		e = &entry{visible: true, color: s.catalog.DefaultColor(cat)}
		s.layers[cat] = e
	}
	return e
}

// SetVisible records whether cat's layer should be shown.
func (s *Store) SetVisible(cat domain.Category, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(cat).visible = visible
}

// SetColor overrides cat's color. The value is not validated.
func (s *Store) SetColor(cat domain.Category, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(cat).color = color
}

// RecordCount overwrites the last-known point count for cat.
func (s *Store) RecordCount(cat domain.Category, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(cat).count = n
}

// RecordCounts replaces all counts: categories missing from counts drop to
// zero but keep their visibility and color.
func (s *Store) RecordCounts(counts map[domain.Category]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.layers {
		e.count = 0
	}
	for cat, n := range counts {
		s.entryLocked(cat).count = n
	}
}

// Visible reports cat's visibility; unseen categories are visible.
func (s *Store) Visible(cat domain.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.layers[cat]; ok {
		return e.visible
	}
	return true
}

// Color returns cat's current color.
func (s *Store) Color(cat domain.Category) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.layers[cat]; ok {
		return e.color
	}
	return s.catalog.DefaultColor(cat)
}

// Count returns cat's last recorded point count.
func (s *Store) Count(cat domain.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.layers[cat]; ok {
		return e.count
	}
	return 0
}

// Layer returns the full state of cat.
func (s *Store) Layer(cat domain.Category) Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := Layer{
		Category: cat,
		Label:    s.catalog.Label(cat),
		Color:    s.catalog.DefaultColor(cat),
		Visible:  true,
	}
	if def, ok := s.catalog.Layer(cat); ok {
		l.Icon = def.Icon
	}
	if e, ok := s.layers[cat]; ok {
		l.Color = e.color
		l.Visible = e.visible
		l.Count = e.count
	}
	return l
}

// Snapshot returns every tracked layer: catalog layers in catalog order,
// then custom categories alphabetically.
func (s *Store) Snapshot() []Layer {
	s.mu.RLock()
	cats := make([]domain.Category, 0, len(s.layers))
	for cat := range s.layers {
		cats = append(cats, cat)
	}
	s.mu.RUnlock()

	slices.SortFunc(cats, s.compare)

	out := make([]Layer, 0, len(cats))
	for _, cat := range cats {
		out = append(out, s.Layer(cat))
	}
	return out
}

// NonEmpty returns Snapshot filtered to layers with at least one point.
func (s *Store) NonEmpty() []Layer {
	all := s.Snapshot()
	out := all[:0]
	for _, l := range all {
		if l.Count > 0 {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) compare(a, b domain.Category) int {
	pa, pb := s.catalog.Position(a), s.catalog.Position(b)
	switch {
	case pa >= 0 && pb >= 0:
		return cmp.Compare(pa, pb)
	case pa >= 0:
		return -1
	case pb >= 0:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
