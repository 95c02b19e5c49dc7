package viewer

import (
	"strconv"

	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/layerstate"
)

// ControlPanel is the collapsible list of layer toggles.
type ControlPanel struct {
	Collapsed bool          `json:"collapsed"`
	Items     []ControlItem `json:"items"`
}

// ControlItem is one row of the panel: a visibility checkbox and a color
// picker for a non-empty category.
type ControlItem struct {
	Category  domain.Category `json:"category"`
	Label     string          `json:"label"`
	Icon      string          `json:"icon,omitempty"`
	Checked   bool            `json:"checked"`
	Color     string          `json:"color"`
	Count     int             `json:"count"`
	CountText string          `json:"count_text"`
}

func buildControlItems(layers []layerstate.Layer) []ControlItem {
	items := make([]ControlItem, 0, len(layers))
	for _, l := range layers {
		if l.Count == 0 {
			continue
		}
		items = append(items, ControlItem{
			Category:  l.Category,
			Label:     l.Label,
			Icon:      l.Icon,
			Checked:   l.Visible,
			Color:     l.Color,
			Count:     l.Count,
			CountText: countText(l.Count),
		})
	}
	return items
}

func countText(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}
