package geojson

import (
	"encoding/json"
	"fmt"
	"time"

	orbjson "github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

// Snapshot is the published form of one render: the attached layers as
// GeoJSON plus the control panel state.
type Snapshot struct {
	RenderID    string                     `json:"render_id"`
	RenderedAt  time.Time                  `json:"rendered_at"`
	TotalRows   int                        `json:"total_rows"`
	ValidRows   int                        `json:"valid_rows"`
	DroppedRows int                        `json:"dropped_rows"`
	Controls    viewer.ControlPanel        `json:"controls"`
	Layers      *orbjson.FeatureCollection `json:"layers"`
}

// NewSnapshot builds the snapshot of a render result.
func NewSnapshot(res viewer.RenderResult) Snapshot {
	return Snapshot{
		RenderID:    res.ID.String(),
		RenderedAt:  res.RenderedAt,
		TotalRows:   res.TotalRows,
		ValidRows:   res.ValidRows,
		DroppedRows: res.DroppedRows,
		Controls:    res.Controls,
		Layers:      FeatureCollection(res.Attached),
	}
}

// OutputEvent serializes the snapshot for the sink topic, keyed by render ID.
func (s Snapshot) OutputEvent() (domain.OutputEvent, error) {
	value, err := json.Marshal(s)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(s.RenderID),
		Value: value,
		Headers: map[string]string{
			"render_id":   s.RenderID,
			"rendered_at": s.RenderedAt.Format(time.RFC3339Nano),
		},
	}, nil
}
