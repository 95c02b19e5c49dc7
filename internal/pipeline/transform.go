package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/search-layer-map/internal/adapter/geojson"
	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

// Renderer is the view controller operation driven by the pipeline.
type Renderer interface {
	Render(ctx context.Context, rs domain.ResultSet) (viewer.RenderResult, error)
}

// RenderTransformer implements Transformer by handing each result set to
// the view controller and serializing what it drew.
type RenderTransformer struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewTransformer creates a RenderTransformer.
func NewTransformer(r Renderer, logger *slog.Logger) *RenderTransformer {
	return &RenderTransformer{renderer: r, logger: logger}
}

// Transform decodes raw as a result set, renders it, and returns the layer
// snapshot keyed by render ID. The source message key is carried in the
// source_key header.
func (t *RenderTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	rs, err := DecodeResultSet(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	res, err := t.renderer.Render(ctx, rs)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	out, err := geojson.NewSnapshot(res).OutputEvent()
	if err != nil {
		return domain.OutputEvent{}, err
	}
	if len(raw.Key) > 0 {
		out.Headers["source_key"] = string(raw.Key)
	}

	t.logger.Debug("result set rendered",
		"render_id", res.ID.String(),
		"offset", raw.Offset,
		"valid_rows", res.ValidRows,
		"layers", len(res.Attached),
	)
	return out, nil
}

// DecodeResultSet parses a row-major result set. Numbers are kept as
// json.Number so identifiers in extra columns survive unchanged.
func DecodeResultSet(data []byte) (domain.ResultSet, error) {
	var rs domain.ResultSet
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rs); err != nil {
		return domain.ResultSet{}, fmt.Errorf("decode result set: %w", err)
	}
	return rs, nil
}
