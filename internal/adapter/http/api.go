package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/search-layer-map/internal/adapter/geojson"
	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/viewer"
)

const maxResultBytes = 32 << 20

// Viewer is the part of the view controller driven over HTTP.
type Viewer interface {
	Render(ctx context.Context, rs domain.ResultSet) (viewer.RenderResult, error)
	RequestedFetchParams() domain.FetchParams
	OnResize()
	SetLayerVisible(cat domain.Category, visible bool)
	SetLayerColor(cat domain.Category, color string)
	TogglePanel() bool
	Controls() viewer.ControlPanel
	ErrorMessage() string
	State() viewer.State
}

// Surface exposes what is currently drawn.
type Surface interface {
	FeatureCollection() *orbjson.FeatureCollection
	Viewport() geojson.Viewport
}

// API serves result delivery, layer output, and layer controls under /api/v1.
type API struct {
	viewer  Viewer
	surface Surface
	catalog *domain.Catalog
}

// NewAPI creates the /api/v1 handlers. Category path segments are
// normalized through catalog, so "Rest Areas" addresses rest_area.
func NewAPI(v Viewer, s Surface, catalog *domain.Catalog) *API {
	return &API{viewer: v, surface: s, catalog: catalog}
}

func (a *API) routes(r chi.Router) {
	r.Post("/results", a.handleResults)
	r.Get("/fetch-params", a.handleFetchParams)
	r.Get("/layers", a.handleLayers)
	r.Put("/layers/{category}/visibility", a.handleVisibility)
	r.Put("/layers/{category}/color", a.handleColor)
	r.Get("/viewport", a.handleViewport)
	r.Get("/controls", a.handleControls)
	r.Post("/controls/toggle", a.handleToggle)
	r.Post("/resize", a.handleResize)
	r.Get("/status", a.handleStatus)
}

type renderResponse struct {
	RenderID    string              `json:"render_id"`
	TotalRows   int                 `json:"total_rows"`
	ValidRows   int                 `json:"valid_rows"`
	DroppedRows int                 `json:"dropped_rows"`
	Controls    viewer.ControlPanel `json:"controls"`
}

func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	var rs domain.ResultSet
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResultBytes))
	dec.UseNumber()
	if err := dec.Decode(&rs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("decode result set: %v", err))
		return
	}

	res, err := a.viewer.Render(r.Context(), rs)
	if err != nil {
		kind := domain.ErrorKind(err)
		status := http.StatusUnprocessableEntity
		if kind == "unknown" {
			status = http.StatusInternalServerError
		}
		writeError(w, status, kind, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		RenderID:    res.ID.String(),
		TotalRows:   res.TotalRows,
		ValidRows:   res.ValidRows,
		DroppedRows: res.DroppedRows,
		Controls:    res.Controls,
	})
}

func (a *API) handleFetchParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.viewer.RequestedFetchParams())
}

func (a *API) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeTyped(w, http.StatusOK, "application/geo+json", a.surface.FeatureCollection())
}

func (a *API) handleVisibility(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := decodeStrict(w, r, &body); err != nil || body.Visible == nil {
		writeError(w, http.StatusBadRequest, "invalid_body", `body must be {"visible": true|false}`)
		return
	}

	a.viewer.SetLayerVisible(cat, *body.Visible)
	writeJSON(w, http.StatusOK, a.viewer.Controls())
}

func (a *API) handleColor(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.category(w, r)
	if !ok {
		return
	}
	var body struct {
		Color string `json:"color"`
	}
	if err := decodeStrict(w, r, &body); err != nil || body.Color == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", `body must be {"color": "<color>"}`)
		return
	}

	a.viewer.SetLayerColor(cat, body.Color)
	writeJSON(w, http.StatusOK, a.viewer.Controls())
}

func (a *API) handleViewport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.surface.Viewport())
}

func (a *API) handleControls(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.viewer.Controls())
}

func (a *API) handleToggle(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"collapsed": a.viewer.TogglePanel()})
}

func (a *API) handleResize(w http.ResponseWriter, _ *http.Request) {
	a.viewer.OnResize()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"state": a.viewer.State().String(),
		"error": a.viewer.ErrorMessage(),
	})
}

func (a *API) category(w http.ResponseWriter, r *http.Request) (domain.Category, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return "", false
	}
	return a.catalog.NormalizeCategory(raw), true
}

func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}
