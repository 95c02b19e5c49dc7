package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/layerstate"
	"github.com/couchcryptid/search-layer-map/internal/observability"
)

// Visualization is the lifecycle a host drives. The host constructs the
// implementation and delivers events; nothing is inherited.
type Visualization interface {
	Initialize(ctx context.Context) error
	RequestedFetchParams() domain.FetchParams
	OnData(ctx context.Context, rs domain.ResultSet) error
	OnResize()
}

var _ Visualization = (*Controller)(nil)

// State is the controller lifecycle state. There is no error state: a
// failed render leaves the controller where it was.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// DefaultAnchor is the element the map surface is created in.
const DefaultAnchor = "leaflet-map"

// DefaultResizeDelay gives the surface time to be laid out before it
// recomputes its size.
const DefaultResizeDelay = 100 * time.Millisecond

// Options configures a Controller. Zero values select defaults, except
// ResizeDelay: zero invalidates the surface immediately and a negative
// delay selects DefaultResizeDelay.
type Options struct {
	Anchor      string
	Surface     SurfaceOptions
	ResizeDelay time.Duration
	RowCap      int
	Clock       clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Anchor == "" {
		o.Anchor = DefaultAnchor
	}
	if o.Surface == (SurfaceOptions{}) {
		o.Surface = DefaultSurfaceOptions()
	}
	if o.ResizeDelay < 0 {
		o.ResizeDelay = DefaultResizeDelay
	}
	if o.RowCap <= 0 {
		o.RowCap = domain.DefaultRowCap
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// RenderResult describes one successful render cycle.
type RenderResult struct {
	ID          uuid.UUID
	RenderedAt  time.Time
	TotalRows   int
	ValidRows   int
	DroppedRows int
	// Attached holds copies of the groups placed on the surface, in the
	// order their categories were first seen.
	Attached []*OverlayGroup
	Controls ControlPanel
}

// Controller turns classified results into overlay groups on a MapSurface
// and keeps the layer control panel in sync with the layer state store.
// All methods are safe for concurrent use; each one runs to completion
// before the next starts.
type Controller struct {
	mu sync.Mutex

	catalog *domain.Catalog
	store   *layerstate.Store
	surface MapSurface
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	state       State
	errMsg      string
	groups      map[domain.Category]*OverlayGroup
	order       []domain.Category
	attached    map[domain.Category]bool
	panel       ControlPanel
	resizeTimer clockwork.Timer
}

// NewController creates a Controller in the Uninitialized state.
func NewController(catalog *domain.Catalog, store *layerstate.Store, surface MapSurface, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		catalog:  catalog,
		store:    store,
		surface:  surface,
		opts:     opts.withDefaults(),
		logger:   logger,
		metrics:  metrics,
		groups:   make(map[domain.Category]*OverlayGroup),
		attached: make(map[domain.Category]bool),
	}
}

// Initialize restores the catalog defaults for every layer and drops any
// rendered groups. An existing surface is kept.
func (c *Controller) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearGroupsLocked()
	c.store.Reset()
	c.errMsg = ""
	c.panel = ControlPanel{}
	c.metrics.LayerPoints.Reset()
	return nil
}

// RequestedFetchParams asks the host for row-major results, capped.
func (c *Controller) RequestedFetchParams() domain.FetchParams {
	return domain.FetchParams{OutputMode: domain.RowMajorOutputMode, Count: c.opts.RowCap}
}

// OnData runs a render cycle for rs.
func (c *Controller) OnData(ctx context.Context, rs domain.ResultSet) error {
	_, err := c.Render(ctx, rs)
	return err
}

// OnResize recomputes the surface size once the surface exists.
func (c *Controller) OnResize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Ready {
		c.surface.InvalidateSize()
	}
}

// Render runs one render cycle and reports what was drawn. On failure the
// error message is kept for display and the surface is left untouched.
func (c *Controller) Render(ctx context.Context, rs domain.ResultSet) (RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return RenderResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.errMsg = ""

	rs = rs.Truncate(c.opts.RowCap)
	c.metrics.RowsReceived.Add(float64(len(rs.Rows)))

	cls, err := domain.Classify(rs, c.catalog)
	if err != nil {
		return RenderResult{}, c.failLocked(err)
	}
	c.metrics.RowsDropped.Add(float64(cls.DroppedRows))

	if c.state == Uninitialized {
		if err := c.surface.CreateSurface(c.opts.Anchor, c.opts.Surface); err != nil {
			if !errors.Is(err, domain.ErrMapSurfaceUnavailable) {
				err = fmt.Errorf("%w: %w", domain.ErrMapSurfaceUnavailable, err)
			}
			return RenderResult{}, c.failLocked(err)
		}
		c.state = Ready
		c.scheduleResizeLocked()
		c.logger.Info("map surface created", "anchor", c.opts.Anchor)
	}

	c.clearGroupsLocked()
	c.metrics.LayerPoints.Reset()

	result := RenderResult{
		ID:          uuid.New(),
		RenderedAt:  c.opts.Clock.Now().UTC(),
		TotalRows:   cls.TotalRows,
		ValidRows:   cls.ValidRows,
		DroppedRows: cls.DroppedRows,
	}

	counts := make(map[domain.Category]int, len(cls.Order))
	for _, cat := range cls.Order {
		points := cls.Points(cat)
		g := c.buildGroup(cat, points)
		c.groups[cat] = g
		c.order = append(c.order, cat)
		counts[cat] = len(points)
		c.metrics.LayerPoints.WithLabelValues(string(cat)).Set(float64(len(points)))

		if c.store.Visible(cat) {
			c.attachLocked(g)
			result.Attached = append(result.Attached, g.Clone())
		}
	}
	c.store.RecordCounts(counts)
	c.rebuildControlsLocked()
	result.Controls = c.controlsLocked()

	c.metrics.Renders.Inc()
	c.logger.Debug("render complete",
		"render_id", result.ID.String(),
		"categories", len(cls.Order),
		"valid_rows", cls.ValidRows,
		"dropped_rows", cls.DroppedRows,
	)
	return result, nil
}

// SetLayerVisible records the visibility of cat and attaches or detaches
// its existing group. The data is not reclassified.
func (c *Controller) SetLayerVisible(cat domain.Category, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.SetVisible(cat, visible)
	if visible {
		c.metrics.LayerToggles.WithLabelValues("show").Inc()
	} else {
		c.metrics.LayerToggles.WithLabelValues("hide").Inc()
	}

	if g, ok := c.groups[cat]; ok {
		if visible {
			c.attachLocked(g)
		} else {
			c.detachLocked(cat)
		}
	}
	c.rebuildControlsLocked()
}

// SetLayerColor records the color of cat and redraws every marker of its
// existing group in that color. The group is re-attached if the layer is
// visible.
func (c *Controller) SetLayerColor(cat domain.Category, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.SetColor(cat, color)
	c.metrics.LayerRecolors.Inc()

	if g, ok := c.groups[cat]; ok {
		g = g.Recolored(color)
		c.groups[cat] = g
		if c.store.Visible(cat) {
			c.attachLocked(g)
		}
	}
	c.rebuildControlsLocked()
}

// TogglePanel collapses or expands the control panel and returns the new
// collapsed flag.
func (c *Controller) TogglePanel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.panel.Collapsed = !c.panel.Collapsed
	return c.panel.Collapsed
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage returns the inline error from the latest render, or "".
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Controls returns a copy of the control panel.
func (c *Controller) Controls() ControlPanel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlsLocked()
}

// Group returns a copy of the rendered group for cat.
func (c *Controller) Group(cat domain.Category) (*OverlayGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[cat]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// CheckReadiness returns nil once the map surface exists.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if c.State() != Ready {
		return errors.New("map surface has not been created yet")
	}
	return nil
}

// Close stops a pending deferred resize.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
}

func (c *Controller) failLocked(err error) error {
	c.errMsg = err.Error()
	kind := domain.ErrorKind(err)
	c.metrics.RenderFailures.WithLabelValues(kind).Inc()
	c.logger.Warn("render failed", "kind", kind, "error", err)
	return err
}

func (c *Controller) buildGroup(cat domain.Category, points []domain.PointRecord) *OverlayGroup {
	color := c.store.Color(cat)
	if color == "" {
		color = c.catalog.FallbackColor()
	}
	layer := c.store.Layer(cat)

	g := &OverlayGroup{
		Category: cat,
		Label:    layer.Label,
		Icon:     layer.Icon,
		Color:    color,
		Markers:  make([]Marker, 0, len(points)),
	}
	for _, p := range points {
		markerColor := color
		if p.CustomColor != "" {
			markerColor = p.CustomColor
		}
		g.Markers = append(g.Markers, Marker{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Color:     markerColor,
			Popup:     popupFor(p),
		})
	}
	return g
}

func (c *Controller) attachLocked(g *OverlayGroup) {
	c.surface.AddOverlayGroup(g.Clone())
	c.attached[g.Category] = true
}

func (c *Controller) detachLocked(cat domain.Category) {
	if c.attached[cat] {
		c.surface.RemoveOverlayGroup(cat)
		delete(c.attached, cat)
	}
}

func (c *Controller) clearGroupsLocked() {
	for _, cat := range c.order {
		c.detachLocked(cat)
	}
	c.groups = make(map[domain.Category]*OverlayGroup)
	c.attached = make(map[domain.Category]bool)
	c.order = nil
}

func (c *Controller) rebuildControlsLocked() {
	c.panel.Items = buildControlItems(c.store.NonEmpty())
}

func (c *Controller) controlsLocked() ControlPanel {
	out := c.panel
	out.Items = append([]ControlItem(nil), c.panel.Items...)
	return out
}

func (c *Controller) scheduleResizeLocked() {
	if c.opts.ResizeDelay == 0 {
		c.surface.InvalidateSize()
		return
	}
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = c.opts.Clock.AfterFunc(c.opts.ResizeDelay, c.surface.InvalidateSize)
}
