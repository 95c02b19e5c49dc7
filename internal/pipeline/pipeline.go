package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/search-layer-map/internal/domain"
	"github.com/couchcryptid/search-layer-map/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize result-set events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer renders a raw result-set event into a snapshot event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader publishes snapshot events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline runs the extract-render-load loop that feeds the view controller
// from Kafka and publishes one snapshot per successful render.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	published   atomic.Bool
	batchSize   int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the clock used for backoff sleeps and batch timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		batchSize:   batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has published at least one
// snapshot.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("pipeline has not published any snapshots yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for ctx.Err() == nil {
		if !p.runBatch(ctx, &backoff) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// runBatch runs one extract-render-load cycle. Returns false when the
// pipeline should stop.
func (p *Pipeline) runBatch(ctx context.Context, backoff *time.Duration) bool {
	start := p.clock.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoff(ctx, backoff)
	}
	if len(batch) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	*backoff = initialBackoff

	published, ok := p.renderAndPublish(ctx, batch, backoff)
	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(p.clock.Since(start).Seconds())
		p.published.Store(true)
	}
	return ok
}

// renderAndPublish renders each event, publishes the snapshots in one
// batch, and commits offsets. Events that fail to render are committed and
// skipped so a bad search result cannot wedge the partition. Returns the
// number of published snapshots and false when the pipeline should stop.
func (p *Pipeline) renderAndPublish(ctx context.Context, batch []domain.RawEvent, backoff *time.Duration) (int, bool) {
	out := make([]domain.OutputEvent, 0, len(batch))
	rendered := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return 0, false
			}
			p.logger.Warn("render failed, skipping message",
				"error", err,
				"kind", domain.ErrorKind(err),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.MessagesSkipped.Inc()
			p.commit(ctx, raw)
			continue
		}
		out = append(out, event)
		rendered = append(rendered, raw)
	}

	if len(out) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("publish snapshots failed", "error", err, "batch_size", len(out))
		return 0, p.backoff(ctx, backoff)
	}
	p.metrics.SnapshotsProduced.Add(float64(len(out)))

	for _, raw := range rendered {
		p.commit(ctx, raw)
	}
	return len(out), true
}

// backoff sleeps for the current delay and doubles it up to maxBackoff.
// Returns false if the context ended first.
func (p *Pipeline) backoff(ctx context.Context, current *time.Duration) bool {
	if !p.sleep(ctx, *current) {
		return false
	}
	*current = nextBackoff(*current)
	return true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	return min(current*2, maxBackoff)
}
