package hfcand

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hfcand/candidate"
	"github.com/hupe1980/hfcand/jettag"
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/resource"
	"github.com/hupe1980/hfcand/truth"
)

// EventResult is everything produced for one event.
type EventResult struct {
	CollisionID int
	Candidates  []model.Candidate
	// RecMatches is index-aligned with Candidates. Nil when truth matching
	// is disabled.
	RecMatches []model.MatchResult
	// GenMatches is index-aligned with the event's particles.
	GenMatches []model.MatchResult
	Jets       []jettag.TaggedJet
	Duration   time.Duration
}

// Creator runs the candidate, truth and jet stages over events.
type Creator struct {
	cfg       Config
	builder   *candidate.Builder
	matcher   *truth.Matcher
	tagger    *jettag.Tagger
	logger    *Logger
	metrics   MetricsCollector
	rc        *resource.Controller
	batchSize int
	closed    atomic.Bool
}

// New validates cfg and builds a Creator.
func New(cfg Config, optFns ...Option) (*Creator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		metricsCollector: NoopMetricsCollector{},
		workers:          1,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		if o.logLevel != nil {
			o.logger = NewTextLogger(*o.logLevel)
		} else {
			o.logger = NoopLogger()
		}
	}
	if o.rc == nil {
		o.rc = resource.NewController(resource.Config{Workers: int64(max(o.workers, 1))})
	}
	if o.batchSize <= 0 {
		o.batchSize = 16 * o.rc.Workers()
	}

	c := &Creator{
		cfg:       cfg,
		builder:   candidate.NewBuilder(cfg.Candidate, candidate.WithObserver(o.metricsCollector)),
		logger:    o.logger,
		metrics:   o.metricsCollector,
		rc:        o.rc,
		batchSize: o.batchSize,
	}
	if cfg.TruthEnabled {
		c.matcher = truth.NewMatcher(cfg.Truth)
	}
	if o.clusterer != nil {
		c.tagger = jettag.New(cfg.Jet, o.clusterer)
	}

	c.logger.Debug("creator ready",
		"workers", c.rc.Workers(),
		"truth", cfg.TruthEnabled,
		"jets", c.tagger != nil,
		"hypothesis", cfg.Candidate.Hypothesis.String(),
	)
	return c, nil
}

// Config returns the configuration the Creator was built with.
func (c *Creator) Config() Config { return c.cfg }

// Close marks the Creator closed. Calls in flight finish normally.
func (c *Creator) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}
	return nil
}

// ProcessEvent builds, matches and tags one event. Failed combinations are
// skipped; errors are returned only for cancellation and clusterer failures.
func (c *Creator) ProcessEvent(ctx context.Context, ev *model.Event) (*EventResult, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.process(ctx, ev)
	took := time.Since(start)

	ncand := 0
	if res != nil {
		res.Duration = took
		ncand = len(res.Candidates)
	}
	c.metrics.RecordEvent(took, ncand, err)
	c.logger.LogEvent(ctx, ev.Collision.ID, ncand, took, err)
	return res, err
}

func (c *Creator) process(ctx context.Context, ev *model.Event) (*EventResult, error) {
	res := &EventResult{
		CollisionID: ev.Collision.ID,
		Candidates:  c.builder.Build(ev),
	}

	if c.matcher != nil {
		rec, gen, err := c.matcher.Match(ctx, ev, res.Candidates)
		if err != nil {
			return nil, err
		}
		res.RecMatches, res.GenMatches = rec, gen
		for _, m := range rec {
			c.metrics.RecordMatch(MatchRec, m.Flag != 0)
		}
		for _, m := range gen {
			if m.Flag != 0 {
				c.metrics.RecordMatch(MatchGen, true)
			}
		}
	}

	if c.tagger != nil {
		jets, err := c.tagger.Tag(ctx, ev)
		if err != nil {
			return nil, fmt.Errorf("tag jets for collision %d: %w", ev.Collision.ID, err)
		}
		res.Jets = jets
	}
	return res, nil
}

// ProcessEvents processes events on the worker pool. Results are returned in
// input order. The first error cancels the remaining events.
func (c *Creator) ProcessEvents(ctx context.Context, events []model.Event) ([]EventResult, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	out := make([]EventResult, len(events))
	g, gctx := errgroup.WithContext(ctx)

	for i := range events {
		if err := c.rc.AcquireWorker(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer c.rc.ReleaseWorker()
			res, err := c.ProcessEvent(gctx, &events[i])
			if err != nil {
				return err
			}
			out[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
