package hfcand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unsafe"

	"golang.org/x/time/rate"

	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/recordio"
)

// Sink consumes event results in input order.
type Sink interface {
	Consume(ctx context.Context, res *EventResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, res *EventResult) error

// Consume calls f.
func (f SinkFunc) Consume(ctx context.Context, res *EventResult) error { return f(ctx, res) }

// RunStats summarizes a streaming run.
type RunStats struct {
	Events     int64         `json:"events"`
	Candidates int64         `json:"candidates"`
	RecMatched int64         `json:"rec_matched"`
	GenMatched int64         `json:"gen_matched"`
	Jets       int64         `json:"jets"`
	Duration   time.Duration `json:"duration"`
}

func (s *RunStats) add(res *EventResult) {
	s.Events++
	s.Candidates += int64(len(res.Candidates))
	s.Jets += int64(len(res.Jets))
	for _, m := range res.RecMatches {
		if m.Flag != 0 {
			s.RecMatched++
		}
	}
	for _, m := range res.GenMatches {
		if m.Flag != 0 {
			s.GenMatched++
		}
	}
}

// Run reads events from r until EOF, processes them batch by batch and
// passes every result to sink in input order. A decode, processing or sink
// error stops the run; the returned stats cover the events consumed so far.
func (c *Creator) Run(ctx context.Context, r *recordio.Reader, sink Sink) (RunStats, error) {
	var stats RunStats
	if c.closed.Load() {
		return stats, ErrClosed
	}

	start := time.Now()
	progress := rate.Sometimes{Interval: 5 * time.Second}

	err := func() error {
		for {
			batch, err := readBatch(r, c.batchSize)
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				return nil
			}

			reserved, err := c.rc.AcquireMemory(ctx, batchBytes(batch))
			if err != nil {
				return err
			}
			results, err := c.ProcessEvents(ctx, batch)
			c.rc.ReleaseMemory(reserved)
			if err != nil {
				return err
			}

			for i := range results {
				if err := sink.Consume(ctx, &results[i]); err != nil {
					return fmt.Errorf("sink: %w", err)
				}
				stats.add(&results[i])
			}

			stats.Duration = time.Since(start)
			progress.Do(func() { c.logger.LogProgress(ctx, stats) })
		}
	}()

	stats.Duration = time.Since(start)
	c.logger.LogRun(ctx, stats, err)
	return stats, err
}

func readBatch(r *recordio.Reader, n int) ([]model.Event, error) {
	batch := make([]model.Event, 0, n)
	for len(batch) < n {
		var ev model.Event
		err := r.Next(&ev)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event %d: %w", r.Line(), err)
		}
		batch = append(batch, ev)
	}
	return batch, nil
}

// batchBytes estimates the heap held by a batch.
func batchBytes(batch []model.Event) int64 {
	var n int64
	for i := range batch {
		ev := &batch[i]
		n += int64(unsafe.Sizeof(*ev))
		n += int64(len(ev.Tracks)) * int64(unsafe.Sizeof(model.Track{}))
		n += int64(len(ev.Composites)) * int64(unsafe.Sizeof(model.Composite{}))
		n += int64(len(ev.Particles)) * int64(unsafe.Sizeof(model.Particle{}))
	}
	return n
}
