package hfcand

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/hfcand/candidate"
	"github.com/hupe1980/hfcand/model"
)

// MatchKind distinguishes the two truth passes.
type MatchKind uint8

const (
	// MatchRec labels reconstructed candidates.
	MatchRec MatchKind = iota
	// MatchGen labels generated particles.
	MatchGen
)

func (k MatchKind) String() string {
	if k == MatchGen {
		return "gen"
	}
	return "rec"
}

// MetricsCollector receives the candidate builder's monitoring callbacks plus
// per-event and truth-matching outcomes. It replaces fixed histogram
// bookkeeping; see metrics/prom for a Prometheus implementation.
//
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	candidate.Observer

	// RecordEvent is called once per event.
	RecordEvent(duration time.Duration, candidates int, err error)

	// RecordMatch is called for every truth-matched record; flagged reports
	// whether the record matched the signature.
	RecordMatch(kind MatchKind, flagged bool)
}

// NoopMetricsCollector discards everything.
type NoopMetricsCollector struct {
	candidate.NoopObserver
}

func (NoopMetricsCollector) RecordEvent(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordMatch(MatchKind, bool)           {}

// BasicMetricsCollector counts with atomics. Useful for tests, the CLI
// summary and debugging without external dependencies.
type BasicMetricsCollector struct {
	Events          atomic.Int64
	EventErrors     atomic.Int64
	EventTotalNanos atomic.Int64
	Composites      atomic.Int64
	Candidates      atomic.Int64
	RecMatched      atomic.Int64
	GenMatched      atomic.Int64

	fits        [3]atomic.Int64
	fitFailures [3]atomic.Int64
	skips       [candidate.NumSkipReasons]atomic.Int64
}

// OnComposite implements candidate.Observer.
func (b *BasicMetricsCollector) OnComposite(float64, float64, float64) {
	b.Composites.Add(1)
}

// OnFit implements candidate.Observer.
func (b *BasicMetricsCollector) OnFit(stage candidate.Stage, err error) {
	if int(stage) >= len(b.fits) {
		return
	}
	b.fits[stage].Add(1)
	if err != nil {
		b.fitFailures[stage].Add(1)
	}
}

// OnSkip implements candidate.Observer.
func (b *BasicMetricsCollector) OnSkip(reason candidate.SkipReason) {
	if int(reason) < len(b.skips) {
		b.skips[reason].Add(1)
	}
}

// OnCandidate implements candidate.Observer.
func (b *BasicMetricsCollector) OnCandidate(*model.Candidate) {}

// RecordEvent implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvent(duration time.Duration, candidates int, err error) {
	b.Events.Add(1)
	b.EventTotalNanos.Add(duration.Nanoseconds())
	b.Candidates.Add(int64(candidates))
	if err != nil {
		b.EventErrors.Add(1)
	}
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(kind MatchKind, flagged bool) {
	if !flagged {
		return
	}
	if kind == MatchGen {
		b.GenMatched.Add(1)
		return
	}
	b.RecMatched.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Events:         b.Events.Load(),
		EventErrors:    b.EventErrors.Load(),
		Composites:     b.Composites.Load(),
		Candidates:     b.Candidates.Load(),
		RecMatched:     b.RecMatched.Load(),
		GenMatched:     b.GenMatched.Load(),
		CompositeFits:  b.fits[candidate.StageComposite].Load(),
		CandidateFits:  b.fits[candidate.StageCandidate].Load(),
		CompositeFails: b.fitFailures[candidate.StageComposite].Load(),
		CandidateFails: b.fitFailures[candidate.StageCandidate].Load(),
		Skips:          make(map[candidate.SkipReason]int64),
	}
	if s.Events > 0 {
		s.EventAvgNanos = b.EventTotalNanos.Load() / s.Events
	}
	for r := range b.skips {
		if n := b.skips[r].Load(); n > 0 {
			s.Skips[candidate.SkipReason(r)] = n
		}
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Events         int64
	EventErrors    int64
	EventAvgNanos  int64
	Composites     int64
	Candidates     int64
	RecMatched     int64
	GenMatched     int64
	CompositeFits  int64
	CandidateFits  int64
	CompositeFails int64
	CandidateFails int64
	Skips          map[candidate.SkipReason]int64
}
