package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/candidate"
	"github.com/hupe1980/hfcand/model"
)

type options struct {
	namespace   string
	massBuckets []float64
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace prefixes every metric name. Defaults to "hfcand".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithMassBuckets overrides the invariant-mass histogram buckets (GeV/c²).
func WithMassBuckets(b []float64) Option {
	return func(o *options) {
		o.massBuckets = b
	}
}

// Collector implements hfcand.MetricsCollector with client_golang
// histograms and counters. All methods are safe for concurrent use.
type Collector struct {
	compositeMass prometheus.Histogram
	compositePt   prometheus.Histogram
	compositeCPA  prometheus.Histogram
	candidateMass prometheus.Histogram
	svCovXX       prometheus.Histogram
	decayLenErr   prometheus.Histogram

	fits       *prometheus.CounterVec
	skips      *prometheus.CounterVec
	events     *prometheus.CounterVec
	eventTime  prometheus.Histogram
	candidates prometheus.Counter
	matches    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer, optFns ...Option) (*Collector, error) {
	o := options{
		namespace:   "hfcand",
		massBuckets: prometheus.LinearBuckets(2.5, 0.02, 100),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		compositeMass: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "composite_mass_gev",
			Help:    "Invariant mass of refitted composites.",
			Buckets: o.massBuckets,
		}),
		compositePt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "composite_pt_gev",
			Help:    "Transverse momentum of refitted composites.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		compositeCPA: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "composite_cpa",
			Help:    "Cosine of the pointing angle of refitted composites.",
			Buckets: prometheus.LinearBuckets(-1, 0.1, 21),
		}),
		candidateMass: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candidate_mass_gev",
			Help:    "Invariant mass of emitted candidates.",
			Buckets: o.massBuckets,
		}),
		svCovXX: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candidate_sv_cov_xx_cm2",
			Help:    "xx element of the candidate secondary-vertex covariance.",
			Buckets: prometheus.ExponentialBuckets(1e-10, 10, 10),
		}),
		decayLenErr: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candidate_decay_length_error_cm",
			Help:    "Uncertainty of the candidate decay length.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 2, 16),
		}),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fits_total",
			Help: "Vertex fits by stage and status.",
		}, []string{"stage", "status"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skips_total",
			Help: "Inputs dropped by reason.",
		}, []string{"reason"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_total",
			Help: "Processed events by status.",
		}, []string{"status"}),
		eventTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "event_duration_seconds",
			Help:    "Time spent on one event.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "candidates_total",
			Help: "Emitted candidates.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matches_total",
			Help: "Truth-matched candidates (rec) and particles (gen).",
		}, []string{"kind"}),
	}

	if o.namespace != "" {
		reg = prometheus.WrapRegistererWithPrefix(o.namespace+"_", reg)
	}
	for _, m := range c.collectors() {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.compositeMass, c.compositePt, c.compositeCPA,
		c.candidateMass, c.svCovXX, c.decayLenErr,
		c.fits, c.skips, c.events, c.eventTime, c.candidates, c.matches,
	}
}

// OnComposite implements candidate.Observer.
func (c *Collector) OnComposite(mass, pt, cpa float64) {
	c.compositeMass.Observe(mass)
	c.compositePt.Observe(pt)
	c.compositeCPA.Observe(cpa)
}

// OnFit implements candidate.Observer.
func (c *Collector) OnFit(stage candidate.Stage, err error) {
	c.fits.WithLabelValues(stage.String(), status(err)).Inc()
}

// OnSkip implements candidate.Observer.
func (c *Collector) OnSkip(reason candidate.SkipReason) {
	c.skips.WithLabelValues(reason.String()).Inc()
}

// OnCandidate implements candidate.Observer.
func (c *Collector) OnCandidate(cand *model.Candidate) {
	c.candidateMass.Observe(cand.Mass)
	c.svCovXX.Observe(cand.SVCov.At(0, 0))
	c.decayLenErr.Observe(cand.ErrorDecayLength)
}

// RecordEvent implements hfcand.MetricsCollector.
func (c *Collector) RecordEvent(d time.Duration, candidates int, err error) {
	c.events.WithLabelValues(status(err)).Inc()
	c.eventTime.Observe(d.Seconds())
	c.candidates.Add(float64(candidates))
}

// RecordMatch implements hfcand.MetricsCollector.
func (c *Collector) RecordMatch(kind hfcand.MatchKind, flagged bool) {
	if flagged {
		c.matches.WithLabelValues(kind.String()).Inc()
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ hfcand.MetricsCollector = (*Collector)(nil)
