package candidate

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/track"
	"github.com/hupe1980/hfcand/vertex"
)

var (
	// ErrMissingDaughter is returned when a composite references a track
	// that is not in the event.
	ErrMissingDaughter = errors.New("candidate: composite daughter not found")

	// ErrAlias is returned when the second prong is one of the composite's
	// daughters.
	ErrAlias = errors.New("candidate: second prong aliases a composite daughter")
)

// Option configures a Builder.
type Option func(*Builder)

// WithObserver sets the monitoring sink.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		if o != nil {
			b.obs = o
		}
	}
}

// Builder turns events into candidates. It holds no per-event state and is
// safe for concurrent use if its Observer is.
type Builder struct {
	cfg Config
	obs Observer
}

// NewBuilder creates a Builder.
func NewBuilder(cfg Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, obs: NoopObserver{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the builder configuration.
func (b *Builder) Config() Config { return b.cfg }

// Rebuilt is a composite refitted from its daughters and expressed as a
// pseudo-track at the refitted vertex.
type Rebuilt struct {
	Composite model.Composite
	Track     track.State
	Chi2      float64
}

// Build returns every candidate of the event.
func (b *Builder) Build(ev *model.Event) []model.Candidate {
	composites := b.SelectComposites(ev)
	if len(composites) == 0 {
		return nil
	}

	rebuilt := make([]Rebuilt, 0, len(composites))
	for _, c := range composites {
		r, err := b.Rebuild(ev, c)
		if err != nil {
			continue
		}
		rebuilt = append(rebuilt, r)
	}

	eligible := b.SelectTracks(ev)

	var out []model.Candidate
	for _, r := range rebuilt {
		it := eligible.Iterator()
		for it.HasNext() {
			cand, err := b.Combine(ev, r, int(it.Next()))
			if err != nil {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}

// SelectComposites returns the composites passing the hypothesis, selection
// and rapidity requirements.
func (b *Builder) SelectComposites(ev *model.Event) []model.Composite {
	var out []model.Composite
	for _, c := range ev.Composites {
		switch {
		case !c.Has(b.cfg.Hypothesis):
			b.obs.OnSkip(SkipHypothesis)
		case c.SelStatus < b.cfg.SelectionFlag:
			b.obs.OnSkip(SkipSelection)
		case b.cfg.YMax >= 0 && math.Abs(kinematics.Rapidity(c.Mom, b.cfg.CompositeMass)) > b.cfg.YMax:
			b.obs.OnSkip(SkipRapidity)
		default:
			out = append(out, c)
		}
	}
	return out
}

// Rebuild refits c from its daughter tracks. The pseudo-track sits at the
// refitted vertex with the summed daughter momenta; its covariance combines
// the vertex covariance with the summed daughter momentum covariances.
func (b *Builder) Rebuild(ev *model.Event, c model.Composite) (Rebuilt, error) {
	var daughters [2]track.State
	for k, id := range c.Daughters {
		i, ok := ev.TrackByID(id)
		if !ok {
			b.obs.OnSkip(SkipMissingDaughter)
			return Rebuilt{}, fmt.Errorf("%w: composite %d track %d", ErrMissingDaughter, c.ID, id)
		}
		daughters[k] = ev.Tracks[i].State
	}

	res, err := vertex.Fit(daughters[:], b.cfg.Fitter)
	b.obs.OnFit(StageComposite, err)
	if err != nil {
		return Rebuilt{}, fmt.Errorf("composite %d: %w", c.ID, err)
	}

	p0, p1 := res.Momentum(0), res.Momentum(1)
	mom := r3.Add(p0, p1)
	momCov := res.Track(0).Cov.Momentum().Add(res.Track(1).Cov.Momentum())

	pseudo := track.State{
		ID:     c.ID,
		Pos:    res.PCA,
		Mom:    mom,
		Charge: daughters[0].Charge + daughters[1].Charge,
		Cov:    track.NewCov(res.Cov, momCov),
	}

	b.obs.OnComposite(
		kinematics.InvariantMass(
			kinematics.Prong{P: p0, M: b.cfg.DaughterMass},
			kinematics.Prong{P: p1, M: b.cfg.DaughterMass},
		),
		kinematics.Pt(mom),
		kinematics.CosPointingAngle(ev.Collision.Pos, res.PCA, mom),
	)

	return Rebuilt{Composite: c, Track: pseudo, Chi2: res.Chi2}, nil
}

// SelectTracks returns the indices of tracks eligible as second prong.
func (b *Builder) SelectTracks(ev *model.Event) *roaring.Bitmap {
	bm := roaring.New()
	for i := range ev.Tracks {
		if b.acceptsCharge(ev.Tracks[i].Charge) {
			bm.Add(uint32(i))
		}
	}
	return bm
}

func (b *Builder) acceptsCharge(q int) bool {
	switch {
	case b.cfg.SecondProngSign > 0:
		return q > 0
	case b.cfg.SecondProngSign < 0:
		return q < 0
	default:
		return true
	}
}

// Combine fits r with the track at index ti and derives the candidate.
func (b *Builder) Combine(ev *model.Event, r Rebuilt, ti int) (model.Candidate, error) {
	trk := ev.Tracks[ti].State
	if trk.ID == r.Composite.Daughters[0] || trk.ID == r.Composite.Daughters[1] {
		b.obs.OnSkip(SkipAlias)
		return model.Candidate{}, fmt.Errorf("%w: composite %d track %d", ErrAlias, r.Composite.ID, trk.ID)
	}

	res, err := vertex.Fit([]track.State{r.Track, trk}, b.cfg.Fitter)
	b.obs.OnFit(StageCandidate, err)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("composite %d track %d: %w", r.Composite.ID, trk.ID, err)
	}

	pv := ev.Collision.Vertex()
	bz := b.cfg.Fitter.Bz

	var prongs [2]model.Prong
	for k := range prongs {
		_, dca, err := res.Track(k).PropagateToDCA(pv, bz)
		if err != nil {
			b.obs.OnSkip(SkipImpactParameter)
			return model.Candidate{}, fmt.Errorf("prong %d impact parameter: %w", k, err)
		}
		prongs[k] = model.Prong{
			Mom:                  res.Momentum(k),
			ImpactParameter:      dca.Y,
			ErrorImpactParameter: math.Sqrt(dca.SigmaY2),
		}
	}

	errLen, errLenXY, err := kinematics.DecayLengthErrors(pv.Pos, res.PCA, pv.Cov, res.Cov)
	if err != nil {
		b.obs.OnSkip(SkipNegativeVariance)
		return model.Candidate{}, fmt.Errorf("composite %d track %d: %w", r.Composite.ID, trk.ID, err)
	}

	cand := model.Candidate{
		CollisionID:        ev.Collision.ID,
		PV:                 pv.Pos,
		SV:                 res.PCA,
		SVCov:              res.Cov,
		ErrorDecayLength:   errLen,
		ErrorDecayLengthXY: errLenXY,
		Chi2PCA:            res.Chi2,
		Prongs:             prongs,
		CompositeID:        r.Composite.ID,
		TrackID:            trk.ID,
		HFFlag:             b.cfg.CandidateFlag.Bit(),
		Mass: kinematics.InvariantMass(
			kinematics.Prong{P: prongs[0].Mom, M: b.cfg.CompositeMass},
			kinematics.Prong{P: prongs[1].Mom, M: b.cfg.SecondProngMass},
		),
	}
	b.obs.OnCandidate(&cand)
	return cand, nil
}
