// Package jettag associates selected composites with the jets they end up
// in.
//
// Jet finding itself is delegated to a Clusterer. For every seed composite
// the tagger builds the clustering input from the event's tracks (pion mass
// hypothesis, seed daughters removed), appends the seed with a negative user
// index encoding its selection status and keeps the first jet that contains
// the seed.
package jettag

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/model"
)

// Seed user indices by selection status.
const (
	SeedParticle     = -1
	SeedAntiParticle = -2
	SeedBoth         = -3
)

// IsSeed reports whether a user index marks the seed.
func IsSeed(userIndex int) bool {
	return userIndex == SeedParticle || userIndex == SeedAntiParticle || userIndex == SeedBoth
}

// PseudoJet is a clustering input. UserIndex is the track ID, or a Seed*
// constant for the seed.
type PseudoJet struct {
	P         r3.Vec
	E         float64
	UserIndex int
}

// Pt returns the transverse momentum.
func (p PseudoJet) Pt() float64 { return kinematics.Pt(p.P) }

// Phi returns the azimuth.
func (p PseudoJet) Phi() float64 { return math.Atan2(p.P.Y, p.P.X) }

// Eta returns the pseudorapidity.
func (p PseudoJet) Eta() float64 { return eta(p.P) }

// Jet is one clustered jet.
type Jet struct {
	P            r3.Vec
	E            float64
	Area         float64
	Constituents []PseudoJet
}

// Clusterer finds jets. Implementations wrap an external jet finder.
type Clusterer interface {
	Cluster(ctx context.Context, inputs []PseudoJet) ([]Jet, error)
}

// ClustererFunc adapts a function to Clusterer.
type ClustererFunc func(ctx context.Context, inputs []PseudoJet) ([]Jet, error)

// Cluster calls f.
func (f ClustererFunc) Cluster(ctx context.Context, inputs []PseudoJet) ([]Jet, error) {
	return f(ctx, inputs)
}

// Config selects seeds and tracks.
type Config struct {
	Hypothesis    model.DecayType
	SelectionFlag int
	SeedMass      float64
	PionMass      float64
	MinTrackPt    float64
	MaxTrackEta   float64
	// R is the jet radius reported with every jet.
	R float64
}

// DefaultConfig tags J/ψ composites.
func DefaultConfig() Config {
	return Config{
		Hypothesis:    model.JpsiToEE,
		SelectionFlag: 1,
		SeedMass:      3.0969,
		PionMass:      0.13957,
		MinTrackPt:    0.15,
		MaxTrackEta:   0.9,
		R:             0.4,
	}
}

// TaggedJet is a jet containing a seed.
type TaggedJet struct {
	CollisionID  int     `json:"collision_id"`
	SeedID       int     `json:"seed_id"`
	Status       int     `json:"status"`
	Eta          float64 `json:"eta"`
	Phi          float64 `json:"phi"`
	Pt           float64 `json:"pt"`
	Area         float64 `json:"area"`
	E            float64 `json:"e"`
	M            float64 `json:"m"`
	R            float64 `json:"r"`
	Constituents []int   `json:"constituents"`
}

// Tagger runs the seed loop.
type Tagger struct {
	cfg       Config
	clusterer Clusterer
}

// New creates a Tagger.
func New(cfg Config, c Clusterer) *Tagger {
	return &Tagger{cfg: cfg, clusterer: c}
}

// Tag returns at most one jet per seed.
func (t *Tagger) Tag(ctx context.Context, ev *model.Event) ([]TaggedJet, error) {
	var out []TaggedJet
	for _, c := range ev.Composites {
		if !c.Has(t.cfg.Hypothesis) || c.SelStatus < t.cfg.SelectionFlag {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		jets, err := t.clusterer.Cluster(ctx, t.inputs(ev, c))
		if err != nil {
			return nil, fmt.Errorf("jettag: cluster seed %d: %w", c.ID, err)
		}
		if tj, ok := t.pick(jets); ok {
			tj.CollisionID = ev.Collision.ID
			tj.SeedID = c.ID
			out = append(out, tj)
		}
	}
	return out, nil
}

func (t *Tagger) inputs(ev *model.Event, c model.Composite) []PseudoJet {
	excluded := roaring.New()
	for _, d := range c.Daughters {
		if d >= 0 {
			excluded.Add(uint32(d))
		}
	}

	in := make([]PseudoJet, 0, len(ev.Tracks)+1)
	for _, tr := range ev.Tracks {
		if tr.ID >= 0 && excluded.Contains(uint32(tr.ID)) {
			continue
		}
		if tr.Pt() <= t.cfg.MinTrackPt || math.Abs(eta(tr.Mom)) >= t.cfg.MaxTrackEta {
			continue
		}
		in = append(in, PseudoJet{P: tr.Mom, E: kinematics.Energy(tr.Mom, t.cfg.PionMass), UserIndex: tr.ID})
	}

	return append(in, PseudoJet{
		P:         c.Mom,
		E:         kinematics.Energy(c.Mom, t.cfg.SeedMass),
		UserIndex: seedIndex(c.SelStatus),
	})
}

func (t *Tagger) pick(jets []Jet) (TaggedJet, bool) {
	for _, j := range jets {
		status := 0
		for _, c := range j.Constituents {
			if IsSeed(c.UserIndex) {
				status = -c.UserIndex
				break
			}
		}
		if status == 0 {
			continue
		}

		idx := make([]int, len(j.Constituents))
		for i, c := range j.Constituents {
			idx[i] = c.UserIndex
		}
		return TaggedJet{
			Status:       status,
			Eta:          eta(j.P),
			Phi:          math.Atan2(j.P.Y, j.P.X),
			Pt:           kinematics.Pt(j.P),
			Area:         j.Area,
			E:            j.E,
			M:            math.Sqrt(math.Max(j.E*j.E-r3.Norm2(j.P), 0)),
			R:            t.cfg.R,
			Constituents: idx,
		}, true
	}
	return TaggedJet{}, false
}

func seedIndex(sel int) int {
	switch sel {
	case model.SelParticle:
		return SeedParticle
	case model.SelAntiParticle:
		return SeedAntiParticle
	default:
		return SeedBoth
	}
}

func eta(p r3.Vec) float64 {
	pt := kinematics.Pt(p)
	if pt == 0 {
		return math.Copysign(math.Inf(1), p.Z)
	}
	return math.Asinh(p.Z / pt)
}
