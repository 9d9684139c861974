package testutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/pdg"
)

// Reference masses in GeV/c².
const (
	MassElectron = 0.000510999
	MassPion     = 0.13957
	MassJPsi     = 3.0969
	MassChic1    = 3.51067
	MassBPlus    = 5.27934
)

// EventConfig controls GenerateEvent.
type EventConfig struct {
	Bz float64
	// Signals is the number of χc1 → J/ψ(→e⁺e⁻) π⁺ decays.
	Signals int
	// Background is the number of unrelated tracks.
	Background int
	// Sigma is the track position resolution.
	Sigma float64
	// PVSigma is the primary-vertex resolution.
	PVSigma float64
	// MC attaches generated particles and track labels.
	MC bool
	// NonPrompt inserts a B⁺ ancestor above every χc1.
	NonPrompt bool
}

// DefaultEventConfig returns a small signal-only Monte Carlo event.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		Bz:      5,
		Signals: 1,
		Sigma:   1e-3,
		PVSigma: 1e-3,
		MC:      true,
	}
}

// GenerateEvent builds one synthetic event. Signal decays happen at a
// displaced vertex near the collision; every daughter is a track that
// passes exactly through that vertex.
func GenerateEvent(rng *RNG, id int, cfg EventConfig) model.Event {
	ev := model.Event{
		Collision: model.Collision{
			ID:  id,
			Pos: rng.PointInBox(cfg.PVSigma),
			Cov: kinematics.Isotropic(cfg.PVSigma * cfg.PVSigma),
		},
	}

	var tree Tree
	nextID := id * 1000

	addTrack := func(point, mom r3.Vec, charge, label int) int {
		tid := nextID
		nextID++
		st := TrackThrough(tid, point, mom, charge, rng.Uniform(1, 5), cfg.Bz, cfg.Sigma)
		ev.Tracks = append(ev.Tracks, model.Track{State: st, Label: label})
		return tid
	}

	for i := 0; i < cfg.Signals; i++ {
		sv := r3.Add(ev.Collision.Pos, r3.Scale(0.02, rng.UnitVec()))
		dir := rng.UnitVec()
		dir.Z *= 0.5
		pChic := rng.Uniform(2, 10)

		pJpsi, pPi := TwoBodyDecay(rng, MassChic1, MassJPsi, MassPion, dir, pChic)
		pEm, pEp := TwoBodyDecay(rng, MassJPsi, MassElectron, MassElectron, pJpsi, r3.Norm(pJpsi))

		labels := [4]int{model.NoLabel, model.NoLabel, model.NoLabel, model.NoLabel}
		if cfg.MC {
			mother := -1
			if cfg.NonPrompt {
				mother = tree.Add(521)
			}
			var chic int
			if mother >= 0 {
				chic = tree.Add(pdg.Chic1, mother)
			} else {
				chic = tree.Add(pdg.Chic1)
			}
			jpsi := tree.Add(pdg.JPsi, chic)
			pi := tree.Add(pdg.PiPlus, chic)
			em := tree.Add(pdg.Electron, jpsi)
			ep := tree.Add(-pdg.Electron, jpsi)
			labels = [4]int{jpsi, pi, em, ep}
			for _, l := range labels {
				tree.Particles[l].Vertex = sv
			}
		}

		d0 := addTrack(sv, pEm, -1, labels[2])
		d1 := addTrack(sv, pEp, +1, labels[3])
		addTrack(sv, pPi, +1, labels[1])

		ev.Composites = append(ev.Composites, model.Composite{
			ID:        len(ev.Composites),
			Daughters: [2]int{d0, d1},
			SV:        sv,
			Mom:       r3.Add(pEm, pEp),
			HFFlag:    model.JpsiToEE.Bit(),
			SelStatus: model.SelParticle,
		})
	}

	for i := 0; i < cfg.Background; i++ {
		mom := r3.Scale(rng.Uniform(0.3, 3), rng.UnitVec())
		charge := 1
		if rng.Intn(2) == 0 {
			charge = -1
		}
		origin := r3.Add(ev.Collision.Pos, rng.PointInBox(0.5))
		addTrack(origin, mom, charge, model.NoLabel)
	}

	if cfg.MC {
		ev.Particles = tree.Particles
	}
	return ev
}

// ExpectedMass returns the invariant mass of a composite of mass mc and
// momentum pc combined with a prong of mass m and momentum p.
func ExpectedMass(pc r3.Vec, mc float64, p r3.Vec, m float64) float64 {
	e := math.Sqrt(r3.Norm2(pc)+mc*mc) + math.Sqrt(r3.Norm2(p)+m*m)
	s := r3.Norm2(r3.Add(pc, p))
	return math.Sqrt(math.Max(e*e-s, 0))
}
