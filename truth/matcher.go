package truth

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/pdg"
)

// Signature describes the expected decay chain.
type Signature struct {
	// Mother is the type code of the candidate particle.
	Mother int `mapstructure:"mother"`
	// Daughters are the direct daughters of Mother at generator level.
	Daughters []int `mapstructure:"daughters"`
	// Resonance is the daughter that decays further.
	Resonance int `mapstructure:"resonance"`
	// ResonanceDaughters are the direct daughters of Resonance.
	ResonanceDaughters []int `mapstructure:"resonance_daughters"`
	// RecDaughters are the final-state codes of the reconstructed tracks,
	// ordered as second prong, composite daughter 0, composite daughter 1.
	RecDaughters []int `mapstructure:"rec_daughters"`
	// RecDepth bounds the reconstructed-side walks.
	RecDepth int `mapstructure:"rec_depth" validate:"gte=1"`
	// GenDepth bounds the generator-level daughter search.
	GenDepth int `mapstructure:"gen_depth" validate:"gte=1"`
}

// Config controls the Matcher.
type Config struct {
	Signature Signature `mapstructure:"signature"`
	// OriginDepth bounds the beauty-ancestor search. Negative is unbounded.
	OriginDepth         int               `mapstructure:"origin_depth"`
	AcceptAntiParticles bool              `mapstructure:"accept_anti_particles"`
	Flag                model.CascadeType `mapstructure:"-"`
	Channel             model.Channel     `mapstructure:"-"`
}

// DefaultConfig returns the χc1 → J/ψ(→e⁻e⁺) π⁺ signature.
func DefaultConfig() Config {
	return Config{
		Signature: Signature{
			Mother:             pdg.Chic1,
			Daughters:          []int{pdg.JPsi, pdg.PiPlus},
			Resonance:          pdg.JPsi,
			ResonanceDaughters: []int{pdg.Electron, -pdg.Electron},
			RecDaughters:       []int{pdg.PiPlus, pdg.Electron, -pdg.Electron},
			RecDepth:           2,
			GenDepth:           1,
		},
		OriginDepth:         20,
		AcceptAntiParticles: true,
		Flag:                model.ChicToJpsiToEEGamma,
		Channel:             model.ChannelJpsiToEE,
	}
}

// Matcher labels candidates and generated particles. It is stateless and
// safe for concurrent use.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a Matcher.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match runs both passes concurrently.
func (m *Matcher) Match(ctx context.Context, ev *model.Event, cands []model.Candidate) (rec, gen []model.MatchResult, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec = m.MatchReconstructed(ev, cands)
		return nil
	})
	g.Go(func() error {
		gen = m.MatchGenerated(ev)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rec, gen, ctx.Err()
}

// MatchReconstructed returns one result per candidate.
func (m *Matcher) MatchReconstructed(ev *model.Event, cands []model.Candidate) []model.MatchResult {
	out := make([]model.MatchResult, len(cands))
	if len(ev.Particles) == 0 {
		return out
	}

	t := NewTable(ev.Particles)
	sig := m.cfg.Signature
	for i := range cands {
		labels, ok := candidateLabels(ev, &cands[i])
		if !ok {
			continue
		}
		anc, ok := t.MatchRec(labels, sig.Mother, sig.RecDaughters, m.cfg.AcceptAntiParticles, sig.RecDepth)
		if !ok {
			continue
		}
		out[i] = m.result(t, anc.Index, anc.Sign)
	}
	return out
}

// MatchGenerated returns one result per generated particle.
func (m *Matcher) MatchGenerated(ev *model.Event) []model.MatchResult {
	out := make([]model.MatchResult, len(ev.Particles))
	t := NewTable(ev.Particles)
	sig := m.cfg.Signature
	anti := m.cfg.AcceptAntiParticles

	for i := range ev.Particles {
		sign, ok := t.MatchGen(i, sig.Mother, sig.Daughters, anti, sig.GenDepth)
		if !ok {
			continue
		}
		if sig.Resonance != 0 {
			res, found := resonance(t, i, sig.Resonance)
			if !found {
				continue
			}
			if _, ok := t.MatchGen(res, sig.Resonance, sig.ResonanceDaughters, anti, 1); !ok {
				continue
			}
		}
		out[i] = m.result(t, i, sign)
	}
	return out
}

func (m *Matcher) result(t *Table, idx int, sign int8) model.MatchResult {
	origin := model.OriginPrompt
	if _, ok := t.FindAncestor(idx, pdg.IsBeauty, m.cfg.OriginDepth); ok {
		origin = model.OriginNonPrompt
	}
	return model.MatchResult{
		Flag:    model.NewDecayFlag(m.cfg.Flag, sign),
		Origin:  origin,
		Channel: m.cfg.Channel,
	}
}

// resonance returns the direct daughter of idx with type code |code|.
func resonance(t *Table, idx, code int) (int, bool) {
	for _, d := range t.Daughters(idx, []int{code}, 1) {
		if pdg.Abs(t.PDG(d)) == pdg.Abs(code) {
			return d, true
		}
	}
	return 0, false
}

// candidateLabels resolves the generated-particle labels of the second
// prong and both composite daughters.
func candidateLabels(ev *model.Event, c *model.Candidate) ([]int, bool) {
	var comp *model.Composite
	for i := range ev.Composites {
		if ev.Composites[i].ID == c.CompositeID {
			comp = &ev.Composites[i]
			break
		}
	}
	if comp == nil {
		return nil, false
	}

	ids := [3]int{c.TrackID, comp.Daughters[0], comp.Daughters[1]}
	labels := make([]int, 0, len(ids))
	for _, id := range ids {
		ti, ok := ev.TrackByID(id)
		if !ok || ev.Tracks[ti].Label == model.NoLabel {
			return nil, false
		}
		labels = append(labels, ev.Tracks[ti].Label)
	}
	return labels, true
}
