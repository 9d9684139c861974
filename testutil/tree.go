package testutil

import "github.com/hupe1980/hfcand/model"

// Tree builds generated-particle records with consistent mother and
// daughter links.
type Tree struct {
	Particles []model.Particle
}

// Add appends a particle with the given mothers and returns its index.
func (t *Tree) Add(pdg int, mothers ...int) int {
	idx := len(t.Particles)
	t.Particles = append(t.Particles, model.Particle{
		PDG:     pdg,
		Mothers: append([]int(nil), mothers...),
	})
	for _, m := range mothers {
		t.Particles[m].Daughters = append(t.Particles[m].Daughters, idx)
	}
	return idx
}

// Chain appends a linear chain pdgs[0] → pdgs[1] → ... under mother
// (negative for none) and returns the index of every link.
func (t *Tree) Chain(mother int, pdgs ...int) []int {
	out := make([]int, 0, len(pdgs))
	for _, code := range pdgs {
		if mother >= 0 {
			mother = t.Add(code, mother)
		} else {
			mother = t.Add(code)
		}
		out = append(out, mother)
	}
	return out
}
