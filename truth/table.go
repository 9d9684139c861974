package truth

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/pdg"
)

// Ancestor is the result of a mother search.
type Ancestor struct {
	// Index of the ancestor in the table.
	Index int
	// Sign is +1 for the particle, -1 for its antiparticle.
	Sign int8
	// Depth is the number of generations walked.
	Depth int
}

// Table is a read-only, index-addressed view of generated particles.
type Table struct {
	particles []model.Particle
}

// NewTable wraps particles. The slice is not copied and must not be
// modified while the table is in use.
func NewTable(particles []model.Particle) *Table {
	return &Table{particles: particles}
}

// Len returns the number of particles.
func (t *Table) Len() int { return len(t.particles) }

// Valid reports whether idx addresses a particle.
func (t *Table) Valid(idx int) bool { return idx >= 0 && idx < len(t.particles) }

// PDG returns the type code of particle idx.
func (t *Table) PDG(idx int) int { return t.particles[idx].PDG }

func (t *Table) mother(idx int) (int, bool) {
	ms := t.particles[idx].Mothers
	if len(ms) == 0 || !t.Valid(ms[0]) {
		return 0, false
	}
	return ms[0], true
}

// walk visits the ancestors of idx, generation 1 up to maxDepth, until visit
// returns true. A negative maxDepth walks to the root. Cycles end the walk.
func (t *Table) walk(idx, maxDepth int, visit func(anc, depth int) bool) (int, int, bool) {
	if !t.Valid(idx) {
		return 0, 0, false
	}
	seen := roaring.New()
	seen.Add(uint32(idx))

	cur := idx
	for depth := 1; maxDepth < 0 || depth <= maxDepth; depth++ {
		m, ok := t.mother(cur)
		if !ok || !seen.CheckedAdd(uint32(m)) {
			return 0, 0, false
		}
		if visit(m, depth) {
			return m, depth, true
		}
		cur = m
	}
	return 0, 0, false
}

// Mother returns the nearest ancestor of idx with type code code, or its
// antiparticle when acceptAnti is set, within maxDepth generations.
func (t *Table) Mother(idx, code int, acceptAnti bool, maxDepth int) (Ancestor, bool) {
	var sign int8
	m, depth, ok := t.walk(idx, maxDepth, func(anc, _ int) bool {
		switch c := t.particles[anc].PDG; {
		case c == code:
			sign = 1
		case acceptAnti && c == -code:
			sign = -1
		default:
			return false
		}
		return true
	})
	if !ok {
		return Ancestor{}, false
	}
	return Ancestor{Index: m, Sign: sign, Depth: depth}, true
}

// FindAncestor returns the nearest ancestor whose type code satisfies pred.
func (t *Table) FindAncestor(idx int, pred func(code int) bool, maxDepth int) (int, bool) {
	m, _, ok := t.walk(idx, maxDepth, func(anc, _ int) bool {
		return pred(t.particles[anc].PDG)
	})
	return m, ok
}

// Daughters collects the final-state descendants of idx in depth-first
// order. A descendant is final when it has no daughters, sits maxDepth
// generations below idx, or has a type code in finalPDGs (compared by
// absolute value). A particle without daughters yields nothing.
func (t *Table) Daughters(idx int, finalPDGs []int, maxDepth int) []int {
	if !t.Valid(idx) || len(t.particles[idx].Daughters) == 0 {
		return nil
	}

	type frame struct{ idx, stage int }
	seen := roaring.New()
	seen.Add(uint32(idx))

	var out []int
	stack := []frame{{idx, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.stage > 0 && t.isFinal(f.idx, f.stage, finalPDGs, maxDepth) {
			out = append(out, f.idx)
			continue
		}

		ds := t.particles[f.idx].Daughters
		for i := len(ds) - 1; i >= 0; i-- {
			if t.Valid(ds[i]) && seen.CheckedAdd(uint32(ds[i])) {
				stack = append(stack, frame{ds[i], f.stage + 1})
			}
		}
	}
	return out
}

func (t *Table) isFinal(idx, stage int, finalPDGs []int, maxDepth int) bool {
	p := t.particles[idx]
	if len(p.Daughters) == 0 {
		return true
	}
	if maxDepth >= 0 && stage >= maxDepth {
		return true
	}
	code := pdg.Abs(p.PDG)
	for _, f := range finalPDGs {
		if code == pdg.Abs(f) {
			return true
		}
	}
	return false
}

// MatchGen reports whether particle idx has type code code (or its
// antiparticle) and decays into exactly daughterPDGs within depth
// generations. Daughter codes are compared in any order, sign-flipped for
// antiparticles. It returns the sign of the match.
func (t *Table) MatchGen(idx, code int, daughterPDGs []int, acceptAnti bool, depth int) (int8, bool) {
	if !t.Valid(idx) {
		return 0, false
	}

	var sign int8
	switch c := t.particles[idx].PDG; {
	case c == code:
		sign = 1
	case acceptAnti && c == -code:
		sign = -1
	default:
		return 0, false
	}

	if len(daughterPDGs) == 0 {
		return sign, true
	}
	ds := t.Daughters(idx, daughterPDGs, depth)
	if len(ds) != len(daughterPDGs) {
		return 0, false
	}

	want := append([]int(nil), daughterPDGs...)
	for _, d := range ds {
		if !takeCode(want, t.particles[d].PDG, sign) {
			return 0, false
		}
	}
	return sign, true
}

// MatchRec reports whether the particles at labels are exactly the
// final-state daughters, within depth generations, of one particle of type
// motherPDG. The mother is searched from labels[0].
func (t *Table) MatchRec(labels []int, motherPDG int, daughterPDGs []int, acceptAnti bool, depth int) (Ancestor, bool) {
	if len(labels) == 0 || len(labels) != len(daughterPDGs) {
		return Ancestor{}, false
	}
	for _, l := range labels {
		if !t.Valid(l) {
			return Ancestor{}, false
		}
	}

	anc, ok := t.Mother(labels[0], motherPDG, acceptAnti, depth)
	if !ok {
		return Ancestor{}, false
	}

	all := t.Daughters(anc.Index, daughterPDGs, depth)
	if len(all) != len(labels) {
		return Ancestor{}, false
	}
	set := roaring.New()
	for _, d := range all {
		set.Add(uint32(d))
	}

	want := append([]int(nil), daughterPDGs...)
	for _, l := range labels {
		if !set.Contains(uint32(l)) {
			return Ancestor{}, false
		}
		if !takeCode(want, t.particles[l].PDG, anc.Sign) {
			return Ancestor{}, false
		}
	}
	return anc, true
}

// takeCode finds sign·code' == code in want and clears it.
func takeCode(want []int, code int, sign int8) bool {
	for i, w := range want {
		if w != 0 && code == int(sign)*w {
			want[i] = 0
			return true
		}
	}
	return false
}
