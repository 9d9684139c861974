package truth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/pdg"
	"github.com/hupe1980/hfcand/testutil"
	"github.com/hupe1980/hfcand/truth"
)

const psi2S = 100443

// chic adds χc1 → J/ψ(→e⁻e⁺) π⁺ under mother and returns the indices of
// χc1, J/ψ, π⁺, e⁻ and e⁺.
func chic(tree *testutil.Tree, mother int) [5]int {
	var c int
	if mother >= 0 {
		c = tree.Add(pdg.Chic1, mother)
	} else {
		c = tree.Add(pdg.Chic1)
	}
	j := tree.Add(pdg.JPsi, c)
	pi := tree.Add(pdg.PiPlus, c)
	em := tree.Add(pdg.Electron, j)
	ep := tree.Add(-pdg.Electron, j)
	return [5]int{c, j, pi, em, ep}
}

func flagged(res []model.MatchResult) []int {
	var out []int
	for i, r := range res {
		if r.Flag.Matched() {
			out = append(out, i)
		}
	}
	return out
}

func TestTable_Mother(t *testing.T) {
	var tree testutil.Tree
	idx := tree.Chain(-1, 521, pdg.Chic1, pdg.JPsi, pdg.Electron)
	tab := truth.NewTable(tree.Particles)

	anc, ok := tab.Mother(idx[3], pdg.Chic1, false, 2)
	require.True(t, ok)
	assert.Equal(t, truth.Ancestor{Index: idx[1], Sign: 1, Depth: 2}, anc)

	_, ok = tab.Mother(idx[3], pdg.Chic1, false, 1)
	assert.False(t, ok)

	anc, ok = tab.Mother(idx[3], -521, true, -1)
	require.True(t, ok)
	assert.Equal(t, int8(-1), anc.Sign)
	assert.Equal(t, 3, anc.Depth)

	_, ok = tab.Mother(idx[3], -521, false, -1)
	assert.False(t, ok)

	// The particle itself is never its own mother.
	_, ok = tab.Mother(idx[1], pdg.Chic1, false, -1)
	assert.False(t, ok)
}

func TestTable_MotherCycle(t *testing.T) {
	ps := []model.Particle{
		{PDG: 1, Mothers: []int{1}},
		{PDG: 2, Mothers: []int{0}},
	}
	tab := truth.NewTable(ps)
	_, ok := tab.Mother(0, 99, false, -1)
	assert.False(t, ok)

	_, ok = tab.FindAncestor(0, func(int) bool { return false }, -1)
	assert.False(t, ok)
}

func TestTable_Daughters(t *testing.T) {
	var tree testutil.Tree
	ids := chic(&tree, -1)
	tab := truth.NewTable(tree.Particles)

	assert.Equal(t, []int{ids[1], ids[2]}, tab.Daughters(ids[0], nil, 1))
	assert.Equal(t, []int{ids[3], ids[4], ids[2]}, tab.Daughters(ids[0], nil, 2))
	assert.Equal(t, []int{ids[1], ids[2]}, tab.Daughters(ids[0], []int{pdg.JPsi}, -1))
	assert.Equal(t, []int{ids[3], ids[4], ids[2]}, tab.Daughters(ids[0], nil, -1))
	assert.Nil(t, tab.Daughters(ids[3], nil, -1))
	assert.Nil(t, tab.Daughters(42, nil, -1))
}

func TestTable_MatchGenAntiparticle(t *testing.T) {
	var tree testutil.Tree
	d := tree.Add(-pdg.D0)
	tree.Add(pdg.KPlus, d)
	tree.Add(-pdg.PiPlus, d)
	tab := truth.NewTable(tree.Particles)

	sign, ok := tab.MatchGen(d, pdg.D0, []int{-pdg.KPlus, pdg.PiPlus}, true, 1)
	require.True(t, ok)
	assert.Equal(t, int8(-1), sign)

	_, ok = tab.MatchGen(d, pdg.D0, []int{-pdg.KPlus, pdg.PiPlus}, false, 1)
	assert.False(t, ok)

	// Daughter codes are not sign-flipped twice.
	_, ok = tab.MatchGen(d, pdg.D0, []int{pdg.KPlus, -pdg.PiPlus}, true, 1)
	assert.False(t, ok)
}

func TestMatchGenerated_Exact(t *testing.T) {
	var tree testutil.Tree
	ids := chic(&tree, -1)
	ev := &model.Event{Particles: tree.Particles}

	res := truth.NewMatcher(truth.DefaultConfig()).MatchGenerated(ev)
	require.Len(t, res, len(tree.Particles))
	assert.Equal(t, []int{ids[0]}, flagged(res))

	r := res[ids[0]]
	assert.Equal(t, model.NewDecayFlag(model.ChicToJpsiToEEGamma, 1), r.Flag)
	assert.Equal(t, model.OriginPrompt, r.Origin)
	assert.Equal(t, model.ChannelJpsiToEE, r.Channel)
}

func TestMatchGenerated_SwappedDaughter(t *testing.T) {
	var tree testutil.Tree
	ids := chic(&tree, -1)
	tree.Particles[ids[2]].PDG = pdg.KPlus
	ev := &model.Event{Particles: tree.Particles}
	assert.Empty(t, flagged(truth.NewMatcher(truth.DefaultConfig()).MatchGenerated(ev)))

	var tree2 testutil.Tree
	ids = chic(&tree2, -1)
	tree2.Particles[ids[4]].PDG = -13
	ev = &model.Event{Particles: tree2.Particles}
	assert.Empty(t, flagged(truth.NewMatcher(truth.DefaultConfig()).MatchGenerated(ev)))
}

func TestMatchGenerated_TooDeep(t *testing.T) {
	var tree testutil.Tree
	c := tree.Add(pdg.Chic1)
	mid := tree.Add(psi2S, c)
	tree.Add(pdg.PiPlus, c)
	j := tree.Add(pdg.JPsi, mid)
	tree.Add(pdg.Electron, j)
	tree.Add(-pdg.Electron, j)

	ev := &model.Event{Particles: tree.Particles}
	assert.Empty(t, flagged(truth.NewMatcher(truth.DefaultConfig()).MatchGenerated(ev)))
}

func TestMatchGenerated_EmptyAndUnrelated(t *testing.T) {
	m := truth.NewMatcher(truth.DefaultConfig())
	assert.Empty(t, m.MatchGenerated(&model.Event{}))

	var tree testutil.Tree
	d := tree.Add(pdg.D0)
	tree.Add(-pdg.KPlus, d)
	tree.Add(pdg.PiPlus, d)
	tree.Add(pdg.Photon)
	res := m.MatchGenerated(&model.Event{Particles: tree.Particles})
	assert.Len(t, res, 4)
	assert.Empty(t, flagged(res))
}

func TestOrigin(t *testing.T) {
	cfg := truth.DefaultConfig()
	cfg.OriginDepth = 3

	cases := []struct {
		name  string
		chain []int
		want  model.Origin
	}{
		{"no ancestor", nil, model.OriginPrompt},
		{"b hadron parent", []int{521}, model.OriginNonPrompt},
		{"b quark", []int{pdg.Bottom, 10443}, model.OriginNonPrompt},
		{"at depth bound", []int{511, 10443, 10441}, model.OriginNonPrompt},
		{"beyond depth bound", []int{511, 10443, 10441, 10443}, model.OriginPrompt},
		{"charm only", []int{pdg.Charm, 4122}, model.OriginPrompt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tree testutil.Tree
			top := -1
			if len(tc.chain) > 0 {
				idx := tree.Chain(-1, tc.chain...)
				top = idx[len(idx)-1]
			}
			ids := chic(&tree, top)

			res := truth.NewMatcher(cfg).MatchGenerated(&model.Event{Particles: tree.Particles})
			require.True(t, res[ids[0]].Flag.Matched())
			assert.Equal(t, tc.want, res[ids[0]].Origin)
		})
	}
}

// recoEvent attaches three labelled tracks and one composite per chain.
func recoEvent(particles []model.Particle, labels ...[3]int) (*model.Event, []model.Candidate) {
	ev := &model.Event{Particles: particles}
	var cands []model.Candidate
	for i, l := range labels {
		base := 10 * i
		for k := 0; k < 3; k++ {
			tr := model.Track{Label: l[k]}
			tr.ID = base + k
			ev.Tracks = append(ev.Tracks, tr)
		}
		ev.Composites = append(ev.Composites, model.Composite{ID: i, Daughters: [2]int{base + 1, base + 2}})
		cands = append(cands, model.Candidate{CompositeID: i, TrackID: base})
	}
	return ev, cands
}

func TestMatchReconstructed(t *testing.T) {
	var tree testutil.Tree
	b := tree.Add(521)
	a := chic(&tree, b)
	c := chic(&tree, -1)

	ev, cands := recoEvent(tree.Particles,
		[3]int{a[2], a[3], a[4]},          // exact, non-prompt
		[3]int{c[2], c[3], c[4]},          // exact, prompt
		[3]int{c[2], a[3], a[4]},          // prong from another χc1
		[3]int{a[2], a[3], model.NoLabel}, // unlabelled track
		[3]int{a[2], a[4], a[3]},          // daughters swapped within the composite
	)

	res := truth.NewMatcher(truth.DefaultConfig()).MatchReconstructed(ev, cands)
	require.Len(t, res, len(cands))

	assert.Equal(t, model.OriginNonPrompt, res[0].Origin)
	assert.Equal(t, model.OriginPrompt, res[1].Origin)
	assert.Equal(t, []int{0, 1, 4}, flagged(res))
	assert.Equal(t, model.MatchResult{}, res[2])
}

func TestMatchReconstructed_TooDeep(t *testing.T) {
	var tree testutil.Tree
	c := tree.Add(pdg.Chic1)
	mid := tree.Add(psi2S, c)
	pi := tree.Add(pdg.PiPlus, c)
	j := tree.Add(pdg.JPsi, mid)
	em := tree.Add(pdg.Electron, j)
	ep := tree.Add(-pdg.Electron, j)

	ev, cands := recoEvent(tree.Particles, [3]int{pi, em, ep})
	res := truth.NewMatcher(truth.DefaultConfig()).MatchReconstructed(ev, cands)
	assert.Empty(t, flagged(res))
}

func TestMatchReconstructed_NoParticles(t *testing.T) {
	cands := []model.Candidate{{}, {}}
	res := truth.NewMatcher(truth.DefaultConfig()).MatchReconstructed(&model.Event{}, cands)
	assert.Equal(t, []model.MatchResult{{}, {}}, res)
}

func TestMatch_BothPasses(t *testing.T) {
	var tree testutil.Tree
	a := chic(&tree, -1)
	ev, cands := recoEvent(tree.Particles, [3]int{a[2], a[3], a[4]})

	rec, gen, err := truth.NewMatcher(truth.DefaultConfig()).Match(context.Background(), ev, cands)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, flagged(rec))
	assert.Equal(t, []int{a[0]}, flagged(gen))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = truth.NewMatcher(truth.DefaultConfig()).Match(ctx, ev, cands)
	assert.ErrorIs(t, err, context.Canceled)
}
