package track_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/testutil"
	"github.com/hupe1980/hfcand/track"
)

const bz = 5.0

func TestOmega_Radius(t *testing.T) {
	// pT = 1 GeV in 5 kG: R = pT / (B2C·Bz) ≈ 667 cm.
	st := track.State{Mom: r3.Vec{X: 1}, Charge: 1}
	r := 1 / math.Abs(st.Omega(bz))
	assert.InDelta(t, 1/(track.B2C*bz), r, 1e-9)

	st.Charge = 0
	assert.Equal(t, 0.0, st.Omega(bz))
}

func TestAt_StaysOnCircle(t *testing.T) {
	st := track.State{Mom: r3.Vec{X: 0.3, Y: 0.1, Z: 0.4}, Charge: -1}
	pt := st.Pt()
	w := st.Omega(bz)
	p := st.P()
	radius := pt / (p * math.Abs(w))

	// Circle centre from the curvature direction at l=0.
	start := st.At(0, bz)
	centre := r3.Add(st.Pos, r3.Scale(radius/r3.Norm(start.Curv), start.Curv))

	for _, l := range []float64{-50, -1, 0.5, 10, 200} {
		pnt := st.At(l, bz)
		d := math.Hypot(pnt.Pos.X-centre.X, pnt.Pos.Y-centre.Y)
		assert.InDelta(t, radius, d, 1e-6*radius, "l=%v", l)
		assert.InDelta(t, st.Pos.Z+l*st.Mom.Z/p, pnt.Pos.Z, 1e-9)
		assert.InDelta(t, 1, r3.Norm(pnt.Dir), 1e-12)
	}
}

func TestAt_TangentMatchesDerivative(t *testing.T) {
	st := track.State{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Mom: r3.Vec{X: 0.2, Y: -0.5, Z: 0.1}, Charge: 1}
	const l, h = 7.0, 1e-5

	plus, minus := st.At(l+h, bz), st.At(l-h, bz)
	num := r3.Scale(1/(2*h), r3.Sub(plus.Pos, minus.Pos))
	assert.InDelta(t, 0, r3.Norm(r3.Sub(num, st.At(l, bz).Dir)), 1e-7)

	numCurv := r3.Scale(1/(2*h), r3.Sub(plus.Dir, minus.Dir))
	assert.InDelta(t, 0, r3.Norm(r3.Sub(numCurv, st.At(l, bz).Curv)), 1e-7)
}

func TestPropagate_DoesNotMutate(t *testing.T) {
	st := track.State{ID: 3, Mom: r3.Vec{X: 1, Z: 1}, Charge: 1,
		Cov: track.NewCov(kinematics.Isotropic(1e-4), kinematics.Isotropic(1e-6))}
	orig := st

	moved := st.Propagate(10, bz)
	assert.Equal(t, orig, st)
	assert.Equal(t, 3, moved.ID)
	assert.InDelta(t, st.P(), moved.P(), 1e-12)
	assert.NotEqual(t, st.Pos, moved.Pos)
}

func TestPropagate_CovarianceGrowsWithPath(t *testing.T) {
	st := track.State{Mom: r3.Vec{X: 1}, Charge: 1,
		Cov: track.NewCov(kinematics.Isotropic(1e-6), kinematics.Isotropic(1e-4))}

	near := st.Propagate(1, bz).Cov.Position()
	far := st.Propagate(100, bz).Cov.Position()
	assert.Greater(t, far.At(1, 1), near.At(1, 1))

	// Straight neutral track: transverse position error grows as (l·σp/p)².
	n := st
	n.Charge = 0
	c := n.Propagate(100, bz).Cov.Position()
	assert.InDelta(t, 1e-6+100*100*1e-4, c.At(1, 1), 1e-9)
	assert.InDelta(t, 1e-6, c.At(0, 0), 1e-12)
}

func TestPropagate_NeutralIsStraight(t *testing.T) {
	st := track.State{Mom: r3.Vec{X: 1, Y: 1}, Charge: 0}
	got := st.Propagate(math.Sqrt2, bz)
	assert.InDelta(t, 1, got.Pos.X, 1e-12)
	assert.InDelta(t, 1, got.Pos.Y, 1e-12)
}

func TestCov_Blocks(t *testing.T) {
	pos := kinematics.Cov3{1, 2, 3, 4, 5, 6}
	mom := kinematics.Cov3{7, 8, 9, 10, 11, 12}
	c := track.NewCov(pos, mom)

	assert.Equal(t, pos, c.Position())
	assert.Equal(t, mom, c.Momentum())
	assert.Equal(t, 0.0, c.At(0, 4))
	assert.Equal(t, c, track.CovFrom(c.Sym()))
}

func TestPropagateToDCA_Straight(t *testing.T) {
	// Neutral track along x offset by 0.2 in y.
	st := track.State{Pos: r3.Vec{X: -5, Y: 0.2}, Mom: r3.Vec{X: 1}, Charge: 0,
		Cov: track.NewCov(kinematics.Isotropic(1e-4), kinematics.Cov3{})}
	v := track.Vertex{Cov: kinematics.Isotropic(1e-4)}

	at, dca, err := st.PropagateToDCA(v, bz)
	require.NoError(t, err)
	assert.InDelta(t, 0, at.Pos.X, 1e-9)
	assert.InDelta(t, 0.2, dca.Y, 1e-9)
	assert.InDelta(t, 2e-4, dca.SigmaY2, 1e-12)
	assert.InDelta(t, math.Sqrt(2e-4), dca.SigmaY(), 1e-12)
}

func TestPropagateToDCA_HelixThroughVertex(t *testing.T) {
	rng := testutil.NewRNG(3)
	for i := 0; i < 50; i++ {
		v := rng.PointInBox(0.1)
		mom := r3.Scale(rng.Uniform(0.2, 5), rng.UnitVec())
		st := testutil.TrackThrough(i, v, mom, 1, rng.Uniform(1, 20), bz, 1e-3)

		at, dca, err := st.PropagateToDCA(track.Vertex{Pos: v}, bz)
		require.NoError(t, err)
		assert.InDelta(t, 0, dca.Y, 1e-7)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(at.Pos, v)), 1e-6)
		assert.GreaterOrEqual(t, dca.SigmaY2, 0.0)
	}
}

func TestPropagateToDCA_ZeroMomentum(t *testing.T) {
	_, _, err := track.State{}.PropagateToDCA(track.Vertex{}, bz)
	assert.ErrorIs(t, err, track.ErrZeroMomentum)
}

func TestTransverseCov(t *testing.T) {
	c := track.TransverseCov(kinematics.Isotropic(2), r3.Vec{Z: 3})
	assert.InDelta(t, 2, c.At(0, 0), 1e-12)
	assert.InDelta(t, 2, c.At(1, 1), 1e-12)
	assert.InDelta(t, 0, c.At(2, 2), 1e-12)
}
