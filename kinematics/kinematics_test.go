package kinematics_test

import (
	"math"
	"testing"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestInvariantMass_TwoBody(t *testing.T) {
	// Back-to-back decay of a particle at rest.
	const m, md = 3.0969, 0.000511
	pstar := math.Sqrt(m*m/4 - md*md)

	got := kinematics.InvariantMass(
		kinematics.Prong{P: r3.Vec{X: pstar}, M: md},
		kinematics.Prong{P: r3.Vec{X: -pstar}, M: md},
	)
	assert.InDelta(t, m, got, 1e-9)
}

func TestInvariantMass_Boosted(t *testing.T) {
	rng := testutil.NewRNG(7)
	for i := 0; i < 100; i++ {
		mother := 1 + 5*rng.Float64()
		m1, m2 := 0.1*rng.Float64(), 0.2*rng.Float64()
		p1, p2 := testutil.TwoBodyDecay(rng, mother, m1, m2, rng.UnitVec(), 10*rng.Float64())

		got := kinematics.InvariantMass(kinematics.Prong{P: p1, M: m1}, kinematics.Prong{P: p2, M: m2})
		assert.InDelta(t, mother, got, 1e-9*mother)
	}
}

func TestInvariantMass_MasslessCollinear(t *testing.T) {
	got := kinematics.InvariantMass(
		kinematics.Prong{P: r3.Vec{Z: 1}},
		kinematics.Prong{P: r3.Vec{Z: 2}},
	)
	assert.Equal(t, 0.0, got)
}

func TestRapidity(t *testing.T) {
	assert.InDelta(t, 0, kinematics.Rapidity(r3.Vec{X: 1}, 3.1), 1e-12)

	p := r3.Vec{X: 1, Z: 2}
	m := 3.0969
	e := kinematics.Energy(p, m)
	assert.InDelta(t, 0.5*math.Log((e+2)/(e-2)), kinematics.Rapidity(p, m), 1e-12)
	assert.True(t, math.IsInf(kinematics.Rapidity(r3.Vec{Z: 1}, 0), 1))
	assert.True(t, math.IsInf(kinematics.Rapidity(r3.Vec{Z: -1}, 0), -1))
}

func TestPointDirection(t *testing.T) {
	phi, theta := kinematics.PointDirection(r3.Vec{}, r3.Vec{Y: 1})
	assert.InDelta(t, math.Pi/2, phi, 1e-12)
	assert.InDelta(t, 0, theta, 1e-12)

	phi, theta = kinematics.PointDirection(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 1, Y: 1, Z: 3})
	assert.InDelta(t, 0, phi, 1e-12)
	assert.InDelta(t, math.Pi/2, theta, 1e-12)
}

func TestRotatedXX_MatchesQuadraticForm(t *testing.T) {
	rng := testutil.NewRNG(11)
	for i := 0; i < 200; i++ {
		c := rng.PSDCov3(1e-3)
		phi := (2*rng.Float64() - 1) * math.Pi
		theta := (rng.Float64() - 0.5) * math.Pi

		n := r3.Vec{
			X: math.Cos(phi) * math.Cos(theta),
			Y: math.Sin(phi) * math.Cos(theta),
			Z: math.Sin(theta),
		}
		var want float64
		comps := [3]float64{n.X, n.Y, n.Z}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				want += comps[a] * c.At(a, b) * comps[b]
			}
		}
		assert.InDelta(t, want, kinematics.RotatedXX(c, phi, theta), 1e-15)
	}
}

func TestDecayLengthErrors_NonNegativeOnPSDBattery(t *testing.T) {
	rng := testutil.NewRNG(42)
	for i := 0; i < 1000; i++ {
		pv := rng.PointInBox(0.01)
		sv := rng.PointInBox(5)
		errL, errLXY, err := kinematics.DecayLengthErrors(pv, sv, rng.PSDCov3(1e-6), rng.PSDCov3(1e-3))
		require.NoError(t, err, "iteration %d", i)

		for _, v := range []float64{errL, errLXY} {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestDecayLengthErrors_IsotropicEqualsSigma(t *testing.T) {
	const eps = 1e-4
	errL, errLXY, err := kinematics.DecayLengthErrors(
		r3.Vec{}, r3.Vec{X: 1, Z: 1},
		kinematics.Isotropic(eps), kinematics.Isotropic(eps),
	)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2*eps), errL, 1e-12)
	assert.InDelta(t, math.Sqrt(2*eps), errLXY, 1e-12)
}

func TestDecayLengthErrors_NegativeVarianceIsDistinguishable(t *testing.T) {
	bad := kinematics.Diag(-1, -1, -1)
	_, _, err := kinematics.DecayLengthErrors(r3.Vec{}, r3.Vec{X: 1}, bad, kinematics.Cov3{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kinematics.ErrNegativeVariance)
}

func TestCosPointingAngle(t *testing.T) {
	assert.InDelta(t, 1, kinematics.CosPointingAngle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 3}), 1e-12)
	assert.InDelta(t, -1, kinematics.CosPointingAngle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: -3}), 1e-12)
	assert.Equal(t, 0.0, kinematics.CosPointingAngle(r3.Vec{}, r3.Vec{}, r3.Vec{X: 1}))
}

func TestCov3_PackingOrder(t *testing.T) {
	c := kinematics.Cov3{1, 2, 3, 4, 5, 6}
	assert.Equal(t, 1.0, c.At(0, 0))
	assert.Equal(t, 2.0, c.At(0, 1))
	assert.Equal(t, 2.0, c.At(1, 0))
	assert.Equal(t, 3.0, c.At(1, 1))
	assert.Equal(t, 4.0, c.At(2, 0))
	assert.Equal(t, 5.0, c.At(2, 1))
	assert.Equal(t, 6.0, c.At(2, 2))

	back := kinematics.Cov3From(c.Sym(), 0)
	assert.Equal(t, c, back)
}
