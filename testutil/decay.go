package testutil

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/track"
)

// TwoBodyDecay decays a mother of mass m and momentum magnitude p along dir
// into daughters of masses m1 and m2, isotropically in the rest frame.
// It panics if the decay is kinematically forbidden.
func TwoBodyDecay(rng *RNG, m, m1, m2 float64, dir r3.Vec, p float64) (r3.Vec, r3.Vec) {
	if m < m1+m2 {
		panic("testutil: two-body decay below threshold")
	}
	pstar := math.Sqrt((m*m-(m1+m2)*(m1+m2))*(m*m-(m1-m2)*(m1-m2))) / (2 * m)
	u := rng.UnitVec()

	p1 := r3.Scale(pstar, u)
	p2 := r3.Scale(-pstar, u)
	if p == 0 {
		return p1, p2
	}

	n := r3.Unit(dir)
	e := math.Sqrt(p*p + m*m)
	gamma, gb := e/m, p/m

	boost := func(ps r3.Vec, md float64) r3.Vec {
		es := math.Sqrt(r3.Norm2(ps) + md*md)
		par := r3.Dot(ps, n)
		return r3.Add(ps, r3.Scale((gamma-1)*par+gb*es, n))
	}
	return boost(p1, m1), boost(p2, m2)
}

// TrackThrough returns a state whose trajectory passes through point with
// momentum mom there. The reference point lies a path length back before it.
// The covariance is isotropic in position with standard deviation sigma and
// carries a small relative momentum uncertainty.
func TrackThrough(id int, point, mom r3.Vec, charge int, back, bz, sigma float64) track.State {
	at := track.State{ID: id, Pos: point, Mom: mom, Charge: charge}
	ref := at.Propagate(-back, bz)

	dp := 1e-3 * r3.Norm(mom)
	ref.Cov = track.NewCov(kinematics.Isotropic(sigma*sigma), kinematics.Isotropic(dp*dp))
	return ref
}
