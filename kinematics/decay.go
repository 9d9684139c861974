package kinematics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNegativeVariance signals a projected variance below zero. For positive
// semi-definite inputs this cannot happen, so it always points at a broken
// covariance upstream.
var ErrNegativeVariance = errors.New("kinematics: negative projected variance")

// PointDirection returns the azimuth phi and the elevation theta (measured
// from the transverse plane) of the line from -> to.
func PointDirection(from, to r3.Vec) (phi, theta float64) {
	d := r3.Sub(to, from)
	phi = math.Atan2(d.Y, d.X)
	theta = math.Atan2(d.Z, math.Hypot(d.X, d.Y))
	return phi, theta
}

// RotatedXX projects c onto the unit direction given by (phi, theta).
func RotatedXX(c Cov3, phi, theta float64) float64 {
	cp, sp := math.Cos(phi), math.Sin(phi)
	ct, st := math.Cos(theta), math.Sin(theta)
	return c[0]*cp*cp*ct*ct +
		c[1]*2*cp*sp*ct*ct +
		c[2]*sp*sp*ct*ct +
		c[3]*2*cp*ct*st +
		c[4]*2*sp*ct*st +
		c[5]*st*st
}

// DecayLength is the 3D distance between pv and sv.
func DecayLength(pv, sv r3.Vec) float64 {
	return r3.Norm(r3.Sub(sv, pv))
}

// DecayLengthXY is the transverse distance between pv and sv.
func DecayLengthXY(pv, sv r3.Vec) float64 {
	return math.Hypot(sv.X-pv.X, sv.Y-pv.Y)
}

// DecayLengthErrors returns the uncertainty of the decay length and of its
// transverse projection, from the summed covariances projected on the pv->sv
// line.
func DecayLengthErrors(pv, sv r3.Vec, pvCov, svCov Cov3) (errLen, errLenXY float64, err error) {
	phi, theta := PointDirection(pv, sv)

	v := RotatedXX(pvCov, phi, theta) + RotatedXX(svCov, phi, theta)
	vxy := RotatedXX(pvCov, phi, 0) + RotatedXX(svCov, phi, 0)

	if !(v >= 0) {
		return 0, 0, fmt.Errorf("%w: decay length variance %g", ErrNegativeVariance, v)
	}
	if !(vxy >= 0) {
		return 0, 0, fmt.Errorf("%w: transverse decay length variance %g", ErrNegativeVariance, vxy)
	}
	return math.Sqrt(v), math.Sqrt(vxy), nil
}

// CosPointingAngle is the cosine of the angle between the flight line pv->sv
// and the momentum p. It returns 0 when either vector vanishes.
func CosPointingAngle(pv, sv, p r3.Vec) float64 {
	d := r3.Sub(sv, pv)
	nd, np := r3.Norm(d), r3.Norm(p)
	if nd == 0 || np == 0 {
		return 0
	}
	return r3.Dot(d, p) / (nd * np)
}
