package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Prong is a momentum with a mass hypothesis.
type Prong struct {
	P r3.Vec
	M float64
}

// Pt returns the transverse momentum of p.
func Pt(p r3.Vec) float64 {
	return math.Hypot(p.X, p.Y)
}

// Energy returns sqrt(|p|² + m²).
func Energy(p r3.Vec, m float64) float64 {
	return math.Sqrt(r3.Norm2(p) + m*m)
}

// InvariantMass combines the prongs' four-momenta. A slightly negative mass
// squared from rounding is reported as zero.
func InvariantMass(prongs ...Prong) float64 {
	var (
		e   float64
		sum r3.Vec
	)
	for _, pr := range prongs {
		e += Energy(pr.P, pr.M)
		sum = r3.Add(sum, pr.P)
	}
	m2 := e*e - r3.Norm2(sum)
	if m2 <= 0 {
		return 0
	}
	return math.Sqrt(m2)
}

// Rapidity returns the longitudinal rapidity of a particle of mass m.
func Rapidity(p r3.Vec, m float64) float64 {
	e := Energy(p, m)
	switch {
	case e-p.Z <= 0:
		return math.Inf(1)
	case e+p.Z <= 0:
		return math.Inf(-1)
	}
	return 0.5 * math.Log((e+p.Z)/(e-p.Z))
}
