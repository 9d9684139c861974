package track

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
)

// Vertex is a reference point with its covariance, typically the primary
// interaction point.
type Vertex struct {
	Pos r3.Vec
	Cov kinematics.Cov3
}

// DCA is the distance of closest approach to a vertex. Y is the signed
// transverse offset, Z the longitudinal one; variances include the vertex
// covariance.
type DCA struct {
	Y       float64
	Z       float64
	SigmaY2 float64
	SigmaZ2 float64
}

// SigmaY returns the transverse impact-parameter uncertainty.
func (d DCA) SigmaY() float64 { return math.Sqrt(math.Max(d.SigmaY2, 0)) }

const maxDCAIterations = 20

// PathToDCA returns the path length at which the trajectory is closest to
// v in the transverse plane.
func (s State) PathToDCA(v r3.Vec, bz float64) (float64, error) {
	if s.P() == 0 {
		return 0, ErrZeroMomentum
	}
	start := s.At(0, bz)
	exy := math.Hypot(start.Dir.X, start.Dir.Y)
	if exy < 1e-9 {
		// Along z: the transverse distance is constant, take the 3D closest point.
		return (v.Z - s.Pos.Z) / start.Dir.Z, nil
	}

	d := r3.Sub(v, s.Pos)
	l := (d.X*start.Dir.X + d.Y*start.Dir.Y) / (exy * exy)

	for i := 0; i < maxDCAIterations; i++ {
		pt := s.At(l, bz)
		rx, ry := pt.Pos.X-v.X, pt.Pos.Y-v.Y
		g1 := rx*pt.Dir.X + ry*pt.Dir.Y
		g2 := pt.Dir.X*pt.Dir.X + pt.Dir.Y*pt.Dir.Y + rx*pt.Curv.X + ry*pt.Curv.Y
		if g2 <= 0 {
			break
		}
		dl := -g1 / g2
		l += dl
		if math.Abs(dl) < 1e-9 {
			break
		}
	}
	return l, nil
}

// PropagateToDCA returns the state moved to its closest transverse approach
// to v together with the impact parameters.
func (s State) PropagateToDCA(v Vertex, bz float64) (State, DCA, error) {
	l, err := s.PathToDCA(v.Pos, bz)
	if err != nil {
		return State{}, DCA{}, err
	}
	at := s.Propagate(l, bz)

	rx, ry := at.Pos.X-v.Pos.X, at.Pos.Y-v.Pos.Y
	ex, ey := at.Mom.X, at.Mom.Y
	if n := math.Hypot(ex, ey); n > 0 {
		ex, ey = ex/n, ey/n
	} else if n := math.Hypot(rx, ry); n > 0 {
		ex, ey = ry/n, -rx/n
	} else {
		ex, ey = 0, 1
	}
	// d0 = z-component of e × r, gradient n = (-ey, ex).
	nx, ny := -ey, ex
	y := nx*rx + ny*ry

	pc := at.Cov.Position()
	sy2 := nx*nx*(pc.At(0, 0)+v.Cov.At(0, 0)) +
		2*nx*ny*(pc.At(0, 1)+v.Cov.At(0, 1)) +
		ny*ny*(pc.At(1, 1)+v.Cov.At(1, 1))

	return at, DCA{
		Y:       y,
		Z:       at.Pos.Z - v.Pos.Z,
		SigmaY2: sy2,
		SigmaZ2: pc.At(2, 2) + v.Cov.At(2, 2),
	}, nil
}
