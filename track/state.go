package track

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
)

// B2C converts curvature: GeV/c per (kG·cm).
const B2C = 0.000299792458

// ErrZeroMomentum is returned when an operation needs a direction and the
// state has none.
var ErrZeroMomentum = errors.New("track: zero momentum")

// State is a trajectory point with its covariance.
type State struct {
	ID     int    `json:"id"`
	Pos    r3.Vec `json:"pos"`
	Mom    r3.Vec `json:"mom"`
	Charge int    `json:"charge"`
	Cov    Cov    `json:"cov"`
}

// Point is the local geometry of the trajectory at a path length:
// position, unit tangent and curvature vector (d tangent / dl).
type Point struct {
	Pos  r3.Vec
	Dir  r3.Vec
	Curv r3.Vec
}

// P returns |p|.
func (s State) P() float64 { return r3.Norm(s.Mom) }

// Pt returns the transverse momentum.
func (s State) Pt() float64 { return math.Hypot(s.Mom.X, s.Mom.Y) }

// Phi returns the azimuth of the momentum.
func (s State) Phi() float64 { return math.Atan2(s.Mom.Y, s.Mom.X) }

// Omega is the azimuthal turning rate per unit 3D path length in field bz.
// The azimuth evolves as phi(l) = phi0 - Omega·l.
func (s State) Omega(bz float64) float64 {
	p := s.P()
	if s.Charge == 0 || p == 0 {
		return 0
	}
	return float64(s.Charge) * B2C * bz / p
}

// At evaluates the trajectory at path length l.
func (s State) At(l, bz float64) Point {
	pos, mom := s.eval(s.Mom, l, bz)
	p := s.P()
	if p == 0 {
		return Point{Pos: pos}
	}
	dir := r3.Scale(1/p, mom)
	w := s.Omega(bz)
	curv := r3.Vec{X: w * dir.Y, Y: -w * dir.X}
	return Point{Pos: pos, Dir: dir, Curv: curv}
}

// eval returns position and momentum after path length l for a state whose
// momentum at the reference point is mom.
func (s State) eval(mom r3.Vec, l, bz float64) (r3.Vec, r3.Vec) {
	p := r3.Norm(mom)
	if p == 0 {
		return s.Pos, mom
	}
	pt := math.Hypot(mom.X, mom.Y)
	phi0 := math.Atan2(mom.Y, mom.X)

	var w float64
	if s.Charge != 0 {
		w = float64(s.Charge) * B2C * bz / p
	}
	a := w * l
	half := phi0 - a/2
	sc := sinc(a / 2)

	ptp := pt / p
	pos := r3.Vec{
		X: s.Pos.X + l*ptp*math.Cos(half)*sc,
		Y: s.Pos.Y + l*ptp*math.Sin(half)*sc,
		Z: s.Pos.Z + l*mom.Z/p,
	}
	phi := phi0 - a
	return pos, r3.Vec{X: pt * math.Cos(phi), Y: pt * math.Sin(phi), Z: mom.Z}
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-4 {
		x2 := x * x
		return 1 - x2/6 + x2*x2/120
	}
	return math.Sin(x) / x
}

// Propagate returns the state moved by path length l, with its covariance
// transported by the Jacobian of the move.
func (s State) Propagate(l, bz float64) State {
	pos, mom := s.eval(s.Mom, l, bz)
	out := s
	out.Pos = pos
	out.Mom = mom
	out.Cov = s.Cov.transform(s.Jacobian(l, bz))
	return out
}

// Jacobian returns d(state at l)/d(state at 0) at fixed l. Position enters
// additively; the momentum columns are central finite differences.
func (s State) Jacobian(l, bz float64) *mat.Dense {
	jac := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		jac.Set(i, i, 1)
	}
	p := s.P()
	h := 1e-6 * math.Max(p, 1e-3)
	for k := 0; k < 3; k++ {
		plus, minus := s.Mom, s.Mom
		switch k {
		case 0:
			plus.X += h
			minus.X -= h
		case 1:
			plus.Y += h
			minus.Y -= h
		case 2:
			plus.Z += h
			minus.Z -= h
		}
		posP, momP := s.eval(plus, l, bz)
		posM, momM := s.eval(minus, l, bz)
		dpos := r3.Scale(1/(2*h), r3.Sub(posP, posM))
		dmom := r3.Scale(1/(2*h), r3.Sub(momP, momM))
		jac.Set(0, 3+k, dpos.X)
		jac.Set(1, 3+k, dpos.Y)
		jac.Set(2, 3+k, dpos.Z)
		jac.Set(3, 3+k, dmom.X)
		jac.Set(4, 3+k, dmom.Y)
		jac.Set(5, 3+k, dmom.Z)
	}
	return jac
}

// TransverseCov returns the position covariance with the component along
// dir removed: (I - u uᵀ) C (I - u uᵀ).
func TransverseCov(c kinematics.Cov3, dir r3.Vec) kinematics.Cov3 {
	n := r3.Norm(dir)
	if n == 0 {
		return c
	}
	u := r3.Scale(1/n, dir)
	uc := [3]float64{u.X, u.Y, u.Z}

	var proj [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			proj[i][j] = -uc[i] * uc[j]
		}
		proj[i][i]++
	}

	var out kinematics.Cov3
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			var v float64
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					v += proj[i][a] * c.At(a, b) * proj[j][b]
				}
			}
			out[kinematics.Index(i, j)] = v
		}
	}
	return out
}
