package track

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/hfcand/kinematics"
)

// Cov is the packed lower triangle of the symmetric 6×6 covariance in
// (x, y, z, px, py, pz), 21 elements.
type Cov [21]float64

func covIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i+1)/2 + j
}

// NewCov builds a block-diagonal covariance from position and momentum blocks.
func NewCov(pos, mom kinematics.Cov3) Cov {
	var c Cov
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			c[covIndex(i, j)] = pos.At(i, j)
			c[covIndex(i+3, j+3)] = mom.At(i, j)
		}
	}
	return c
}

// At returns element (i, j).
func (c Cov) At(i, j int) float64 {
	return c[covIndex(i, j)]
}

// Set assigns element (i, j) and its mirror.
func (c *Cov) Set(i, j int, v float64) {
	c[covIndex(i, j)] = v
}

// Position returns the position block.
func (c Cov) Position() kinematics.Cov3 {
	return kinematics.Cov3From(c.Sym(), 0)
}

// Momentum returns the momentum block.
func (c Cov) Momentum() kinematics.Cov3 {
	return kinematics.Cov3From(c.Sym(), 3)
}

// Sym returns c as a gonum symmetric matrix.
func (c Cov) Sym() *mat.SymDense {
	s := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			s.SetSym(i, j, c.At(i, j))
		}
	}
	return s
}

// CovFrom packs a 6×6 symmetric matrix.
func CovFrom(m mat.Symmetric) Cov {
	var c Cov
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			c[covIndex(i, j)] = m.At(i, j)
		}
	}
	return c
}

// transform returns J·C·Jᵀ, symmetrised.
func (c Cov) transform(jac *mat.Dense) Cov {
	var tmp, out mat.Dense
	tmp.Mul(jac, c.Sym())
	out.Mul(&tmp, jac.T())

	var res Cov
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			res[covIndex(i, j)] = 0.5 * (out.At(i, j) + out.At(j, i))
		}
	}
	return res
}
