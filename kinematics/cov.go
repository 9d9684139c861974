package kinematics

import (
	"gonum.org/v1/gonum/mat"
)

// Cov3 is a packed symmetric 3×3 covariance: xx, xy, yy, xz, yz, zz.
type Cov3 [6]float64

// Index returns the packed index of element (i, j).
func Index(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i+1)/2 + j
}

// Isotropic returns v·I.
func Isotropic(v float64) Cov3 {
	return Cov3{v, 0, v, 0, 0, v}
}

// Diag returns a diagonal covariance.
func Diag(xx, yy, zz float64) Cov3 {
	return Cov3{xx, 0, yy, 0, 0, zz}
}

// At returns element (i, j).
func (c Cov3) At(i, j int) float64 {
	return c[Index(i, j)]
}

// Add returns c + o.
func (c Cov3) Add(o Cov3) Cov3 {
	var out Cov3
	for i := range c {
		out[i] = c[i] + o[i]
	}
	return out
}

// Scale returns f·c.
func (c Cov3) Scale(f float64) Cov3 {
	var out Cov3
	for i := range c {
		out[i] = f * c[i]
	}
	return out
}

// Sym returns c as a gonum symmetric matrix.
func (c Cov3) Sym() *mat.SymDense {
	s := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			s.SetSym(i, j, c.At(i, j))
		}
	}
	return s
}

// Cov3From packs the upper-left 3×3 block of m starting at (off, off).
func Cov3From(m mat.Symmetric, off int) Cov3 {
	var c Cov3
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			c[Index(i, j)] = m.At(off+i, off+j)
		}
	}
	return c
}
