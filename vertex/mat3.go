package vertex

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
)

type mat3 [3][3]float64

func identity3() mat3 {
	return mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func fromCov3(c kinematics.Cov3) mat3 {
	var m mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = c.At(i, j)
		}
	}
	return m
}

func (m mat3) cov3() kinematics.Cov3 {
	var c kinematics.Cov3
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			c[kinematics.Index(i, j)] = 0.5 * (m[i][j] + m[j][i])
		}
	}
	return c
}

func (m mat3) mulVec(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m mat3) mul(o mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return out
}

func (m mat3) t() mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func (m mat3) add(o mat3) mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] += o[i][j]
		}
	}
	return m
}

func (m mat3) scale(f float64) mat3 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] *= f
		}
	}
	return m
}

func (m mat3) sym() *mat.SymDense {
	s := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			s.SetSym(i, j, 0.5*(m[i][j]+m[j][i]))
		}
	}
	return s
}

// inverse inverts a symmetric positive-definite matrix.
func (m mat3) inverse() (mat3, bool) {
	var chol mat.Cholesky
	if ok := chol.Factorize(m.sym()); !ok {
		return mat3{}, false
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return mat3{}, false
	}
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, true
}

// pinv returns the Moore-Penrose pseudo-inverse of a symmetric PSD
// covariance. Eigenvalues below 1e-12 of the largest are treated as zero.
func pinv(c kinematics.Cov3) (mat3, bool) {
	var eig mat.EigenSym
	if ok := eig.Factorize(c.Sym(), true); !ok {
		return mat3{}, false
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	var top float64
	for _, v := range vals {
		if v > top {
			top = v
		}
	}
	if top <= 0 {
		return mat3{}, false
	}

	var out mat3
	for k, v := range vals {
		if v <= 1e-12*top {
			continue
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				out[i][j] += vecs.At(i, k) * vecs.At(j, k) / v
			}
		}
	}
	return out, true
}
