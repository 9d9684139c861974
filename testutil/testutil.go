package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Uniform returns a pseudo-random number in [lo,hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// NormFloat64 returns a standard normal deviate.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// UnitVec returns an isotropically distributed unit vector.
// Uses a Gaussian draw per component, which is uniform on the sphere.
func (r *RNG) UnitVec() r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		v := r3.Vec{X: r.rand.NormFloat64(), Y: r.rand.NormFloat64(), Z: r.rand.NormFloat64()}
		if n := r3.Norm(v); n > 1e-12 {
			return r3.Scale(1/n, v)
		}
	}
}

// PointInBox returns a point uniformly distributed in [-half, half)³.
func (r *RNG) PointInBox(half float64) r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r3.Vec{
		X: (2*r.rand.Float64() - 1) * half,
		Y: (2*r.rand.Float64() - 1) * half,
		Z: (2*r.rand.Float64() - 1) * half,
	}
}

// PSDCov3 returns A·Aᵀ for a Gaussian 3×3 matrix A scaled so the expected
// diagonal is of order scale.
func (r *RNG) PSDCov3(scale float64) kinematics.Cov3 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var a [3][3]float64
	s := math.Sqrt(scale / 3)
	for i := range a {
		for j := range a[i] {
			a[i][j] = r.rand.NormFloat64() * s
		}
	}

	var c kinematics.Cov3
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			var v float64
			for k := 0; k < 3; k++ {
				v += a[i][k] * a[j][k]
			}
			c[kinematics.Index(i, j)] = v
		}
	}
	return c
}
