// Package track models a charged-particle trajectory in a uniform solenoidal
// field along z.
//
// A State is a point on the trajectory (position, momentum, charge) plus a
// 6×6 covariance in global (x, y, z, px, py, pz). The trajectory is a helix
// parameterised by the signed 3D path length l measured from the reference
// point; neutral states and zero field reduce to straight lines through the
// same formulas.
//
// All operations return new values. A State is never modified in place, so a
// caller's track collection is safe to share across goroutines.
//
// Units: cm, GeV/c, kG.
package track
