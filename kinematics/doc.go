// Package kinematics provides the small set of relativistic and geometric
// helpers shared by the vertex fitter and the candidate builder.
//
// # Covariance Layout
//
// Symmetric 3×3 position covariances are stored packed as Cov3 in the order
// xx, xy, yy, xz, yz, zz (row-major lower triangle).
//
// # Usage
//
//	phi, theta := kinematics.PointDirection(pv, sv)
//	errL, errLXY, err := kinematics.DecayLengthErrors(pv, sv, pvCov, svCov)
//	m := kinematics.InvariantMass(
//	    kinematics.Prong{P: pJpsi, M: 3.0969},
//	    kinematics.Prong{P: pGamma},
//	)
package kinematics
