// Package testutil provides deterministic generators for tests and the
// simulate command.
//
// This package is intended for tests, benchmarks and synthetic inputs only.
//
// # Random Numbers
//
//	rng := testutil.NewRNG(seed)
//	u := rng.UnitVec()         // isotropic direction
//	c := rng.PSDCov3(1e-4)     // random positive semi-definite covariance
//
// # Trajectories
//
//	st := testutil.TrackThrough(id, point, mom, charge, back, bz, sigma)
//
// builds a state whose trajectory passes exactly through point with
// momentum mom there.
//
// # Events and Decay Trees
//
//	ev := testutil.GenerateEvent(rng, 0, testutil.DefaultEventConfig())
//
//	var tree testutil.Tree
//	chic := tree.Add(pdg.Chic1)
//	tree.Add(pdg.JPsi, chic)
package testutil
