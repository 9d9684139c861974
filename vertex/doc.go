// Package vertex finds the common point of closest approach (PCA) of two or
// more trajectories.
//
// Fit is a pure function: it copies what it needs from its inputs, keeps a
// transient workspace for the duration of the call and never mutates the
// caller's states.
//
//	res, err := vertex.Fit([]track.State{a, b}, vertex.DefaultConfig())
//	if err != nil {
//	    // ErrDegenerate, ErrNotConverged, ErrMaxR, ErrMaxDZ, ...
//	}
//	sv := res.PCA
//	pa := res.Momentum(0)
//
// The minimiser runs Newton iterations over the path length of every track.
// The vertex for a given set of path lengths is the weighted mean of the
// track points, so the only free parameters are the path lengths.
package vertex
