package vertex

import "errors"

var (
	// ErrTooFewTracks is returned when fewer than two tracks are given.
	ErrTooFewTracks = errors.New("vertex: at least two tracks required")

	// ErrDegenerate is returned for parallel or otherwise ill-posed geometry.
	ErrDegenerate = errors.New("vertex: degenerate geometry")

	// ErrNotConverged is returned when the iteration cap is exhausted or no
	// step reduces χ².
	ErrNotConverged = errors.New("vertex: fit did not converge")

	// ErrMaxR is returned when the vertex lies beyond Config.MaxR.
	ErrMaxR = errors.New("vertex: vertex radius above limit")

	// ErrMaxDZ is returned when every seeding pair is too far apart in z.
	ErrMaxDZ = errors.New("vertex: initial z separation above limit")

	// ErrSingularCovariance is returned when a weighted fit cannot build
	// its weights from the track covariances.
	ErrSingularCovariance = errors.New("vertex: singular covariance")
)
