package vertex

// Config holds the fitter tolerances.
type Config struct {
	// Bz is the solenoid field in kG.
	Bz float64 `mapstructure:"bz"`
	// PropagateToPCA makes Result.Track return states moved to the vertex.
	PropagateToPCA bool `mapstructure:"propagate_to_pca"`
	// MaxR rejects vertices at a larger transverse radius (cm).
	MaxR float64 `mapstructure:"max_r" validate:"gt=0"`
	// MaxDZIni rejects seeding pairs further apart than this in z (cm).
	// Zero or negative disables the check.
	MaxDZIni float64 `mapstructure:"max_dz_ini"`
	// MinParamChange stops the iteration once no path length moves by more
	// than this (cm).
	MinParamChange float64 `mapstructure:"min_param_change" validate:"gt=0"`
	// MinRelChi2Change stops the iteration once χ²/χ²_prev exceeds it.
	MinRelChi2Change float64 `mapstructure:"min_rel_chi2_change" validate:"gt=0,lte=1"`
	// UseAbsDCA minimises unweighted distances. Otherwise each track is
	// weighted by the inverse of its transverse position covariance.
	UseAbsDCA bool `mapstructure:"use_abs_dca"`
	// MaxIterations caps the Newton iterations.
	MaxIterations int `mapstructure:"max_iterations" validate:"gte=1"`
}

// DefaultConfig returns the tolerances used for charmonium cascades.
func DefaultConfig() Config {
	return Config{
		Bz:               5,
		PropagateToPCA:   true,
		MaxR:             200,
		MaxDZIni:         4,
		MinParamChange:   1e-3,
		MinRelChi2Change: 0.9,
		UseAbsDCA:        true,
		MaxIterations:    20,
	}
}
