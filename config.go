package hfcand

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/hupe1980/hfcand/candidate"
	"github.com/hupe1980/hfcand/jettag"
	"github.com/hupe1980/hfcand/truth"
)

// Config collects the settings of every stage.
type Config struct {
	Candidate candidate.Config
	// TruthEnabled turns on truth matching. Events without particles then
	// yield unflagged results.
	TruthEnabled bool
	Truth        truth.Config
	// Jet is used only when a clusterer is configured.
	Jet jettag.Config
}

// DefaultConfig returns the χc1 → J/ψ(→e⁺e⁻) π⁺ setup with truth matching
// disabled.
func DefaultConfig() Config {
	return Config{
		Candidate: candidate.DefaultConfig(),
		Truth:     truth.DefaultConfig(),
		Jet:       jettag.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks the struct tags of every stage and the truth signature.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigError{Field: verrs[0].Namespace(), cause: verrs[0]}
		}
		return &ConfigError{Field: "Config", cause: err}
	}
	if c.TruthEnabled {
		sig := c.Truth.Signature
		if sig.Mother == 0 {
			return &ConfigError{Field: "Truth.Signature.Mother", cause: errors.New("must be set")}
		}
		if len(sig.RecDaughters) != 3 {
			return &ConfigError{Field: "Truth.Signature.RecDaughters", cause: errors.New("need one code per reconstructed track (3)")}
		}
	}
	return nil
}
