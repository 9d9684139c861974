package candidate

import (
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/vertex"
)

// Masses in GeV/c².
const (
	MassElectron = 0.000510999
	MassMuon     = 0.105658
	MassJPsi     = 3.0969
)

// Config controls candidate building.
type Config struct {
	// Fitter is used for both the composite refit and the cascade fit.
	Fitter vertex.Config
	// Hypothesis is the composite decay type whose bit must be set.
	Hypothesis model.DecayType
	// SelectionFlag is the minimum composite selection status.
	SelectionFlag int
	// YMax is the maximum composite |y|. Negative disables the cut.
	YMax float64
	// SecondProngSign selects second prongs by charge sign. Zero accepts all.
	SecondProngSign int
	// CompositeMass is the mass assigned to the composite.
	CompositeMass float64 `validate:"gte=0"`
	// DaughterMass is the mass of each composite daughter, used for the
	// monitored composite mass.
	DaughterMass float64 `validate:"gte=0"`
	// SecondProngMass is the mass assigned to the second prong.
	SecondProngMass float64 `validate:"gte=0"`
	// CandidateFlag is the hypothesis bit stored on every candidate.
	CandidateFlag model.CascadeType
}

// DefaultConfig returns the χc1 → J/ψ(→e⁺e⁻) + positive prong setup.
func DefaultConfig() Config {
	return Config{
		Fitter:          vertex.DefaultConfig(),
		Hypothesis:      model.JpsiToEE,
		SelectionFlag:   1,
		YMax:            -1,
		SecondProngSign: 1,
		CompositeMass:   MassJPsi,
		DaughterMass:    MassElectron,
		SecondProngMass: 0,
		CandidateFlag:   model.ChicToJpsiToEEGamma,
	}
}
