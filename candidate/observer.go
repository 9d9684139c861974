package candidate

import "github.com/hupe1980/hfcand/model"

// Stage identifies which fit of the pipeline reported.
type Stage uint8

const (
	// StageComposite is the refit of a composite's two daughters.
	StageComposite Stage = iota + 1
	// StageCandidate is the fit of a rebuilt composite with a second prong.
	StageCandidate
)

func (s Stage) String() string {
	switch s {
	case StageComposite:
		return "composite"
	case StageCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// SkipReason says why an input was dropped before or after fitting.
type SkipReason uint8

const (
	SkipHypothesis SkipReason = iota
	SkipSelection
	SkipRapidity
	SkipMissingDaughter
	SkipAlias
	SkipNegativeVariance
	SkipImpactParameter
)

// NumSkipReasons is the number of SkipReason values.
const NumSkipReasons = int(SkipImpactParameter) + 1

func (r SkipReason) String() string {
	switch r {
	case SkipHypothesis:
		return "hypothesis"
	case SkipSelection:
		return "selection"
	case SkipRapidity:
		return "rapidity"
	case SkipMissingDaughter:
		return "missing_daughter"
	case SkipAlias:
		return "alias"
	case SkipNegativeVariance:
		return "negative_variance"
	case SkipImpactParameter:
		return "impact_parameter"
	default:
		return "unknown"
	}
}

// Observer receives monitoring callbacks. Implementations must be safe for
// concurrent use when one builder serves several goroutines.
type Observer interface {
	// OnComposite is called for every rebuilt composite.
	OnComposite(mass, pt, cpa float64)
	// OnFit is called after every fit; err is nil on success.
	OnFit(stage Stage, err error)
	// OnSkip is called for every dropped composite or combination.
	OnSkip(reason SkipReason)
	// OnCandidate is called for every emitted candidate.
	OnCandidate(c *model.Candidate)
}

// NoopObserver discards all callbacks.
type NoopObserver struct{}

func (NoopObserver) OnComposite(float64, float64, float64) {}
func (NoopObserver) OnFit(Stage, error)                    {}
func (NoopObserver) OnSkip(SkipReason)                     {}
func (NoopObserver) OnCandidate(*model.Candidate)          {}
