package model

// DecayType is a two-prong hypothesis; its bit is set in Composite.HFFlag.
type DecayType uint8

const (
	D0ToPiK DecayType = iota
	JpsiToEE
	JpsiToMuMu
)

// Bit returns the hypothesis bitmask.
func (d DecayType) Bit() uint8 {
	return 1 << d
}

func (d DecayType) String() string {
	switch d {
	case D0ToPiK:
		return "D0ToPiK"
	case JpsiToEE:
		return "JpsiToEE"
	case JpsiToMuMu:
		return "JpsiToMuMu"
	default:
		return "unknown"
	}
}

// CascadeType is a candidate hypothesis; its bit is set in Candidate.HFFlag
// and, signed, in MatchResult.Flag.
type CascadeType uint8

const (
	ChicToJpsiToEEGamma CascadeType = iota
	ChicToJpsiToMuMuGamma
)

// Bit returns the hypothesis bitmask.
func (c CascadeType) Bit() uint8 {
	return 1 << c
}

// DecayFlag is a signed hypothesis bitmask: the sign distinguishes particle
// (+) from antiparticle (-). Zero means unmatched.
type DecayFlag int8

// NewDecayFlag returns the flag for hypothesis c with the given sign.
func NewDecayFlag(c CascadeType, sign int8) DecayFlag {
	if sign < 0 {
		return -DecayFlag(c.Bit())
	}
	return DecayFlag(c.Bit())
}

// Matched reports whether any hypothesis bit is set.
func (f DecayFlag) Matched() bool { return f != 0 }

// Has reports whether hypothesis c is set regardless of sign.
func (f DecayFlag) Has(c CascadeType) bool {
	v := int(f)
	if v < 0 {
		v = -v
	}
	return uint8(v)&c.Bit() != 0
}

// Origin classifies the production of a matched particle.
type Origin uint8

const (
	OriginNone Origin = iota
	OriginPrompt
	OriginNonPrompt
)

func (o Origin) String() string {
	switch o {
	case OriginPrompt:
		return "prompt"
	case OriginNonPrompt:
		return "non-prompt"
	default:
		return "none"
	}
}

// Channel tags the resonant decay path of a matched particle.
type Channel uint8

const (
	ChannelNone Channel = iota
	ChannelJpsiToEE
	ChannelJpsiToMuMu
)

func (c Channel) String() string {
	switch c {
	case ChannelJpsiToEE:
		return "jpsi->ee"
	case ChannelJpsiToMuMu:
		return "jpsi->mumu"
	default:
		return "none"
	}
}

// MatchResult is the truth label of one candidate or generated particle.
type MatchResult struct {
	Flag    DecayFlag `json:"flag"`
	Origin  Origin    `json:"origin"`
	Channel Channel   `json:"channel"`
}

// Selection status of a two-prong composite.
const (
	SelParticle     = 1
	SelAntiParticle = 2
	SelBoth         = SelParticle | SelAntiParticle
)
