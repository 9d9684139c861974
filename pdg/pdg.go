// Package pdg holds the particle-type codes used by the truth matcher and
// a small classification of heavy-flavour content.
package pdg

// Particle-type codes (PDG Monte Carlo numbering).
const (
	Electron = 11
	Muon     = 13
	Photon   = 22
	PiPlus   = 211
	KPlus    = 321
	D0       = 421
	JPsi     = 443
	Chic1    = 20443
	Bottom   = 5
	Charm    = 4
)

// Abs returns |code|.
func Abs(code int) int {
	if code < 0 {
		return -code
	}
	return code
}

// HasQuark reports whether code is quark q itself or a hadron whose
// valence content includes q (or its antiquark).
func HasQuark(code, q int) bool {
	a := Abs(code)
	if a == q {
		return true
	}
	if a < 100 {
		return false
	}
	a %= 10000
	return (a/1000)%10 == q || (a/100)%10 == q || (a/10)%10 == q
}

// IsBeauty reports whether code is a b quark or a beauty hadron.
func IsBeauty(code int) bool {
	return HasQuark(code, Bottom)
}

// IsCharm reports whether code is a c quark or a charm hadron.
func IsCharm(code int) bool {
	return HasQuark(code, Charm)
}
