package model

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/hfcand/kinematics"
	"github.com/hupe1980/hfcand/track"
)

// NoLabel marks a track without a generated-particle association.
const NoLabel = -1

// Collision is the primary interaction point of an event.
type Collision struct {
	ID  int             `json:"id"`
	Pos r3.Vec          `json:"pos"`
	Cov kinematics.Cov3 `json:"cov"`
}

// Vertex returns the collision as a DCA reference point.
func (c Collision) Vertex() track.Vertex {
	return track.Vertex{Pos: c.Pos, Cov: c.Cov}
}

// Track is a reconstructed trajectory.
type Track struct {
	track.State
	// Label is the index of the generated particle that produced the track,
	// or NoLabel.
	Label int `json:"label"`
}

// Composite is a pre-selected two-prong candidate used as the first stage
// of a cascade.
type Composite struct {
	ID        int    `json:"id"`
	Daughters [2]int `json:"daughters"` // track IDs
	SV        r3.Vec `json:"sv"`
	Mom       r3.Vec `json:"mom"`
	HFFlag    uint8  `json:"hf_flag"`
	SelStatus int    `json:"sel_status"`
}

// Has reports whether the hypothesis bit of d is set.
func (c Composite) Has(d DecayType) bool {
	return c.HFFlag&d.Bit() != 0
}

// Particle is a generated particle. Mothers and Daughters are indices into
// the event's particle slice.
type Particle struct {
	PDG       int    `json:"pdg"`
	Mothers   []int  `json:"mothers,omitempty"`
	Daughters []int  `json:"daughters,omitempty"`
	Vertex    r3.Vec `json:"vertex"`
}

// Event groups everything the creator consumes for one collision.
type Event struct {
	Collision  Collision   `json:"collision"`
	Tracks     []Track     `json:"tracks"`
	Composites []Composite `json:"composites"`
	// Particles is nil for real data.
	Particles []Particle `json:"particles,omitempty"`
}

// TrackByID returns the index of the track with the given ID.
func (e *Event) TrackByID(id int) (int, bool) {
	for i := range e.Tracks {
		if e.Tracks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Prong is a candidate constituent evaluated at the secondary vertex.
type Prong struct {
	Mom                  r3.Vec  `json:"mom"`
	ImpactParameter      float64 `json:"impact_parameter"`
	ErrorImpactParameter float64 `json:"error_impact_parameter"`
}

// Candidate is one accepted composite + track combination. Prong 0 is the
// composite, prong 1 the additional track.
type Candidate struct {
	CollisionID        int             `json:"collision_id"`
	PV                 r3.Vec          `json:"pv"`
	SV                 r3.Vec          `json:"sv"`
	SVCov              kinematics.Cov3 `json:"sv_cov"`
	ErrorDecayLength   float64         `json:"error_decay_length"`
	ErrorDecayLengthXY float64         `json:"error_decay_length_xy"`
	Chi2PCA            float64         `json:"chi2_pca"`
	Prongs             [2]Prong        `json:"prongs"`
	CompositeID        int             `json:"composite_id"`
	TrackID            int             `json:"track_id"`
	HFFlag             uint8           `json:"hf_flag"`
	Mass               float64         `json:"mass"`
}

// Key identifies a candidate within its event.
type Key struct {
	CompositeID int
	TrackID     int
}

// Key returns the combination identity.
func (c Candidate) Key() Key {
	return Key{CompositeID: c.CompositeID, TrackID: c.TrackID}
}

// Mom returns the total momentum.
func (c Candidate) Mom() r3.Vec {
	return r3.Add(c.Prongs[0].Mom, c.Prongs[1].Mom)
}

// DecayLength returns |SV - PV|.
func (c Candidate) DecayLength() float64 {
	return kinematics.DecayLength(c.PV, c.SV)
}

// DecayLengthXY returns the transverse decay length.
func (c Candidate) DecayLengthXY() float64 {
	return kinematics.DecayLengthXY(c.PV, c.SV)
}

// CPA returns the cosine of the pointing angle.
func (c Candidate) CPA() float64 {
	return kinematics.CosPointingAngle(c.PV, c.SV, c.Mom())
}

// String returns a compact representation.
func (c Candidate) String() string {
	return fmt.Sprintf("Cand(coll=%d comp=%d trk=%d m=%.4f)", c.CollisionID, c.CompositeID, c.TrackID, c.Mass)
}
