// Package model defines the records exchanged by the candidate creator.
//
// # Inputs
//
//   - Collision: primary interaction point and its covariance
//   - Track: a trajectory state plus its generated-particle label
//   - Composite: a selected two-prong intermediate (e.g. J/ψ → e⁺e⁻)
//   - Particle: a generated particle with mother and daughter links
//   - Event: one collision with all of the above
//
// # Outputs
//
//   - Candidate: one accepted composite + track combination
//   - MatchResult: truth flag, origin and channel, index-aligned with
//     candidates (reconstructed side) or particles (generated side)
//
// All records are plain values with JSON tags and are safe to copy.
package model
