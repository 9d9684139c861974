// Package truth labels candidates and generated particles against a
// simulated decay tree.
//
// A Table wraps the generated particles of one event. Particles refer to
// each other by index, so walks are bounded loops over the table and never
// follow pointers. Ancestor walks follow the first mother only.
//
// The Matcher answers two independent questions per event:
//
//   - MatchReconstructed: does every track of a candidate descend, within
//     the configured depth, from one particle of the expected type whose
//     final-state daughters are exactly these tracks?
//   - MatchGenerated: does a generated particle decay into the expected
//     daughters, and does its resonant daughter decay as expected?
//
// Matched particles are classified prompt or non-prompt depending on
// whether a beauty ancestor exists within OriginDepth generations.
package truth
