// Package candidate builds cascade candidates from pre-selected two-prong
// composites and single tracks.
//
// Build runs a filter-then-fit pipeline per event:
//
//  1. SelectComposites keeps composites with the configured hypothesis bit,
//     a sufficient selection status and, optionally, |y| below YMax.
//  2. Rebuild refits every selected composite from its two daughter tracks
//     and turns it into a pseudo-track at the refitted vertex.
//  3. SelectTracks collects the indices of eligible second prongs in a
//     roaring bitmap.
//  4. Combine fits every rebuilt composite with every eligible track that is
//     not one of its daughters and derives the candidate observables.
//
// Every combination that converges yields exactly one candidate; nothing is
// deduplicated or ranked. Failures only drop the combination and are
// reported to the Observer.
package candidate
