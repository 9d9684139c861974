// Package publish writes the output of a run to a blob store.
//
// Every run gets its own prefix holding one JSON-lines stream per kind of
// record:
//
//	<run>/candidates.jsonl[.zst|.lz4]   model.Candidate
//	<run>/matches_rec.jsonl[...]        MatchRecord, one per candidate
//	<run>/matches_gen.jsonl[...]        MatchRecord, one per generated particle
//	<run>/jets.jsonl[...]               jettag.TaggedJet
//
// Commit closes the streams, writes manifest-<run>.json and then points
// CURRENT at it. Readers resolve CURRENT first, so a run that never commits
// stays invisible. On stores wrapped in s3.DDBCommitStore the pointer update
// is a conditional write and a concurrent commit fails instead of silently
// replacing the other run.
//
//	pub, err := publish.New(ctx, store, publish.WithCompression(recordio.Zstd))
//	if err != nil { ... }
//	stats, err := creator.Run(ctx, events, pub)
//	if err != nil {
//	    _ = pub.Abort(ctx)
//	    return err
//	}
//	err = pub.Commit(ctx, stats)
package publish
