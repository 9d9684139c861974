// Package recordio reads and writes newline-delimited record streams.
//
// Every record is one codec-encoded line. Streams are optionally framed with
// zstd or lz4; the framing is picked from the blob name suffix (".zst",
// ".lz4"), so events.jsonl.zst is a zstd-compressed JSON-lines file:
//
//	w, err := recordio.Create(ctx, store, "run-1/candidates.jsonl.zst", codec.Default)
//	for _, c := range cands {
//	    if err := w.Write(c); err != nil { ... }
//	}
//	err = w.Close()
//
//	r, err := recordio.Open(ctx, store, "events.jsonl.lz4", codec.Default)
//	defer r.Close()
//	for {
//	    var ev model.Event
//	    if err := r.Next(&ev); err == io.EOF {
//	        break
//	    }
//	}
package recordio
