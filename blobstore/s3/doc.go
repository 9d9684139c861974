// Package s3 stores hfcand inputs and outputs in Amazon S3.
//
// # Usage
//
//	store, err := s3.Open(ctx, "physics-data",
//	    s3.WithPrefix("chic/2026/"),
//	    s3.WithRegion("eu-central-1"),
//	    s3.WithCommitTable("hfcand-commits"),
//	)
//
// Without a commit table the CURRENT pointer is an ordinary object and the
// last writer wins. With one, CURRENT is versioned in DynamoDB and
// concurrent publishers are serialized through conditional writes; see
// DDBCommitStore.
//
// Reads use ranged GETs. Streaming writes go through the multipart uploader
// of feature/s3/manager.
package s3
