// Package blobstore abstracts where event inputs are read from and where
// candidate outputs are published to.
//
// A Store is flat: blob names may contain slashes but there are no
// directories. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through read-only memory maps
//   - MemoryStore: in-process map, used by tests and dry runs
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with multipart uploads
//   - s3.DDBCommitStore: s3.Store plus a DynamoDB-backed CURRENT pointer
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Writes become visible when Put returns or a WritableBlob is closed.
package blobstore
