// Package minio stores hfcand inputs and outputs on MinIO or any other
// S3-compatible server (Ceph, Garage, SeaweedFS) through minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "physics", "chic/2026/")
//	pub := publish.New(store)
//
// Streaming writes upload through an io.Pipe; the object appears when the
// writer is closed.
package minio
