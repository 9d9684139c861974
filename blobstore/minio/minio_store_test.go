package minio

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hfcand/blobstore"
)

func TestKeyMapping(t *testing.T) {
	assert.Equal(t, "candidates.jsonl", objectKey("", "candidates.jsonl"))
	assert.Equal(t, "chic/run-1/candidates.jsonl", objectKey("chic/", "run-1/candidates.jsonl"))

	assert.Equal(t, "chic/", listPrefix("chic", ""))
	assert.Equal(t, "chic/run-1/", listPrefix("chic/", "run-1/"))
	assert.Equal(t, "chic/manifest-", listPrefix("chic", "manifest-"))
	assert.Equal(t, "manifest-", listPrefix("", "manifest-"))

	assert.Equal(t, "run-1/jets.jsonl", relativeName("chic/", "chic/run-1/jets.jsonl"))
	assert.Equal(t, "CURRENT", relativeName("chic", "chic/CURRENT"))
}

// TestStore_Integration runs against a live server when
// HFCAND_MINIO_ENDPOINT is set.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("HFCAND_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("HFCAND_MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "hfcand-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "it-"+time.Now().Format("150405.000000")+"/")

	data := []byte("hello candidates")
	require.NoError(t, store.Put(ctx, "run/candidates.jsonl", data))

	b, err := store.Open(ctx, "run/candidates.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), b.Size())

	rc, err := b.ReadRange(ctx, 6, 10)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "candidates", string(part))

	w, err := store.Create(ctx, "run/jets.jsonl")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run/candidates.jsonl", "run/jets.jsonl"}, names)

	require.NoError(t, store.Delete(ctx, "run/candidates.jsonl"))
	require.NoError(t, store.Delete(ctx, "run/jets.jsonl"))

	_, err = store.Open(ctx, "run/candidates.jsonl")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
