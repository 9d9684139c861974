package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hfcand/blobstore"
)

func TestStore_PutOpenRead(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewStore(fake, "bucket", "chic")

	require.NoError(t, store.Put(ctx, "run-1/candidates.jsonl", []byte("hello candidates")))
	assert.Contains(t, fake.objects, "chic/run-1/candidates.jsonl")
	assert.Len(t, fake.checksum, 1)

	b, err := store.Open(ctx, "run-1/candidates.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(16), b.Size())

	buf := make([]byte, 10)
	n, err := b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "candidates", string(buf[:n]))

	n, err = b.ReadAt(ctx, make([]byte, 32), 10)
	assert.Equal(t, 6, n)
	assert.Equal(t, io.EOF, err)

	data, err := blobstore.ReadAll(ctx, store, "run-1/candidates.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "hello candidates", string(data))
}

func TestStore_OpenMissing(t *testing.T) {
	store := NewStore(newFakeS3(), "bucket", "")
	_, err := store.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_CreateStreams(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewStore(fake, "bucket", "chic/")

	w, err := store.Create(ctx, "jets.jsonl")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := fmt.Fprintf(w, "{\"jet\":%d}\n", i)
		require.NoError(t, err)
	}
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), blobstore.ErrClosed)

	data, err := blobstore.ReadAll(ctx, store, "jets.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "{\"jet\":0}\n{\"jet\":1}\n{\"jet\":2}\n", string(data))
}

func TestStore_ListPaginates(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.pageSize = 2
	store := NewStore(fake, "bucket", "chic")

	for _, n := range []string{"run-1/b", "run-1/a", "run-10/a", "CURRENT", "manifest-x.json"} {
		require.NoError(t, store.Put(ctx, n, []byte(n)))
	}
	fake.objects["other/x"] = []byte("x")

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT", "manifest-x.json", "run-1/a", "run-1/b", "run-10/a"}, all)

	run1, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/a", "run-1/b"}, run1)

	require.NoError(t, store.Delete(ctx, "run-1/a"))
	run1, err = store.List(ctx, "run-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/b"}, run1)
}

func TestChecksumCRC32C(t *testing.T) {
	// CRC32C("123456789") = 0xE3069283
	assert.Equal(t, "4waSgw==", checksumCRC32C([]byte("123456789")))
}

func newCommitStore(ddb *fakeDDB, uri string) *DDBCommitStore {
	return NewDDBCommitStore(NewStore(newFakeS3(), "bucket", "chic"), ddb, "hfcand-commits", uri)
}

func TestDDBCommitStore_Commits(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/chic")

	_, err := store.Open(ctx, CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Put(ctx, CurrentName, []byte(fmt.Sprintf("manifest-%d.json", i))))
	}

	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	data, err := blobstore.ReadAll(ctx, store, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "manifest-3.json", string(data))

	_, err = store.Create(ctx, CurrentName)
	assert.Error(t, err)
}

func TestDDBCommitStore_ForwardsBlobs(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/chic")

	require.NoError(t, store.Put(ctx, "manifest-1.json", []byte("{}")))
	names, err := store.List(ctx, "manifest-")
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest-1.json"}, names)

	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, store.Delete(ctx, "manifest-1.json"))
	_, err = store.Open(ctx, "manifest-1.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/chic")
	require.NoError(t, store.Put(ctx, CurrentName, []byte("manifest-0.json")))

	var (
		wg                   sync.WaitGroup
		mu                   sync.Mutex
		successes, conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Put(ctx, CurrentName, []byte(fmt.Sprintf("manifest-%d.json", i+1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Positive(t, successes)
	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1+successes), v)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDB()
	a := newCommitStore(ddb, "s3://bucket-a/chic")
	b := newCommitStore(ddb, "s3://bucket-b/chic")

	require.NoError(t, a.Put(ctx, CurrentName, []byte("manifest-a.json")))
	require.NoError(t, b.Put(ctx, CurrentName, []byte("manifest-b.json")))

	got, err := blobstore.ReadAll(ctx, a, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "manifest-a.json", string(got))

	got, err = blobstore.ReadAll(ctx, b, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "manifest-b.json", string(got))
}
