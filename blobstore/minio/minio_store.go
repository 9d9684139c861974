package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/hfcand/blobstore"
)

// Store implements blobstore.Store on a MinIO bucket.
type Store struct {
	client      *minio.Client
	bucket      string
	prefix      string
	contentType string
}

// Option configures a Store.
type Option func(*Store)

// WithContentType sets the Content-Type attached to uploaded objects.
func WithContentType(ct string) Option {
	return func(s *Store) { s.contentType = ct }
}

// NewStore creates a store for bucket. rootPrefix is prepended to every
// blob name.
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...Option) *Store {
	s := &Store{
		client:      client,
		bucket:      bucket,
		prefix:      rootPrefix,
		contentType: "application/x-ndjson",
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

func (s *Store) key(name string) string { return objectKey(s.prefix, name) }

func (s *Store) putOptions() minio.PutObjectOptions {
	return minio.PutObjectOptions{ContentType: s.contentType}
}

// Open stats the object and returns a ranged reader handle.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &minioBlob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.putOptions())
	return err
}

// Create starts a streaming upload of unknown size.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	w := &minioWritableBlob{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, s.putOptions())
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// Delete removes the object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns names below the root prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix(s.prefix, prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := relativeName(s.prefix, obj.Key); name != "" && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func objectKey(root, name string) string {
	if root == "" {
		return name
	}
	return path.Join(root, name)
}

// listPrefix keeps a trailing slash on prefix so that "run-1/" does not
// match "run-10/".
func listPrefix(root, prefix string) string {
	if root == "" {
		return prefix
	}
	p := path.Join(root, prefix)
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		p += "/"
	}
	return p
}

func relativeName(root, key string) string {
	name := strings.TrimPrefix(key, root)
	return strings.TrimPrefix(name, "/")
}

type minioBlob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *minioBlob) Size() int64 { return b.size }

func (b *minioBlob) Close() error { return nil }

func (b *minioBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	rc, err := b.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.ReadFull(rc, p[:min(int64(len(p)), b.size-off)])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *minioBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, b.size) - 1

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

type minioWritableBlob struct {
	pw     *io.PipeWriter
	done   chan error
	closed atomic.Bool
}

func (w *minioWritableBlob) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, blobstore.ErrClosed
	}
	return w.pw.Write(p)
}

func (w *minioWritableBlob) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return blobstore.ErrClosed
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Abort cancels the upload. The object is not created.
func (w *minioWritableBlob) Abort() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	return w.pw.CloseWithError(io.ErrClosedPipe)
}

func (w *minioWritableBlob) Sync() error { return nil }
