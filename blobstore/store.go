package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist. It matches
// os.ErrNotExist with errors.Is.
var ErrNotFound = os.ErrNotExist

// ErrClosed is returned when writing to a closed blob.
var ErrClosed = errors.New("blobstore: blob is closed")

// Store reads and writes named blobs.
type Store interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create starts a streaming write. The blob appears on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes data as name in one step.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes at off. It returns io.EOF when fewer bytes
	// remain.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange streams up to length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the blob length in bytes.
	Size() int64
}

// WritableBlob is a streaming writer.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to durable storage where the backend
	// supports it.
	Sync() error
}

// Mappable is implemented by blobs that can expose their contents without
// copying. The slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// NewReader returns a sequential reader over the whole blob.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return b.ReadRange(ctx, 0, b.Size())
}

// ReadAll opens name and returns its full contents.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	rc, err := NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// clampRange limits [off, off+length) to a blob of size bytes.
func clampRange(off, length, size int64) (int64, int64) {
	if off < 0 {
		off = 0
	}
	if off >= size || length <= 0 {
		return size, size
	}
	end := off + length
	if end > size || end < off {
		end = size
	}
	return off, end
}
