package recordio

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/hupe1980/hfcand/blobstore"
	"github.com/hupe1980/hfcand/codec"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("recordio: stream closed")

// Writer appends records as lines. It is not safe for concurrent use.
type Writer struct {
	codec  codec.Codec
	bw     *bufio.Writer
	zw     io.WriteCloser
	under  io.Closer
	buf    []byte
	count  int64
	closed bool
}

// NewWriter writes records to w. Close flushes the framing but leaves w
// open.
func NewWriter(w io.Writer, comp Compression, c codec.Codec) (*Writer, error) {
	if c == nil {
		c = codec.Default
	}
	zw, err := compressWriter(w, comp)
	if err != nil {
		return nil, err
	}
	return &Writer{codec: c, zw: zw, bw: bufio.NewWriterSize(zw, 64*1024)}, nil
}

// Create opens a blob for writing. The framing follows the name suffix and
// Close also closes the blob.
func Create(ctx context.Context, store blobstore.Store, name string, c codec.Codec) (*Writer, error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(blob, CompressionFromName(name), c)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	w.under = blob
	return w, nil
}

// Write encodes v as one line.
func (w *Writer) Write(v any) error {
	if w.closed {
		return ErrClosed
	}
	var err error
	w.buf, err = codec.AppendTo(w.codec, w.buf[:0], v)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, '\n')
	if _, err := w.bw.Write(w.buf); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int64 { return w.count }

// Flush pushes buffered lines into the framing.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.bw.Flush()
}

// Close flushes and finalizes the stream.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	err := w.bw.Flush()
	if cerr := w.zw.Close(); err == nil {
		err = cerr
	}
	if w.under != nil {
		if cerr := w.under.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
