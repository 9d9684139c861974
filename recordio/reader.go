package recordio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/hfcand/blobstore"
	"github.com/hupe1980/hfcand/codec"
)

// ErrCorrupt wraps decode failures. The error text carries the line number.
var ErrCorrupt = errors.New("recordio: corrupt record")

// Reader decodes one record per line. Blank lines are skipped.
type Reader struct {
	codec   codec.Codec
	br      *bufio.Reader
	release func()
	closers []io.Closer
	line    int64
	err     error
}

// NewReader reads records from r.
func NewReader(r io.Reader, comp Compression, c codec.Codec) (*Reader, error) {
	if c == nil {
		c = codec.Default
	}
	dr, release, err := decompressReader(r, comp)
	if err != nil {
		return nil, err
	}
	return &Reader{codec: c, br: bufio.NewReaderSize(dr, 64*1024), release: release}, nil
}

// Open reads a blob. The framing follows the name suffix and Close also
// closes the blob.
func Open(ctx context.Context, store blobstore.Store, name string, c codec.Codec) (*Reader, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	r, err := NewReader(rc, CompressionFromName(name), c)
	if err != nil {
		_ = rc.Close()
		_ = blob.Close()
		return nil, err
	}
	r.closers = []io.Closer{rc, blob}
	return r, nil
}

// Next decodes the next record into v. It returns io.EOF at the end of the
// stream.
func (r *Reader) Next(v any) error {
	if r.err != nil {
		return r.err
	}
	for {
		line, err := r.br.ReadBytes('\n')
		if len(line) > 0 {
			r.line++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				if derr := r.codec.Unmarshal(trimmed, v); derr != nil {
					return fmt.Errorf("%w: line %d: %v", ErrCorrupt, r.line, derr)
				}
				return nil
			}
		}
		if err != nil {
			r.err = err
			return err
		}
	}
}

// Line returns the number of lines consumed.
func (r *Reader) Line() int64 { return r.line }

// Close releases the decoder and any blob opened by Open.
func (r *Reader) Close() error {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	var err error
	for _, c := range r.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	r.closers = nil
	if r.err == nil {
		r.err = ErrClosed
	}
	return err
}

// ReadAll decodes every remaining record of r.
func ReadAll[T any](r *Reader) ([]T, error) {
	var out []T
	for {
		var v T
		err := r.Next(&v)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
