package recordio

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the stream framing.
type Compression uint8

const (
	// None writes plain lines.
	None Compression = iota
	// LZ4 uses the lz4 frame format (fast, for intermediate outputs).
	LZ4
	// Zstd uses zstd frames (better ratio, for archived runs).
	Zstd
)

// String returns the manifest name of c.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Ext returns the file suffix for c, empty for None.
func (c Compression) Ext() string {
	switch c {
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses the names returned by String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return None, fmt.Errorf("recordio: unknown compression %q", s)
	}
}

// CompressionFromName detects the framing from a blob name suffix.
func CompressionFromName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return Zstd
	case strings.HasSuffix(name, ".lz4"):
		return LZ4
	default:
		return None
	}
}

var zstdDecoderPool sync.Pool

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			dec.Close()
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	if err := dec.Reset(nil); err != nil {
		dec.Close()
		return
	}
	zstdDecoderPool.Put(dec)
}

// compressWriter wraps w according to c. The returned closer flushes the
// framing without closing w.
func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	default:
		return nil, fmt.Errorf("recordio: unknown compression %d", c)
	}
}

// decompressReader wraps r according to c.
func decompressReader(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case None:
		return r, func() {}, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	case Zstd:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, func() { putZstdDecoder(dec) }, nil
	default:
		return nil, nil, fmt.Errorf("recordio: unknown compression %d", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
