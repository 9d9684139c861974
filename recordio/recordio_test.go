package recordio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hfcand/blobstore"
	"github.com/hupe1980/hfcand/codec"
)

type record struct {
	ID    int     `json:"id"`
	Mass  float64 `json:"mass"`
	Label string  `json:"label,omitempty"`
}

func sample(n int) []record {
	out := make([]record, n)
	for i := range out {
		out[i] = record{ID: i, Mass: 3.0 + float64(i)/100, Label: strings.Repeat("x", i%7)}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, comp := range []Compression{None, LZ4, Zstd} {
		for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
			t.Run(comp.String()+"/"+c.Name(), func(t *testing.T) {
				var buf bytes.Buffer
				w, err := NewWriter(&buf, comp, c)
				require.NoError(t, err)

				in := sample(500)
				for _, r := range in {
					require.NoError(t, w.Write(r))
				}
				assert.Equal(t, int64(500), w.Count())
				require.NoError(t, w.Close())
				assert.ErrorIs(t, w.Write(in[0]), ErrClosed)

				r, err := NewReader(&buf, comp, c)
				require.NoError(t, err)
				defer r.Close()

				out, err := ReadAll[record](r)
				require.NoError(t, err)
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestCompressionShrinksRepetitiveStreams(t *testing.T) {
	var plain, packed bytes.Buffer
	for _, tc := range []struct {
		buf  *bytes.Buffer
		comp Compression
	}{{&plain, None}, {&packed, Zstd}} {
		w, err := NewWriter(tc.buf, tc.comp, nil)
		require.NoError(t, err)
		for _, r := range sample(1000) {
			require.NoError(t, w.Write(r))
		}
		require.NoError(t, w.Close())
	}
	assert.Less(t, packed.Len(), plain.Len()/2)
}

func TestReader_SkipsBlankLines(t *testing.T) {
	in := "{\"id\":1}\n\n   \n{\"id\":2}"
	r, err := NewReader(strings.NewReader(in), None, codec.JSON{})
	require.NoError(t, err)

	out, err := ReadAll[record](r)
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: 1}, {ID: 2}}, out)
	assert.Equal(t, int64(4), r.Line())

	var v record
	assert.Equal(t, io.EOF, r.Next(&v))
}

func TestReader_CorruptLine(t *testing.T) {
	in := "{\"id\":1}\n{\"id\":\n{\"id\":3}\n"
	r, err := NewReader(strings.NewReader(in), None, codec.JSON{})
	require.NoError(t, err)

	var v record
	require.NoError(t, r.Next(&v))
	err = r.Next(&v)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "line 2")

	require.NoError(t, r.Next(&v))
	assert.Equal(t, 3, v.ID)
}

func TestReader_Closed(t *testing.T) {
	r, err := NewReader(strings.NewReader("{}\n"), None, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	var v record
	assert.True(t, errors.Is(r.Next(&v), ErrClosed))
}

func TestCompressionFromName(t *testing.T) {
	assert.Equal(t, Zstd, CompressionFromName("events.jsonl.zst"))
	assert.Equal(t, LZ4, CompressionFromName("run/candidates.jsonl.lz4"))
	assert.Equal(t, None, CompressionFromName("events.jsonl"))

	for _, c := range []Compression{None, LZ4, Zstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.Equal(t, c, CompressionFromName("x.jsonl"+c.Ext()))
	}
	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}

func TestBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, store := range []blobstore.Store{blobstore.NewMemoryStore(), blobstore.NewLocalStore(t.TempDir())} {
		for _, name := range []string{"events.jsonl", "events.jsonl.lz4", "events.jsonl.zst"} {
			w, err := Create(ctx, store, name, nil)
			require.NoError(t, err)
			for _, r := range sample(50) {
				require.NoError(t, w.Write(r))
			}
			require.NoError(t, w.Close())

			r, err := Open(ctx, store, name, nil)
			require.NoError(t, err)
			out, err := ReadAll[record](r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, sample(50), out, name)
		}
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), blobstore.NewMemoryStore(), "nope.jsonl", nil)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
