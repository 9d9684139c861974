package publish

import (
	"github.com/hupe1980/hfcand/codec"
	"github.com/hupe1980/hfcand/recordio"
	"github.com/hupe1980/hfcand/resource"
)

type options struct {
	codec       codec.Codec
	compression recordio.Compression
	runID       string
	rc          *resource.Controller
}

// Option configures a Publisher.
type Option func(*options)

// WithCodec sets the record codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCompression sets the stream framing. Defaults to recordio.None.
func WithCompression(c recordio.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithResourceController throttles stream writes to the controller's output
// bandwidth.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
