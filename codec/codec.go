// Package codec centralizes record encoding.
//
// Record streams store the codec name in the run manifest; readers select
// the codec by that name, so changing the default never breaks old runs.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Appender is implemented by codecs that can encode into a caller buffer.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// AppendTo encodes v onto dst, using the codec's Append when available.
func AppendTo(c Codec, dst []byte, v any) ([]byte, error) {
	if a, ok := c.(Appender); ok {
		return a.Append(dst, v)
	}
	b, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

// MustMarshal is a helper for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
