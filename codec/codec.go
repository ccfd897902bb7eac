// Package codec centralizes the encoding of run configuration files and
// evaluation reports.
package codec

import (
	"errors"
	"fmt"
)

// ErrTrailingData is returned by UnmarshalStrict when more than one JSON
// value is present.
var ErrTrailingData = errors.New("codec: trailing data after value")

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	// MarshalIndent is Marshal with human-readable formatting.
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// UnmarshalStrict rejects unknown object keys and trailing values.
	// Configuration files are decoded this way so that typos surface.
	UnmarshalStrict(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal marshals v with c (Default if nil) and panics on failure.
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
