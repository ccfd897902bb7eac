package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/hupe1980/knn/internal/hash"
)

const (
	// MagicNumber identifies a KNNB blob ("KNNB" little-endian).
	MagicNumber = 0x424E4E4B
	// Version is the current format version.
	Version = 1
	// HeaderSize is the fixed size of the blob header.
	HeaderSize = 32
)

var (
	ErrInvalidMagic   = errors.New("dataset: invalid magic number")
	ErrInvalidVersion = errors.New("dataset: unsupported version")
	ErrKindMismatch   = errors.New("dataset: unexpected blob kind")
)

// Kind is the content type of a blob.
type Kind uint8

const (
	KindMatrix Kind = 1
	KindLabels Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindMatrix:
		return "matrix"
	case KindLabels:
		return "labels"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Header describes an encoded blob.
type Header struct {
	Magic       uint32
	Version     uint16
	Kind        Kind
	Compression Compression
	Rows        uint64
	Dim         uint32
	Checksum    uint32 // CRC32C of the decoded payload
	PayloadLen  uint64 // decoded payload size in bytes
}

// Encode serializes the header.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	buf[6] = byte(h.Kind)
	buf[7] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:], h.Rows)
	binary.LittleEndian.PutUint32(buf[16:], h.Dim)
	binary.LittleEndian.PutUint32(buf[20:], h.Checksum)
	binary.LittleEndian.PutUint64(buf[24:], h.PayloadLen)
	return buf
}

// DecodeHeader parses and validates a header.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: buffer too small for header", ErrCorrupt)
	}
	h := &Header{}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint16(buf[4:])
	if h.Version != Version {
		return nil, ErrInvalidVersion
	}
	h.Kind = Kind(buf[6])
	h.Compression = Compression(buf[7])
	if !h.Compression.valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, buf[7])
	}
	h.Rows = binary.LittleEndian.Uint64(buf[8:])
	h.Dim = binary.LittleEndian.Uint32(buf[16:])
	h.Checksum = binary.LittleEndian.Uint32(buf[20:])
	h.PayloadLen = binary.LittleEndian.Uint64(buf[24:])

	var elems uint64
	switch h.Kind {
	case KindMatrix:
		hi, lo := bits.Mul64(h.Rows, uint64(h.Dim))
		if hi != 0 {
			return nil, fmt.Errorf("%w: shape %dx%d overflows", ErrCorrupt, h.Rows, h.Dim)
		}
		elems = lo
	case KindLabels:
		elems = h.Rows
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrCorrupt, buf[6])
	}
	// Every element is 8 bytes and must be addressable as an int.
	if h.Rows > math.MaxInt || elems > math.MaxInt/8 {
		return nil, fmt.Errorf("%w: shape with %d elements is too large", ErrCorrupt, elems)
	}
	if h.PayloadLen != elems*8 {
		return nil, fmt.Errorf("%w: payload length %d does not match shape", ErrCorrupt, h.PayloadLen)
	}
	return h, nil
}

// EncodeMatrix writes m as a KNNB blob.
func EncodeMatrix(w io.Writer, m Matrix, c Compression) error {
	if err := m.Validate(); err != nil {
		return err
	}

	payload := make([]byte, len(m.Data)*8)
	for i, v := range m.Data {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}

	return encode(w, &Header{
		Kind:        KindMatrix,
		Compression: c,
		Rows:        uint64(m.Rows),
		Dim:         uint32(m.Dim),
	}, payload)
}

// EncodeLabels writes l as a KNNB blob.
func EncodeLabels(w io.Writer, l Labels, c Compression) error {
	payload := make([]byte, len(l)*8)
	for i, v := range l {
		binary.LittleEndian.PutUint64(payload[i*8:], uint64(int64(v)))
	}

	return encode(w, &Header{
		Kind:        KindLabels,
		Compression: c,
		Rows:        uint64(len(l)),
	}, payload)
}

func encode(w io.Writer, h *Header, payload []byte) error {
	if !h.Compression.valid() {
		return fmt.Errorf("dataset: unknown compression %d", h.Compression)
	}

	h.Magic = MagicNumber
	h.Version = Version
	h.Checksum = hash.CRC32C(payload)
	h.PayloadLen = uint64(len(payload))

	if _, err := w.Write(h.Encode()); err != nil {
		return err
	}

	bw := newBlockWriter(w, h.Compression, defaultBlockSize)
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeMatrix parses a matrix blob.
func DecodeMatrix(data []byte) (Matrix, error) {
	h, payload, err := decode(data, KindMatrix)
	if err != nil {
		return Matrix{}, err
	}

	m := Matrix{
		Rows: int(h.Rows),
		Dim:  int(h.Dim),
		Data: make([]float64, h.Rows*uint64(h.Dim)),
	}
	for i := range m.Data {
		m.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	if err := m.Validate(); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// DecodeLabels parses a labels blob.
func DecodeLabels(data []byte) (Labels, error) {
	h, payload, err := decode(data, KindLabels)
	if err != nil {
		return nil, err
	}

	l := make(Labels, h.Rows)
	for i := range l {
		l[i] = int(int64(binary.LittleEndian.Uint64(payload[i*8:])))
	}
	return l, nil
}

func decode(data []byte, kind Kind) (*Header, []byte, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if h.Kind != kind {
		return nil, nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, h.Kind, kind)
	}
	if h.Compression == CompressionNone && h.PayloadLen > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: payload length %d exceeds blob size", ErrCorrupt, h.PayloadLen)
	}

	// The header is untrusted: preallocate at most what the blob could
	// plausibly expand to and let decodeBlocks grow the rest.
	hint := min(h.PayloadLen, uint64(len(data))*maxExpansion)
	payload, err := decodeBlocks(make([]byte, 0, hint), data[HeaderSize:], h.Compression, h.PayloadLen)
	if err != nil {
		return nil, nil, err
	}
	if err := hash.Verify(payload, h.Checksum); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return h, payload, nil
}

// MarshalMatrix is a convenience wrapper around EncodeMatrix.
func MarshalMatrix(m Matrix, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMatrix(&buf, m, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalLabels is a convenience wrapper around EncodeLabels.
func MarshalLabels(l Labels, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeLabels(&buf, l, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
