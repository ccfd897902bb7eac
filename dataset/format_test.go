package dataset

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix(t *testing.T) Matrix {
	t.Helper()
	set, err := Generate(GenerateConfig{Train: 200, Test: 0, Dim: 7, Classes: 2, Seed: 3})
	require.NoError(t, err)
	return set.Train
}

func TestEncodeMatrix(t *testing.T) {
	m := testMatrix(t)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := MarshalMatrix(m, c)
			require.NoError(t, err)

			h, err := DecodeHeader(data)
			require.NoError(t, err)
			assert.Equal(t, KindMatrix, h.Kind)
			assert.Equal(t, c, h.Compression)
			assert.Equal(t, uint64(200), h.Rows)
			assert.Equal(t, uint32(7), h.Dim)

			got, err := DecodeMatrix(data)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestEncodeMatrix_SpecialValues(t *testing.T) {
	m := Matrix{
		Rows: 2,
		Dim:  2,
		Data: []float64{math.Inf(1), math.Inf(-1), math.Copysign(0, -1), math.NaN()},
	}

	data, err := MarshalMatrix(m, CompressionLZ4)
	require.NoError(t, err)

	got, err := DecodeMatrix(data)
	require.NoError(t, err)
	for i := range m.Data {
		assert.Equal(t, math.Float64bits(m.Data[i]), math.Float64bits(got.Data[i]))
	}
}

func TestEncodeLabels(t *testing.T) {
	labels := Labels{0, 2, 1, 1, 0, -1, 1 << 40}

	data, err := MarshalLabels(labels, CompressionZSTD)
	require.NoError(t, err)

	got, err := DecodeLabels(data)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestEncode_Empty(t *testing.T) {
	data, err := MarshalMatrix(Matrix{}, CompressionNone)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize)

	m, err := DecodeMatrix(data)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rows)

	data, err = MarshalLabels(Labels{}, CompressionLZ4)
	require.NoError(t, err)
	l, err := DecodeLabels(data)
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestDecode_Errors(t *testing.T) {
	m := testMatrix(t)
	data, err := MarshalMatrix(m, CompressionNone)
	require.NoError(t, err)

	t.Run("short", func(t *testing.T) {
		_, err := DecodeMatrix(data[:10])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xFF
		_, err := DecodeMatrix(bad)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint16(bad[4:], 99)
		_, err := DecodeMatrix(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("kind", func(t *testing.T) {
		_, err := DecodeLabels(data)
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("checksum", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[len(bad)-1] ^= 0x01
		_, err := DecodeMatrix(bad)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeMatrix(data[:len(data)-8])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("shape", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint64(bad[8:], 3)
		_, err := DecodeMatrix(bad)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestEncodeMatrix_Invalid(t *testing.T) {
	_, err := MarshalMatrix(Matrix{Rows: 2, Dim: 2, Data: []float64{1}}, CompressionNone)
	assert.ErrorIs(t, err, ErrShape)

	_, err = MarshalMatrix(Matrix{}, Compression(9))
	assert.Error(t, err)
}

func TestDecode_UntrustedHeader(t *testing.T) {
	blob := func(h Header, body ...byte) []byte {
		h.Magic, h.Version = MagicNumber, Version
		return append(h.Encode(), body...)
	}
	block := func(uncompressed, compressed uint32, data ...byte) []byte {
		b := make([]byte, blockHeaderSize, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(b[0:], uncompressed)
		binary.LittleEndian.PutUint32(b[4:], compressed)
		return append(b, data...)
	}

	tests := []struct {
		name   string
		data   []byte
		labels bool
	}{
		{
			name:   "label count wraps payload length",
			data:   blob(Header{Kind: KindLabels, Rows: 1 << 61}),
			labels: true,
		},
		{
			name: "matrix size wraps payload length",
			data: blob(Header{Kind: KindMatrix, Rows: 1 << 58, Dim: 8}),
		},
		{
			name: "rows times dim overflows",
			data: blob(Header{Kind: KindMatrix, Rows: 1 << 40, Dim: 1 << 30, PayloadLen: 0}),
		},
		{
			name:   "huge compressed payload",
			data:   blob(Header{Kind: KindLabels, Compression: CompressionZSTD, Rows: 1 << 57, PayloadLen: 1 << 60}),
			labels: true,
		},
		{
			name:   "compressed block larger than payload",
			data:   blob(Header{Kind: KindLabels, Compression: CompressionZSTD, Rows: 1, PayloadLen: 8}, block(1<<20, 4, 1, 2, 3, 4)...),
			labels: true,
		},
		{
			name:   "stored block larger than payload",
			data:   blob(Header{Kind: KindLabels, Compression: CompressionLZ4, Rows: 1, PayloadLen: 8}, block(16, 0, make([]byte, 16)...)...),
			labels: true,
		},
		{
			name: "empty matrix with rows",
			data: blob(Header{Kind: KindMatrix, Rows: 1 << 61}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				if tt.labels {
					_, err = DecodeLabels(tt.data)
				} else {
					_, err = DecodeMatrix(tt.data)
				}
			})
			assert.Error(t, err)
		})
	}
}
