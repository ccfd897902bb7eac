package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of an encoded blob.
type Compression uint8

const (
	// CompressionNone stores blocks verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the flag name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as accepted on the command line.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("dataset: unknown compression %q", s)
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlockSize))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize u32][CompressedSize u32][Data...].
// CompressedSize == 0 means the data is stored verbatim.
const (
	blockHeaderSize  = 8
	defaultBlockSize = 256 * 1024
	// maxBlockSize bounds the decoded size of a single block.
	maxBlockSize = 16 << 20
	// maxExpansion bounds the initial payload buffer relative to the blob size.
	maxExpansion = 16
)

// compressBlock frames one block. Blocks that do not shrink below 90% of
// their size are stored verbatim.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	var err error

	switch c {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZSTD:
		compressed = compressBlockZSTD(data)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressBlockZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// blockWriter buffers writes and emits framed blocks of at most blockSize bytes.
type blockWriter struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buf         []byte
	written     int64
}

func newBlockWriter(w io.Writer, c Compression, blockSize int) *blockWriter {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	blockSize = min(blockSize, maxBlockSize)
	return &blockWriter{
		w:           w,
		compression: c,
		blockSize:   blockSize,
		buf:         make([]byte, 0, blockSize),
	}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if len(b.buf) == b.blockSize {
			if err := b.flushBlock(); err != nil {
				return total, err
			}
		}
		n := min(len(p), b.blockSize-len(b.buf))
		b.buf = append(b.buf, p[:n]...)
		total += n
		p = p[n:]
	}
	return total, nil
}

func (b *blockWriter) flushBlock() error {
	if len(b.buf) == 0 {
		return nil
	}

	framed, err := compressBlock(b.buf, b.compression)
	if err != nil {
		return err
	}

	n, err := b.w.Write(framed)
	b.written += int64(n)
	if err != nil {
		return err
	}
	b.buf = b.buf[:0]
	return nil
}

// Flush writes any buffered data as a final block.
func (b *blockWriter) Flush() error {
	return b.flushBlock()
}

// decodeBlocks decodes framed blocks from data until want bytes have been
// produced. The result is appended to dst.
func decodeBlocks(dst, data []byte, c Compression, want uint64) ([]byte, error) {
	var dec *zstd.Decoder
	if c == CompressionZSTD {
		dec = getZstdDecoder()
		defer putZstdDecoder(dec)
	}

	off := 0
	for uint64(len(dst)) < want {
		if off+blockHeaderSize > len(data) {
			return nil, fmt.Errorf("%w: truncated block header at offset %d", ErrCorrupt, off)
		}
		uncompressedSize := int(binary.LittleEndian.Uint32(data[off:]))
		compressedSize := int(binary.LittleEndian.Uint32(data[off+4:]))
		off += blockHeaderSize

		if uncompressedSize > maxBlockSize || uint64(uncompressedSize) > want-uint64(len(dst)) {
			return nil, fmt.Errorf("%w: block of %d bytes exceeds remaining payload", ErrCorrupt, uncompressedSize)
		}

		if compressedSize == 0 {
			if off+uncompressedSize > len(data) {
				return nil, fmt.Errorf("%w: block extends beyond data", ErrCorrupt)
			}
			dst = append(dst, data[off:off+uncompressedSize]...)
			off += uncompressedSize
			continue
		}

		if off+compressedSize > len(data) {
			return nil, fmt.Errorf("%w: compressed block extends beyond data", ErrCorrupt)
		}
		src := data[off : off+compressedSize]
		off += compressedSize

		start := len(dst)
		switch c {
		case CompressionLZ4:
			dst = append(dst, make([]byte, uncompressedSize)...)
			n, err := lz4.UncompressBlock(src, dst[start:])
			if err != nil {
				return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
			}
			if n != uncompressedSize {
				return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
			}
		case CompressionZSTD:
			var err error
			dst, err = dec.DecodeAll(src, dst)
			if err != nil {
				return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
			}
			if len(dst)-start != uncompressedSize {
				return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
			}
		default:
			return nil, fmt.Errorf("%w: compressed block in uncompressed blob", ErrCorrupt)
		}
	}

	if uint64(len(dst)) != want {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrCorrupt, len(dst), want)
	}
	return dst, nil
}
