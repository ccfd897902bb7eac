// Package hash provides the checksum used by the dataset blob format.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go's hash/crc32
// computes with hardware instructions on x86 (SSE4.2) and ARM (CRC extension).
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
