// Package dataset holds the in-memory data model of a classification run
// (row-major feature matrices and label vectors) and its on-disk forms.
//
// # Binary format
//
// Matrices and label vectors are stored as "KNNB" blobs: a fixed 32-byte
// header followed by a stream of blocks.
//
//	[magic u32][version u16][kind u8][compression u8]
//	[rows u64][dim u32][crc32c u32][payload len u64]
//	[uncompressed u32][compressed u32][data...] ...
//
// All integers are little-endian. A block whose compressed size is zero is
// stored verbatim. The checksum covers the decoded payload, which holds
// float64 bits for matrices and int64 values for labels.
//
// # CSV
//
// One sample per line, numeric feature columns, optionally followed by an
// integer label column. Lines starting with '#' are ignored.
//
// # Loading
//
// A Loader reads and writes both formats through a blobstore.BlobStore.
// Mappable blobs are decoded in place; other blobs are read in chunks that
// are throttled by an optional resource.Controller.
package dataset
