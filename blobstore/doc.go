// Package blobstore provides the storage abstraction datasets and predictions
// are read from and written to.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads and atomic rename writes
//   - MemoryStore: in-memory, for tests and pipelines that never touch disk
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
