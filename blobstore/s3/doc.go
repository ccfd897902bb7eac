// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "datasets/")
//	loader := dataset.NewLoader(store)
//
// # Features
//
//   - Range reads for chunked, rate-limited dataset downloads
//   - Multipart uploads for large matrices
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
