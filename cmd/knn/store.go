package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/knn/blobstore"
	"github.com/hupe1980/knn/blobstore/minio"
	"github.com/hupe1980/knn/blobstore/s3"
)

type storeKind int

const (
	storeMemory storeKind = iota
	storeLocal
	storeS3
	storeMinio
)

// storeSpec is a parsed -store URI.
type storeSpec struct {
	kind     storeKind
	path     string // local root
	endpoint string // minio host[:port]
	bucket   string
	prefix   string
}

// parseStoreURI accepts mem://, file://path, s3://bucket/prefix,
// minio://endpoint/bucket/prefix or a plain filesystem path.
func parseStoreURI(uri string) (storeSpec, error) {
	switch {
	case uri == "" || uri == "mem://":
		return storeSpec{kind: storeMemory}, nil
	case strings.HasPrefix(uri, "file://"):
		p := strings.TrimPrefix(uri, "file://")
		if p == "" {
			return storeSpec{}, fmt.Errorf("store %q: empty path", uri)
		}
		return storeSpec{kind: storeLocal, path: p}, nil
	case !strings.Contains(uri, "://"):
		return storeSpec{kind: storeLocal, path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return storeSpec{}, fmt.Errorf("store %q: %w", uri, err)
	}
	rest := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return storeSpec{}, fmt.Errorf("store %q: missing bucket", uri)
		}
		return storeSpec{kind: storeS3, bucket: u.Host, prefix: rest}, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if u.Host == "" || bucket == "" {
			return storeSpec{}, fmt.Errorf("store %q: want minio://endpoint/bucket[/prefix]", uri)
		}
		return storeSpec{kind: storeMinio, endpoint: u.Host, bucket: bucket, prefix: prefix}, nil
	default:
		return storeSpec{}, fmt.Errorf("store %q: unsupported scheme %q", uri, u.Scheme)
	}
}

// openStore creates the BlobStore described by uri. S3 credentials come from
// the default AWS configuration chain; MinIO credentials from
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY, with TLS enabled by MINIO_SECURE=true.
// A missing MinIO bucket is created.
func openStore(ctx context.Context, uri string) (blobstore.BlobStore, error) {
	spec, err := parseStoreURI(uri)
	if err != nil {
		return nil, err
	}

	switch spec.kind {
	case storeLocal:
		return blobstore.NewLocalStore(spec.path), nil
	case storeS3:
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(cfg), spec.bucket, spec.prefix), nil
	case storeMinio:
		client, err := miniogo.New(spec.endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		store := minio.NewStore(client, spec.bucket, spec.prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return blobstore.NewMemoryStore(), nil
	}
}
