package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/knn/blobstore"
	"github.com/minio/minio-go/v7"
)

// Content types attached to uploaded dataset blobs.
const (
	ContentTypeKNNB   = "application/x-knnb"
	ContentTypeCSV    = "text/csv"
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Store is a blobstore.BlobStore over one bucket of a MinIO or other
// S3-compatible server. All names are resolved below a fixed key prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore returns a Store for bucket. rootPrefix is joined in front of every
// blob name (e.g. "datasets/iris").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(rootPrefix, "/"),
	}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: make bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// contentType picks the upload content type from the blob extension.
func contentType(name string) string {
	switch path.Ext(name) {
	case ".knnb":
		return ContentTypeKNNB
	case ".csv":
		return ContentTypeCSV
	case ".json":
		return ContentTypeJSON
	default:
		return ContentTypeBinary
	}
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open stats the object and returns a handle issuing ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case isNotFound(err):
		return nil, blobstore.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}

	return &object{store: s, key: key, size: info.Size}, nil
}

// Put uploads data in a single request. Objects are replaced atomically by
// the server.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	opts := minio.PutObjectOptions{ContentType: contentType(name)}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("minio: put %s: %w", key, err)
	}
	return nil
}

// Delete removes a blob. Missing blobs are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.key(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return fmt.Errorf("minio: delete %s: %w", key, err)
	}
	return nil
}

// List returns the sorted names, relative to the store prefix, of all blobs
// starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	if full != "" && (prefix == "" || strings.HasSuffix(prefix, "/")) {
		full += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: full, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %s: %w", full, obj.Err)
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// object is a remote blob of known size.
type object struct {
	store *Store
	key   string
	size  int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

// span clamps [off, off+length) to the object and reports whether it is empty.
func (o *object) span(off, length int64) (int64, int64, bool) {
	if off < 0 || off >= o.size || length <= 0 {
		return 0, 0, false
	}
	return off, min(off+length, o.size), true
}

func (o *object) open(ctx context.Context, off, end int64) (*minio.Object, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end-1); err != nil {
		return nil, err
	}
	obj, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", o.key, err)
	}
	return obj, nil
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 && off >= 0 && off <= o.size {
		return 0, nil
	}
	start, end, ok := o.span(off, int64(len(p)))
	if !ok {
		return 0, io.EOF
	}

	obj, err := o.open(ctx, start, end)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, p[:end-start])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	start, end, ok := o.span(off, length)
	if !ok {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return o.open(ctx, start, end)
}
