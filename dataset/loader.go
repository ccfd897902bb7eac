package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hupe1980/knn/blobstore"
	"github.com/hupe1980/knn/resource"
)

// Blob names used by SaveSet and LoadSet.
const (
	TrainName       = "train.knnb"
	TrainLabelsName = "train_labels.knnb"
	TestName        = "test.knnb"
	TestLabelsName  = "test_labels.knnb"
)

const defaultReadChunkSize = 1 << 20

// Loader reads and writes datasets through a BlobStore.
type Loader struct {
	store     blobstore.BlobStore
	rc        *resource.Controller
	chunkSize int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithResourceController throttles reads with the controller's IO limiter.
func WithResourceController(rc *resource.Controller) LoaderOption {
	return func(l *Loader) {
		l.rc = rc
	}
}

// WithReadChunkSize sets the size of the chunks used to read non-mappable blobs.
func WithReadChunkSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// NewLoader creates a Loader over store.
func NewLoader(store blobstore.BlobStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:     store,
		chunkSize: defaultReadChunkSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsCSV reports whether name is read as CSV.
func IsCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}

// withBlob calls fn with the full contents of the named blob. The slice is
// only valid during fn.
func (l *Loader) withBlob(ctx context.Context, name string, fn func([]byte) error) error {
	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			if err := l.rc.AcquireIO(ctx, len(data)); err != nil {
				return err
			}
			return fn(data)
		}
	}

	buf := make([]byte, size)
	for off := int64(0); off < size; {
		n := min(int64(l.chunkSize), size-off)
		if err := l.rc.AcquireIO(ctx, int(n)); err != nil {
			return err
		}
		read, err := blob.ReadAt(ctx, buf[off:off+n], off)
		if err != nil && !(errors.Is(err, io.EOF) && int64(read) == n) {
			return fmt.Errorf("dataset: read %s: %w", name, err)
		}
		off += n
	}
	return fn(buf)
}

// ReadMatrix reads a matrix blob. Names ending in .csv are parsed as
// unlabelled CSV.
func (l *Loader) ReadMatrix(ctx context.Context, name string) (Matrix, error) {
	if IsCSV(name) {
		m, _, err := l.ReadCSV(ctx, name, false)
		return m, err
	}

	var m Matrix
	err := l.withBlob(ctx, name, func(data []byte) error {
		var err error
		m, err = DecodeMatrix(data)
		return err
	})
	if err != nil {
		return Matrix{}, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// ReadLabels reads a labels blob. Names ending in .csv hold one label per line.
func (l *Loader) ReadLabels(ctx context.Context, name string) (Labels, error) {
	if IsCSV(name) {
		m, _, err := l.ReadCSV(ctx, name, false)
		if err != nil {
			return nil, err
		}
		if m.Dim != 1 && m.Rows > 0 {
			return nil, fmt.Errorf("%w: %s: label csv has %d columns", ErrShape, name, m.Dim)
		}
		labels := make(Labels, m.Rows)
		for i, v := range m.Data {
			labels[i] = int(v)
			if float64(labels[i]) != v {
				return nil, fmt.Errorf("%w: %s: label %v in row %d is not an integer", ErrCorrupt, name, v, i)
			}
		}
		return labels, nil
	}

	var labels Labels
	err := l.withBlob(ctx, name, func(data []byte) error {
		var err error
		labels, err = DecodeLabels(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return labels, nil
}

// ReadCSV streams a CSV blob through the IO limiter.
func (l *Loader) ReadCSV(ctx context.Context, name string, labelled bool) (Matrix, Labels, error) {
	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return Matrix{}, nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return Matrix{}, nil, fmt.Errorf("dataset: read %s: %w", name, err)
	}
	defer rc.Close()

	m, labels, err := ReadCSV(resource.NewRateLimitedReader(ctx, rc, l.rc), labelled)
	if err != nil {
		return Matrix{}, nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, labels, nil
}

// WriteMatrix stores m under name.
func (l *Loader) WriteMatrix(ctx context.Context, name string, m Matrix, c Compression) error {
	var buf bytes.Buffer
	var err error
	if IsCSV(name) {
		err = WriteCSV(&buf, m, nil)
	} else {
		err = EncodeMatrix(&buf, m, c)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return l.store.Put(ctx, name, buf.Bytes())
}

// WriteLabelledCSV stores m as CSV under name with labels as the trailing
// column, the layout ReadCSV expects when labelled is true.
func (l *Loader) WriteLabelledCSV(ctx context.Context, name string, m Matrix, labels Labels) error {
	if len(labels) != m.Rows {
		return fmt.Errorf("%s: %w: %d labels for %d rows", name, ErrShape, len(labels), m.Rows)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, m, labels); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return l.store.Put(ctx, name, buf.Bytes())
}

// WriteLabels stores labels under name.
func (l *Loader) WriteLabels(ctx context.Context, name string, labels Labels, c Compression) error {
	var buf bytes.Buffer
	var err error
	if IsCSV(name) {
		m := NewMatrix(len(labels), 1)
		for i, v := range labels {
			m.Data[i] = float64(v)
		}
		err = WriteCSV(&buf, m, nil)
	} else {
		err = EncodeLabels(&buf, labels, c)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return l.store.Put(ctx, name, buf.Bytes())
}

// SaveSet writes all parts of set under prefix.
func (l *Loader) SaveSet(ctx context.Context, prefix string, set *Set, c Compression) error {
	if err := l.WriteMatrix(ctx, path.Join(prefix, TrainName), set.Train, c); err != nil {
		return err
	}
	if err := l.WriteLabels(ctx, path.Join(prefix, TrainLabelsName), set.TrainLabels, c); err != nil {
		return err
	}
	if err := l.WriteMatrix(ctx, path.Join(prefix, TestName), set.Test, c); err != nil {
		return err
	}
	return l.WriteLabels(ctx, path.Join(prefix, TestLabelsName), set.TestLabels, c)
}

// LoadSet reads a set written by SaveSet. A missing test labels blob leaves
// TestLabels nil.
func (l *Loader) LoadSet(ctx context.Context, prefix string, classes int) (*Set, error) {
	set := &Set{Classes: classes}

	var err error
	if set.Train, err = l.ReadMatrix(ctx, path.Join(prefix, TrainName)); err != nil {
		return nil, err
	}
	if set.TrainLabels, err = l.ReadLabels(ctx, path.Join(prefix, TrainLabelsName)); err != nil {
		return nil, err
	}
	if set.Test, err = l.ReadMatrix(ctx, path.Join(prefix, TestName)); err != nil {
		return nil, err
	}
	set.TestLabels, err = l.ReadLabels(ctx, path.Join(prefix, TestLabelsName))
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return nil, err
	}
	return set, nil
}
