package blobstore

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps dataset blobs in process memory. It is used by tests and
// by the CLI's mem:// store, where a generated dataset is written and read
// back within one run.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	bytes int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// memoryKey normalizes a blob name so that "train.knnb", "./train.knnb" and
// "/train.knnb" address the same entry, matching LocalStore's behavior.
func memoryKey(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// Open returns a read handle sharing the stored bytes.
func (m *MemoryStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.blobs[memoryKey(name)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	// Stored slices are never mutated after Put.
	return memoryBlob(data), nil
}

// Put stores a private copy of data under name.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := memoryKey(name)
	stored := bytes.Clone(data)
	if stored == nil {
		stored = []byte{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes += int64(len(stored)) - int64(len(m.blobs[key]))
	m.blobs[key] = stored
	return nil
}

// Delete removes a blob. Missing blobs are ignored.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := memoryKey(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes -= int64(len(m.blobs[key]))
	delete(m.blobs, key)
	return nil
}

// List returns the sorted names of all blobs with the given prefix.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// SizeBytes reports the total size of all stored blobs.
func (m *MemoryStore) SizeBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytes
}

// memoryBlob is an immutable view of a stored blob.
type memoryBlob []byte

func (b memoryBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return bytes.NewReader(b).ReadAt(p, off)
}

func (b memoryBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := int64(len(b))
	off = min(max(off, 0), size)
	end := min(off+max(length, 0), size)
	return io.NopCloser(bytes.NewReader(b[off:end])), nil
}

func (b memoryBlob) Size() int64 { return int64(len(b)) }

func (b memoryBlob) Close() error { return nil }

func (b memoryBlob) Bytes() ([]byte, error) { return b, nil }
