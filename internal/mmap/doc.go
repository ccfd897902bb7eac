// Package mmap provides read-only memory-mapped file access for zero-copy
// dataset loading.
//
// # Usage
//
//	m, err := mmap.Open("train.knnb")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.Sequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must ensure no goroutine touches Bytes() after Close returns.
package mmap
