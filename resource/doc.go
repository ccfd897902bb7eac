// Package resource bounds the memory, run concurrency and read throughput of
// classification runs that share a process.
//
// All methods are safe on a nil *Controller, which imposes no limits.
package resource
