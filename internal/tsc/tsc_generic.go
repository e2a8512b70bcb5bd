//go:build !amd64

// Package tsc provides the monotonic, syscall-free time source stamped into
// every decoded record and used for one-shot frequency calibration.
package tsc

import "time"

// Now falls back to the wall clock on non-amd64 hosts; there is no portable
// cycle counter to read without cgo.
func Now() uint64 {
	return uint64(time.Now().UnixNano())
}
