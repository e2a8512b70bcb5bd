//go:build !linux

package tsc

import "errors"

// PinCurrentThread is unsupported outside Linux; sched_setaffinity has no
// portable equivalent.
func PinCurrentThread(core int) error {
	return errors.New("tsc: CPU pinning is only supported on linux")
}
