package tsc

import (
	"context"
	"errors"
	"time"
)

// Calibrate measures the TSC delta over roughly window of wall-clock time
// and returns an estimated ticks-per-second frequency. It is a one-shot
// initialiser with a cost proportional to window (typically ~1s); never call
// it from the decode path.
func Calibrate(ctx context.Context, window time.Duration) (uint64, error) {
	start := Now()
	wallStart := time.Now()

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	end := Now()
	elapsed := time.Since(wallStart).Seconds()
	if elapsed <= 0 {
		return 0, errors.New("tsc: non-positive calibration interval")
	}
	return uint64(float64(end-start) / elapsed), nil
}
