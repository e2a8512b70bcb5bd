package tsc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowIsMonotonicWithinThread(t *testing.T) {
	a := Now()
	b := Now()
	require.GreaterOrEqual(t, b, a)
}

func TestCalibrateRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Calibrate(ctx, time.Second)
	require.Error(t, err)
}

func TestCalibrateReturnsPositiveFrequency(t *testing.T) {
	freq, err := Calibrate(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Greater(t, freq, uint64(0))
}
