package writer

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
)

func putHeader(frame []byte, tag itch.Tag, stockLocate, trackingNumber uint16, timestamp uint64) {
	frame[0] = byte(tag)
	binary.BigEndian.PutUint16(frame[1:3], stockLocate)
	binary.BigEndian.PutUint16(frame[3:5], trackingNumber)
	frame[5] = byte(timestamp >> 40)
	frame[6] = byte(timestamp >> 32)
	frame[7] = byte(timestamp >> 24)
	frame[8] = byte(timestamp >> 16)
	frame[9] = byte(timestamp >> 8)
	frame[10] = byte(timestamp)
}

func buildAddOrderFrame(seed uint64) []byte {
	frame := make([]byte, itch.Width[itch.TagAddOrder])
	putHeader(frame, itch.TagAddOrder, 1, 2, seed)
	binary.BigEndian.PutUint64(frame[11:19], seed)
	frame[19] = 'B'
	binary.BigEndian.PutUint32(frame[20:24], 100)
	copy(frame[24:32], "AAPL    ")
	binary.BigEndian.PutUint32(frame[32:36], 1_500_000)
	return frame
}

func buildTradeFrame(seed uint64) []byte {
	frame := make([]byte, itch.Width[itch.TagTrade])
	putHeader(frame, itch.TagTrade, 1, 2, seed)
	binary.BigEndian.PutUint64(frame[11:19], seed)
	frame[19] = 'S'
	binary.BigEndian.PutUint32(frame[20:24], 200)
	copy(frame[24:32], "MSFT    ")
	binary.BigEndian.PutUint32(frame[32:36], 2_500_000)
	binary.BigEndian.PutUint64(frame[36:44], seed)
	return frame
}

func TestPersistAndTruncateAlternatingAddAndTrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")

	cfg := DefaultConfig(path, BUFFERED)
	cfg.PinCore = -1
	w := New(cfg)
	require.NoError(t, w.Start())

	const n = 1000
	for i := 0; i < n; i++ {
		var rec itch.Record
		var ok bool
		if i%2 == 0 {
			rec, ok = itch.Decode(buildAddOrderFrame(uint64(i)))
		} else {
			rec, ok = itch.Decode(buildTradeFrame(uint64(i)))
		}
		require.True(t, ok)
		for !w.Log(rec) {
		}
	}

	require.NoError(t, w.Stop())

	const want = int64(500*36 + 500*44)
	require.Equal(t, want, w.TotalWritten())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, int(want))

	offset := 0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			require.Equal(t, byte('A'), data[offset])
			offset += 36
		} else {
			require.Equal(t, byte('P'), data[offset])
			offset += 44
		}
	}
}

func TestStartIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	w := New(DefaultConfig(path, BUFFERED))
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
}

func TestStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	w := New(DefaultConfig(path, BUFFERED))
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestLogReturnsFalseWhenQueueFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	cfg := DefaultConfig(path, BUFFERED)
	cfg.QueueCapacity = 2
	w := New(cfg)

	rec, ok := itch.Decode(buildAddOrderFrame(1))
	require.True(t, ok)

	require.True(t, w.queue.TryEnqueue(rec))
	require.True(t, w.queue.TryEnqueue(rec))
	require.False(t, w.Log(rec))
}

func TestOpenFailureIsSurfacedFromStart(t *testing.T) {
	w := New(DefaultConfig(filepath.Join(t.TempDir(), "missing-dir", "nested", "capture.bin"), BUFFERED))
	err := w.Start()
	require.Error(t, err)
}

func TestDirectBackendRoundsFlushesToAlignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	cfg := DefaultConfig(path, DIRECT)
	cfg.BufferSize = 8192
	cfg.Alignment = 4096
	w := New(cfg)

	if err := w.Start(); err != nil {
		t.Skipf("O_DIRECT unsupported on this filesystem: %v", err)
	}

	rec, ok := itch.Decode(buildAddOrderFrame(1))
	require.True(t, ok)
	require.True(t, w.Log(rec))

	require.NoError(t, w.Stop())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size()%int64(cfg.Alignment))
	require.GreaterOrEqual(t, info.Size(), int64(36))
}

func TestMMAPBackendWritesExactLengthAfterTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	cfg := DefaultConfig(path, MMAP)
	cfg.InitialFileSize = 4096
	w := New(cfg)
	require.NoError(t, w.Start())

	for i := 0; i < 200; i++ {
		rec, ok := itch.Decode(buildAddOrderFrame(uint64(i)))
		require.True(t, ok)
		for !w.Log(rec) {
		}
	}
	require.NoError(t, w.Stop())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(200*36), info.Size())
}
