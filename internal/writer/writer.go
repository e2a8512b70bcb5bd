// Package writer implements the asynchronous persistence engine that drains
// decoded ITCH records from a ring queue and appends their serialised image
// to a configured sink. The writer owns exactly one background worker and
// exactly one sink for the lifetime of a Start/Stop cycle.
package writer

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
	"github.com/PrathamDesai07/fastmarket/internal/ring"
	"github.com/PrathamDesai07/fastmarket/internal/tsc"
)

// WriteMode selects the sink backend used by a Writer.
type WriteMode int

const (
	// MMAP maps the output file into the process address space and writes
	// records directly into the mapped region, doubling the mapping on
	// overflow.
	MMAP WriteMode = iota
	// DIRECT opens the output file with O_DIRECT and accumulates records
	// into a page-aligned buffer, flushing alignment-rounded writes.
	DIRECT
	// BUFFERED wraps a plain file in a bufio.Writer with no alignment
	// rounding.
	BUFFERED
)

var (
	// ErrSinkClosed names a closed sink. No function in this package
	// returns it: Stop on a writer that is not running returns nil, and
	// worker failures are returned as their own wrapped errors.
	ErrSinkClosed = errors.New("writer: sink closed")
	// ErrNotStarted names a writer with no running worker. No function in
	// this package returns it: Log on a stopped writer still enqueues, and
	// Stop on a stopped writer returns nil.
	ErrNotStarted = errors.New("writer: not started")
	// ErrInvalidRecordTag is the invariant-violation error raised when a
	// record reaches serialisation with a tag outside the known alphabet.
	ErrInvalidRecordTag = errors.New("writer: record tag disagrees with any known variant")
)

// Config configures a Writer. Fields not meaningful to the selected
// WriteMode are ignored.
type Config struct {
	Path string
	Mode WriteMode

	// QueueCapacity must be a power of two; it bounds producer/consumer
	// decoupling depth.
	QueueCapacity uint64

	// BufferSize is the I/O accumulation buffer size for DIRECT/BUFFERED.
	BufferSize int

	// Alignment is the DIRECT block size; it must divide BufferSize.
	Alignment int

	// InitialFileSize is the starting mapped size for MMAP.
	InitialFileSize int64

	// PinCore, when >= 0, pins the worker goroutine's OS thread to the
	// given CPU core before entering the drain loop.
	PinCore int
}

// DefaultConfig returns the design constants named by the writer's backend
// contract: a 4 MiB accumulation buffer, 4096 B alignment, and a 1 GiB
// initial MMAP size.
func DefaultConfig(path string, mode WriteMode) Config {
	return Config{
		Path:            path,
		Mode:            mode,
		QueueCapacity:   1 << 16,
		BufferSize:      4 << 20,
		Alignment:       4096,
		InitialFileSize: 1 << 30,
		PinCore:         -1,
	}
}

// sink is the backend-specific half of the writer: it knows how to append a
// serialised record image and how to release its resources.
type sink interface {
	write(rec *itch.Record) (int, error)
	flush() error
	close(totalWritten int64) error
}

// Writer drains a ring queue into a backend-selected sink on a single
// background worker.
type Writer struct {
	cfg Config

	running atomic.Bool
	queue   *ring.Queue[itch.Record]
	done    chan struct{}

	totalWritten atomic.Int64
	sinkErr      atomic.Pointer[error]

	s sink
}

// New constructs a Writer in the stopped state. No resources are acquired
// until Start is called.
func New(cfg Config) *Writer {
	return &Writer{
		cfg:   cfg,
		queue: ring.New[itch.Record](cfg.QueueCapacity),
	}
}

// Start opens the sink and launches the worker. It is idempotent: calling
// Start on an already-running writer returns nil without effect.
func (w *Writer) Start() error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	s, err := openSink(w.cfg)
	if err != nil {
		w.running.Store(false)
		return fmt.Errorf("writer: open sink: %w", err)
	}
	w.s = s
	w.done = make(chan struct{})

	go w.workerLoop()
	return nil
}

// Log forwards record into the ring queue. It never blocks and is safe to
// call from any thread; it returns false when the queue is full.
func (w *Writer) Log(record itch.Record) bool {
	return w.queue.TryEnqueue(record)
}

// Stop signals the worker to drain the queue, flush, sync, and close the
// sink, then waits for it to exit. It is idempotent. The returned error is
// non-nil if the worker observed an I/O failure at any point during its
// lifetime.
func (w *Writer) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	<-w.done
	if p := w.sinkErr.Load(); p != nil {
		return *p
	}
	return nil
}

// TotalWritten returns bytes durably appended to the sink so far.
func (w *Writer) TotalWritten() int64 {
	return w.totalWritten.Load()
}

// QueueSize returns an approximate queue depth.
func (w *Writer) QueueSize() uint64 {
	return w.queue.Size()
}

func (w *Writer) workerLoop() {
	defer close(w.done)

	if w.cfg.PinCore >= 0 {
		runtime.LockOSThread()
		// Best-effort: if setting the affinity fails, the worker runs unpinned.
		_ = tsc.PinCurrentThread(w.cfg.PinCore)
	}

	var rec itch.Record
	for w.running.Load() {
		if w.queue.TryDequeue(&rec) {
			if !w.writeOne(&rec) {
				return
			}
			continue
		}
		if err := w.s.flush(); err != nil {
			w.poison(fmt.Errorf("writer: flush: %w", err))
			return
		}
		runtime.Gosched()
	}

	for w.queue.TryDequeue(&rec) {
		if !w.writeOne(&rec) {
			return
		}
	}

	if err := w.s.close(w.totalWritten.Load()); err != nil {
		w.poison(fmt.Errorf("writer: close: %w", err))
	}
}

func (w *Writer) writeOne(rec *itch.Record) bool {
	n, err := w.s.write(rec)
	if err != nil {
		w.poison(fmt.Errorf("writer: write: %w", err))
		return false
	}
	w.totalWritten.Add(int64(n))
	return true
}

func (w *Writer) poison(err error) {
	w.sinkErr.Store(&err)
	_ = w.s.close(w.totalWritten.Load())
}

func openSink(cfg Config) (sink, error) {
	switch cfg.Mode {
	case MMAP:
		return newMMAPSink(cfg)
	case DIRECT:
		return newDirectSink(cfg)
	case BUFFERED:
		return newBufferedSink(cfg)
	default:
		return nil, fmt.Errorf("writer: unknown write mode %d", cfg.Mode)
	}
}
