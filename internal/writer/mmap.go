package writer

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
)

// mmapSink writes records directly into a memory-mapped file, doubling the
// mapping on overflow and truncating to the exact written length on close.
type mmapSink struct {
	file   *os.File
	region mmap.MMap
	size   int64
	offset int64
}

func newMMAPSink(cfg Config) (sink, error) {
	f, err := os.OpenFile(cfg.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	initial := cfg.InitialFileSize
	if initial <= 0 {
		initial = 1 << 30
	}
	if err := f.Truncate(initial); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncate to initial size: %w", err)
	}

	region, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_SEQUENTIAL); err != nil {
		// sequential hint is advisory only; proceed without it
		_ = err
	}

	return &mmapSink{file: f, region: region, size: initial}, nil
}

func (s *mmapSink) write(rec *itch.Record) (int, error) {
	width, ok := itch.WidthFor(rec.Tag)
	if !ok {
		return 0, ErrInvalidRecordTag
	}
	if s.offset+int64(width) > s.size {
		if err := s.expand(); err != nil {
			return 0, err
		}
	}
	n, err := rec.Serialize(s.region[s.offset : s.offset+int64(width)])
	if err != nil {
		return 0, err
	}
	s.offset += int64(n)
	return n, nil
}

func (s *mmapSink) expand() error {
	if err := s.region.Flush(); err != nil {
		return fmt.Errorf("flush before remap: %w", err)
	}
	if err := s.region.Unmap(); err != nil {
		return fmt.Errorf("unmap before remap: %w", err)
	}

	newSize := s.size * 2
	if err := s.file.Truncate(newSize); err != nil {
		return fmt.Errorf("expand file: %w", err)
	}

	region, err := mmap.Map(s.file, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("remap: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_SEQUENTIAL); err != nil {
		_ = err
	}

	s.region = region
	s.size = newSize
	return nil
}

// flush is a no-op for mmapSink: every write already lands in the mapped
// region, and the worker's idle path need not msync on every empty poll.
func (s *mmapSink) flush() error {
	return nil
}

func (s *mmapSink) close(totalWritten int64) error {
	if err := s.region.Flush(); err != nil {
		_ = s.region.Unmap()
		_ = s.file.Close()
		return fmt.Errorf("final flush: %w", err)
	}
	if err := s.region.Unmap(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("final unmap: %w", err)
	}
	if err := s.file.Truncate(totalWritten); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("truncate to exact offset: %w", err)
	}
	return s.file.Close()
}
