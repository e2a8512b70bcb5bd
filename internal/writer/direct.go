package writer

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
)

// directSink accumulates records into a page-aligned buffer and issues
// unbuffered, page-cache-bypassing writes. The stdlib has no posix_memalign
// equivalent, so the aligned region is carved out of an oversized
// allocation using unsafe.Pointer arithmetic.
type directSink struct {
	file      *os.File
	alignment int

	raw    []byte // oversized backing allocation
	buf    []byte // page-aligned slice into raw, len == BufferSize
	offset int    // bytes of buf holding true record content
}

func newDirectSink(cfg Config) (sink, error) {
	f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|unix.O_DIRECT, 0o644)
	if err != nil {
		return nil, err
	}

	alignment := cfg.Alignment
	if alignment <= 0 {
		alignment = 4096
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 4 << 20
	}
	if size%alignment != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("buffer size %d not a multiple of alignment %d", size, alignment)
	}

	raw := make([]byte, size+alignment)
	buf := alignSlice(raw, size, alignment)

	return &directSink{file: f, alignment: alignment, raw: raw, buf: buf}, nil
}

// alignSlice returns the length-n slice of raw starting at the first
// address that is a multiple of alignment.
func alignSlice(raw []byte, n, alignment int) []byte {
	base := uintptr(unsafe.Pointer(&raw[0]))
	pad := (alignment - int(base%uintptr(alignment))) % alignment
	return raw[pad : pad+n]
}

func (s *directSink) write(rec *itch.Record) (int, error) {
	width, ok := itch.WidthFor(rec.Tag)
	if !ok {
		return 0, ErrInvalidRecordTag
	}
	if s.offset+width > len(s.buf) {
		if err := s.flush(); err != nil {
			return 0, err
		}
	}
	n, err := rec.Serialize(s.buf[s.offset : s.offset+width])
	if err != nil {
		return 0, err
	}
	s.offset += n
	return n, nil
}

// flush rounds the accumulated length up to alignment and issues a single
// write; the rounding-up padding bytes are untyped filler that land on disk
// but do not count toward the writer's reported total.
func (s *directSink) flush() error {
	if s.offset == 0 {
		return nil
	}
	rounded := (s.offset + s.alignment - 1) / s.alignment * s.alignment
	for i := s.offset; i < rounded; i++ {
		s.buf[i] = 0
	}
	if _, err := s.file.Write(s.buf[:rounded]); err != nil {
		return err
	}
	s.offset = 0
	return nil
}

func (s *directSink) close(_ int64) error {
	if err := s.flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
