package writer

import (
	"bufio"
	"os"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
)

// bufferedSink wraps an ordinary file in a bufio.Writer. It shares the
// accumulate/flush discipline of directSink but applies no alignment
// rounding on flush.
type bufferedSink struct {
	file *os.File
	w    *bufio.Writer
	buf  []byte // scratch for a single record's serialised image
}

func newBufferedSink(cfg Config) (sink, error) {
	f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 4 << 20
	}
	return &bufferedSink{
		file: f,
		w:    bufio.NewWriterSize(f, size),
		buf:  make([]byte, 64),
	}, nil
}

func (s *bufferedSink) write(rec *itch.Record) (int, error) {
	if _, ok := itch.WidthFor(rec.Tag); !ok {
		return 0, ErrInvalidRecordTag
	}
	n, err := rec.Serialize(s.buf)
	if err != nil {
		return 0, err
	}
	if _, err := s.w.Write(s.buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *bufferedSink) flush() error {
	return s.w.Flush()
}

func (s *bufferedSink) close(_ int64) error {
	if err := s.w.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
