package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/PrathamDesai07/fastmarket/internal/writer"
)

// fileConfig is the benchmark.toml key mapping to a writer.Config plus the
// harness-only knobs (message count, output path) that are not part of the
// core's configuration surface.
type fileConfig struct {
	WriteMode       string `toml:"write_mode"`
	QueueCapacity   int64  `toml:"queue_capacity"`
	BufferSize      int    `toml:"buffer_size"`
	Alignment       int    `toml:"alignment"`
	InitialFileSize int64  `toml:"initial_file_size"`
	MessageCount    int    `toml:"message_count"`
	OutputPath      string `toml:"output_path"`
	PinCore         int    `toml:"pin_core"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		WriteMode:       "BUFFERED",
		QueueCapacity:   1 << 16,
		BufferSize:      4 << 20,
		Alignment:       4096,
		InitialFileSize: 1 << 30,
		MessageCount:    1_000_000,
		OutputPath:      "capture.bin",
		PinCore:         -1,
	}
}

// loadBenchmarkConfig reads path, overlaying only the keys present in the
// file onto the defaults.
func loadBenchmarkConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fileConfig{}, fmt.Errorf("load benchmark config: %w", err)
	}

	if meta.IsDefined("write_mode") {
		cfg.WriteMode = strings.TrimSpace(raw.WriteMode)
	}
	if meta.IsDefined("queue_capacity") {
		cfg.QueueCapacity = raw.QueueCapacity
	}
	if meta.IsDefined("buffer_size") {
		cfg.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("alignment") {
		cfg.Alignment = raw.Alignment
	}
	if meta.IsDefined("initial_file_size") {
		cfg.InitialFileSize = raw.InitialFileSize
	}
	if meta.IsDefined("message_count") {
		cfg.MessageCount = raw.MessageCount
	}
	if meta.IsDefined("output_path") {
		cfg.OutputPath = strings.TrimSpace(raw.OutputPath)
	}
	if meta.IsDefined("pin_core") {
		cfg.PinCore = raw.PinCore
	}

	return cfg, nil
}

func (c fileConfig) writeMode() (writer.WriteMode, error) {
	switch strings.ToUpper(strings.TrimSpace(c.WriteMode)) {
	case "MMAP":
		return writer.MMAP, nil
	case "DIRECT":
		return writer.DIRECT, nil
	case "BUFFERED":
		return writer.BUFFERED, nil
	default:
		return 0, fmt.Errorf("benchmark: unknown write_mode %q", c.WriteMode)
	}
}

func (c fileConfig) writerConfig() (writer.Config, error) {
	mode, err := c.writeMode()
	if err != nil {
		return writer.Config{}, err
	}
	if c.QueueCapacity < 2 || c.QueueCapacity&(c.QueueCapacity-1) != 0 {
		return writer.Config{}, fmt.Errorf("benchmark: queue_capacity must be a power of two >= 2, got %d", c.QueueCapacity)
	}
	return writer.Config{
		Path:            c.OutputPath,
		Mode:            mode,
		QueueCapacity:   uint64(c.QueueCapacity),
		BufferSize:      c.BufferSize,
		Alignment:       c.Alignment,
		InitialFileSize: c.InitialFileSize,
		PinCore:         c.PinCore,
	}, nil
}
