// Command benchmark drives the decode -> ring queue -> writer pipeline
// against synthetic ITCH frames and reports latency percentiles, playing
// the role of the transport/CLI collaborators the core module does not own.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/PrathamDesai07/fastmarket/internal/itch"
	"github.com/PrathamDesai07/fastmarket/internal/obs"
	"github.com/PrathamDesai07/fastmarket/internal/tsc"
	"github.com/PrathamDesai07/fastmarket/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to a benchmark TOML config (optional, defaults apply)")
	flag.Parse()

	logger := obs.Init("benchmark")

	cfg := defaultFileConfig()
	if *configPath != "" {
		loaded, err := loadBenchmarkConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}

	freq, err := tsc.Calibrate(context.Background(), time.Second)
	if err != nil {
		logger.Fatal().Err(err).Msg("tsc calibration failed")
	}
	logger.Info().Uint64("tsc_hz", freq).Msg("calibrated time source")

	wCfg, err := cfg.writerConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid writer config")
	}

	w := writer.New(wCfg)
	if err := w.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start writer")
	}

	if wCfg.PinCore >= 0 {
		if err := tsc.PinCurrentThread(wCfg.PinCore); err != nil {
			logger.Warn().Err(err).Msg("cpu pinning unavailable")
		}
	}

	gen := newGenerator(1)
	st := &stats{}

	logger.Info().Int("messages", cfg.MessageCount).Str("mode", cfg.WriteMode).Msg("starting run")

	// tsc.Now returns raw ticks; the calibrated frequency converts them to
	// the nanoseconds the summary reports.
	toNanos := func(ticks uint64) uint64 {
		return uint64(float64(ticks) * 1e9 / float64(freq))
	}

	var decodeMisses int
	st.startNanos = toNanos(tsc.Now())
	for i := 0; i < cfg.MessageCount; i++ {
		frame := gen.next()

		start := tsc.Now()
		rec, ok := itch.Decode(frame)
		end := tsc.Now()
		if !ok {
			decodeMisses++
			continue
		}
		st.addLatency(toNanos(end-start), len(frame))

		for !w.Log(rec) {
			// back-pressure: spin-yield, this harness is latency-insensitive
			runtime.Gosched()
		}
	}
	st.endNanos = toNanos(tsc.Now())

	if err := w.Stop(); err != nil {
		logger.Error().Err(err).Msg("writer reported an error on stop")
	}

	printSummary(os.Stdout, st.summarize(), decodeMisses, w.TotalWritten())
}

func printSummary(w *os.File, s summary, decodeMisses int, totalWritten int64) {
	fmt.Fprintln(w, "=== Performance Results ===")
	fmt.Fprintf(w, "Decoded messages: %d\n", s.count)
	fmt.Fprintf(w, "Decode misses: %d\n", decodeMisses)
	fmt.Fprintf(w, "Bytes written: %d\n", totalWritten)
	fmt.Fprintf(w, "Elapsed: %.3f s\n", s.elapsedSec)
	fmt.Fprintf(w, "Throughput: %.0f msgs/sec\n", s.throughput)
	fmt.Fprintf(w, "Bandwidth: %.2f MB/s\n", s.bandwidthMB)
	fmt.Fprintln(w, "Latency percentiles (ns):")
	fmt.Fprintf(w, "  min:    %d\n", s.min)
	fmt.Fprintf(w, "  p50:    %d\n", s.p50)
	fmt.Fprintf(w, "  p90:    %d\n", s.p90)
	fmt.Fprintf(w, "  p99:    %d\n", s.p99)
	fmt.Fprintf(w, "  p99.9:  %d\n", s.p999)
	fmt.Fprintf(w, "  max:    %d\n", s.max)
	fmt.Fprintf(w, "  avg:    %.1f\n", s.avg)
}
