package main

import "sort"

// stats accumulates per-message decode latencies for percentile reporting,
// grounded on the original benchmark's sort-then-index percentile method.
type stats struct {
	latencies   []uint64
	totalBytes  uint64
	startNanos  uint64
	endNanos    uint64
}

func (s *stats) addLatency(ns uint64, frameBytes int) {
	s.latencies = append(s.latencies, ns)
	s.totalBytes += uint64(frameBytes)
}

type summary struct {
	count       int
	min, max    uint64
	p50, p90    uint64
	p99, p999   uint64
	avg         float64
	elapsedSec  float64
	throughput  float64
	bandwidthMB float64
}

func (s *stats) summarize() summary {
	if len(s.latencies) == 0 {
		return summary{}
	}

	sorted := make([]uint64, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	percentile := func(p float64) uint64 {
		idx := int(float64(len(sorted)) * p)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}

	var total uint64
	for _, v := range sorted {
		total += v
	}

	elapsedSec := float64(s.endNanos-s.startNanos) / 1e9
	out := summary{
		count:      len(sorted),
		min:        sorted[0],
		max:        sorted[len(sorted)-1],
		p50:        percentile(0.50),
		p90:        percentile(0.90),
		p99:        percentile(0.99),
		p999:       percentile(0.999),
		avg:        float64(total) / float64(len(sorted)),
		elapsedSec: elapsedSec,
	}
	if elapsedSec > 0 {
		out.throughput = float64(out.count) / elapsedSec
		out.bandwidthMB = (float64(s.totalBytes) / elapsedSec) / (1024 * 1024)
	}
	return out
}
