package nntp

import "sync/atomic"

// Stats contains counters about NNTP sessions.
// All fields are safe for concurrent access.
//
// Struct is optimized to fit within a single cache line (64 bytes).
//
// Package metrics exports every field as a Prometheus counter.
type Stats struct {
	Dials        uint64 // Connections established, greeting included
	DialErrors   uint64 // Failed connection attempts, breaker rejections included
	Commands     uint64 // Commands written to the wire
	Blocks       uint64 // Multi-line blocks decoded successfully
	DrainedLines uint64 // Block lines discarded after a decode failure
	SkippedLines uint64 // Malformed status lines skipped by Pipeline
	Errors       uint64 // Failed operations
	_            uint64 // Padding to align to 64 bytes
}

// statsCollector provides internal methods for updating stats.
// Shared by a Client and every Conn it dials.
type statsCollector struct {
	stats *Stats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		stats: &Stats{},
	}
}

func (c *statsCollector) recordDial() {
	atomic.AddUint64(&c.stats.Dials, 1)
}

func (c *statsCollector) recordDialError() {
	atomic.AddUint64(&c.stats.DialErrors, 1)
}

func (c *statsCollector) recordCommands(n int) {
	atomic.AddUint64(&c.stats.Commands, uint64(n))
}

func (c *statsCollector) recordBlock() {
	atomic.AddUint64(&c.stats.Blocks, 1)
}

func (c *statsCollector) recordDrained(lines int) {
	atomic.AddUint64(&c.stats.DrainedLines, uint64(lines))
}

func (c *statsCollector) recordSkipped() {
	atomic.AddUint64(&c.stats.SkippedLines, 1)
}

func (c *statsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *statsCollector) snapshot() Stats {
	return Stats{
		Dials:        atomic.LoadUint64(&c.stats.Dials),
		DialErrors:   atomic.LoadUint64(&c.stats.DialErrors),
		Commands:     atomic.LoadUint64(&c.stats.Commands),
		Blocks:       atomic.LoadUint64(&c.stats.Blocks),
		DrainedLines: atomic.LoadUint64(&c.stats.DrainedLines),
		SkippedLines: atomic.LoadUint64(&c.stats.SkippedLines),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}
