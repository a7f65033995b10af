// Package metrics exports the counters of an nntp.Client to Prometheus.
package metrics

import (
	"github.com/pior/nntp"
	"github.com/prometheus/client_golang/prometheus"
)

// Source is implemented by *nntp.Client.
type Source interface {
	Stats() nntp.Stats
	ServerStates() []nntp.ServerState
}

// Collector is a prometheus.Collector reading a Source at scrape time.
type Collector struct {
	source Source

	dials        *prometheus.Desc
	dialErrors   *prometheus.Desc
	commands     *prometheus.Desc
	blocks       *prometheus.Desc
	drainedLines *prometheus.Desc
	skippedLines *prometheus.Desc
	errors       *prometheus.Desc
	circuitState *prometheus.Desc
}

// NewCollector returns a Collector for source. Register it with
// prometheus.MustRegister or a custom registry.
func NewCollector(source Source) *Collector {
	return &Collector{
		source:       source,
		dials:        newDesc("dials_total", "Connections established, greeting included"),
		dialErrors:   newDesc("dial_errors_total", "Failed connection attempts, breaker rejections included"),
		commands:     newDesc("commands_total", "Commands written to the wire"),
		blocks:       newDesc("blocks_total", "Multi-line blocks decoded successfully"),
		drainedLines: newDesc("drained_lines_total", "Block lines discarded after a decode failure"),
		skippedLines: newDesc("skipped_lines_total", "Malformed status lines skipped"),
		errors:       newDesc("errors_total", "Failed operations"),
		circuitState: prometheus.NewDesc(
			"nntp_circuit_breaker_state",
			"Circuit breaker state (0=closed, 1=half-open, 2=open)",
			[]string{"server"}, nil,
		),
	}
}

func newDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc("nntp_"+name, help, nil, nil)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.dials
	ch <- c.dialErrors
	ch <- c.commands
	ch <- c.blocks
	ch <- c.drainedLines
	ch <- c.skippedLines
	ch <- c.errors
	ch <- c.circuitState
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	counter := func(desc *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
	}
	counter(c.dials, stats.Dials)
	counter(c.dialErrors, stats.DialErrors)
	counter(c.commands, stats.Commands)
	counter(c.blocks, stats.Blocks)
	counter(c.drainedLines, stats.DrainedLines)
	counter(c.skippedLines, stats.SkippedLines)
	counter(c.errors, stats.Errors)

	for _, s := range c.source.ServerStates() {
		ch <- prometheus.MustNewConstMetric(c.circuitState, prometheus.GaugeValue, float64(s.CircuitBreakerState), s.Addr)
	}
}
