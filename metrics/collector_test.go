package metrics

import (
	"strings"
	"testing"

	"github.com/pior/nntp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	stats  nntp.Stats
	states []nntp.ServerState
}

func (f fakeSource) Stats() nntp.Stats                { return f.stats }
func (f fakeSource) ServerStates() []nntp.ServerState { return f.states }

func TestCollector(t *testing.T) {
	source := fakeSource{
		stats: nntp.Stats{Dials: 3, DialErrors: 1, Commands: 9, Blocks: 2, SkippedLines: 1},
		states: []nntp.ServerState{
			{Addr: "news1.example.com:119", CircuitBreakerState: gobreaker.StateClosed},
			{Addr: "news2.example.com:119", CircuitBreakerState: gobreaker.StateOpen},
		},
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(source))

	expected := `
# HELP nntp_dials_total Connections established, greeting included
# TYPE nntp_dials_total counter
nntp_dials_total 3
# HELP nntp_commands_total Commands written to the wire
# TYPE nntp_commands_total counter
nntp_commands_total 9
# HELP nntp_circuit_breaker_state Circuit breaker state (0=closed, 1=half-open, 2=open)
# TYPE nntp_circuit_breaker_state gauge
nntp_circuit_breaker_state{server="news1.example.com:119"} 0
nntp_circuit_breaker_state{server="news2.example.com:119"} 2
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"nntp_dials_total", "nntp_commands_total", "nntp_circuit_breaker_state")
	require.NoError(t, err)

	require.Equal(t, 9, testutil.CollectAndCount(NewCollector(source)))
}

func TestCollector_Client(t *testing.T) {
	client, err := nntp.NewClient(nntp.NewStaticServers("news.example.com"), nntp.Config{})
	require.NoError(t, err)

	collector := NewCollector(client)
	require.Equal(t, 7, testutil.CollectAndCount(collector))
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(`
# HELP nntp_errors_total Failed operations
# TYPE nntp_errors_total counter
nntp_errors_total 0
`), "nntp_errors_total"))
}
