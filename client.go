package nntp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// Config holds configuration for NNTP sessions and the Client.
type Config struct {
	// Dialer is the net.Dialer used to open connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Logger receives debug lines for commands and warnings for protocol
	// noise that was skipped.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// ReaderMode sends MODE READER right after the greeting.
	ReaderMode bool

	// Username and Password are sent with AUTHINFO after the greeting when
	// Username is not empty.
	Username string
	Password string

	// SelectServer picks which server to use for a key.
	// Receives the key and current server list from Servers.List().
	// If nil, uses DefaultSelectServer (Jump Hash over xxh3).
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address, the first time it is dialed.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// for testing purposes only
	dialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Client opens NNTP sessions on a set of servers. Each session is owned by
// the caller: the Client does not pool or retry.
// A Client is safe for concurrent use.
type Client struct {
	servers      Servers
	selectServer SelectServerFunc
	config       Config

	mu       sync.RWMutex
	breakers map[string]CircuitBreaker

	stats *statsCollector
}

// NewClient creates a new NNTP client with the given servers and configuration.
// For a single server, use: NewClient(NewStaticServers("host:port"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	selectServer := config.SelectServer
	if selectServer == nil {
		selectServer = DefaultSelectServer
	}

	return &Client{
		servers:      servers,
		selectServer: selectServer,
		config:       config,
		breakers:     make(map[string]CircuitBreaker),
		stats:        newStatsCollector(),
	}, nil
}

// Dial opens a session on the server selected for key, usually the name of
// the newsgroup the session will work on.
func (c *Client) Dial(ctx context.Context, key string) (*Conn, error) {
	addr, err := c.selectServer(key, c.servers.List())
	if err != nil {
		c.stats.recordDialError()
		return nil, err
	}
	return c.DialAddr(ctx, addr)
}

// DialAddr opens a session on addr. If a circuit breaker is configured for
// the server, the attempt goes through it and fails fast while it is open.
func (c *Client) DialAddr(ctx context.Context, addr string) (*Conn, error) {
	addr = withDefaultPort(addr)

	cb := c.getOrCreateBreaker(addr)
	if cb == nil {
		return dial(ctx, addr, c.config, c.stats)
	}

	conn, err := cb.Execute(func() (*Conn, error) {
		return dial(ctx, addr, c.config, c.stats)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.stats.recordDialError()
			return nil, fmt.Errorf("nntp: %s: %w", addr, err)
		}
		return nil, err
	}
	return conn, nil
}

// Group opens a session on the server selected for the newsgroup and selects
// it. The caller owns the returned Conn.
func (c *Client) Group(ctx context.Context, name string) (*Conn, error) {
	conn, err := c.Dial(ctx, name)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Group(ctx, name); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// getOrCreateBreaker returns the breaker for addr, creating it lazily.
// Returns nil when no circuit breaker is configured.
func (c *Client) getOrCreateBreaker(addr string) CircuitBreaker {
	if c.config.NewCircuitBreaker == nil {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	cb, exists := c.breakers[addr]
	c.mu.RUnlock()
	if exists {
		return cb
	}

	// Slow path: write lock and create
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if cb, exists := c.breakers[addr]; exists {
		return cb
	}

	cb = c.config.NewCircuitBreaker(addr)
	c.breakers[addr] = cb
	return cb
}

// Stats returns a snapshot of the counters of the client and every session
// it opened.
func (c *Client) Stats() Stats {
	return c.stats.snapshot()
}

// ServerState is the circuit breaker state of one server.
type ServerState struct {
	Addr                string
	CircuitBreakerState gobreaker.State
}

// ServerStates returns the breaker state of every server dialed so far.
func (c *Client) ServerStates() []ServerState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	states := make([]ServerState, 0, len(c.breakers))
	for addr, cb := range c.breakers {
		states = append(states, ServerState{Addr: addr, CircuitBreakerState: cb.State()})
	}
	return states
}
