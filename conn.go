package nntp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"sync"
	"time"

	"github.com/pior/nntp/internal/coarsetime"
	"github.com/pior/nntp/wire"
)

var (
	ErrConnectionClosed = errors.New("nntp: connection closed")
)

// Conn is a single NNTP session over a net.Conn.
// It is safe for concurrent use: commands are serialized.
type Conn struct {
	addr     string
	conn     net.Conn
	reader   *textproto.Reader
	writer   *bufio.Writer
	logger   *slog.Logger
	stats    *statsCollector
	greeting wire.Response

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// Dial connects to addr, reads the server greeting and runs the session
// setup described by config (MODE READER, then AUTHINFO).
func Dial(ctx context.Context, addr string, config Config) (*Conn, error) {
	return dial(ctx, addr, config, newStatsCollector())
}

func dial(ctx context.Context, addr string, config Config, stats *statsCollector) (*Conn, error) {
	dialContext := config.dialContext
	if dialContext == nil {
		dialer := config.Dialer
		if dialer == nil {
			dialer = &net.Dialer{}
		}
		dialContext = dialer.DialContext
	}

	netConn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		stats.recordDialError()
		return nil, &wire.ConnectionError{Op: "dial", Err: err}
	}

	c, err := newConn(ctx, addr, netConn, config, stats)
	if err != nil {
		stats.recordDialError()
		return nil, err
	}

	stats.recordDial()
	return c, nil
}

// NewConn starts a session over an established connection. The greeting is
// read before NewConn returns. On error the connection is closed.
func NewConn(ctx context.Context, netConn net.Conn, config Config) (*Conn, error) {
	return newConn(ctx, netConn.RemoteAddr().String(), netConn, config, newStatsCollector())
}

func newConn(ctx context.Context, addr string, netConn net.Conn, config Config, stats *statsCollector) (*Conn, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Conn{
		addr:     addr,
		conn:     netConn,
		reader:   textproto.NewReader(bufio.NewReader(netConn)),
		writer:   bufio.NewWriter(netConn),
		logger:   logger,
		stats:    stats,
		lastUsed: coarsetime.Now(),
	}

	if err := c.setup(ctx, config); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) setup(ctx context.Context, config Config) error {
	if err := c.readGreeting(ctx); err != nil {
		return err
	}

	if config.ReaderMode {
		if _, err := c.ModeReader(ctx); err != nil {
			return err
		}
	}

	if config.Username != "" {
		if err := c.Authenticate(ctx, config.Username, config.Password); err != nil {
			return err
		}
	}

	return nil
}

func (c *Conn) readGreeting(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setDeadline(ctx)

	resp, err := c.readResponse()
	if err != nil {
		return c.fail(err)
	}
	if err := resp.Expect(wire.StatusPostingAllowed, wire.StatusPostingProhibited); err != nil {
		return c.fail(err)
	}

	c.greeting = resp
	c.logger.Debug("nntp: connected", "addr", c.addr, "greeting", resp.String())
	return nil
}

// Greeting returns the reply the server sent when the session opened.
func (c *Conn) Greeting() wire.Response {
	return c.greeting
}

// PostingAllowed reports whether the greeting announced that posting is permitted.
func (c *Conn) PostingAllowed() bool {
	return c.greeting.Code == wire.StatusPostingAllowed
}

// Do sends a single command and returns its reply. A block following the
// reply is read and discarded; use the typed methods to decode blocks.
// Failure replies are returned as a *wire.StatusError along with the reply.
func (c *Conn) Do(ctx context.Context, cmd wire.Command) (wire.Response, error) {
	return c.exchange(ctx, cmd, nil, wire.Response.Err)
}

// Capabilities sends CAPABILITIES and decodes the 101 block.
func (c *Conn) Capabilities(ctx context.Context) ([]wire.Capability, error) {
	var caps []wire.Capability
	_, err := c.roundTrip(ctx, wire.Capabilities{}, into(&caps, wire.ReadCapabilities), wire.StatusCapabilitiesFollow)
	if err != nil {
		return nil, err
	}
	return caps, nil
}

// List sends a bare LIST and decodes the active newsgroups.
func (c *Conn) List(ctx context.Context) ([]wire.NewsgroupInfo, error) {
	return c.ListActive(ctx, "")
}

// ListActive sends LIST ACTIVE, restricted to groups matching wildmat when
// it is not empty.
func (c *Conn) ListActive(ctx context.Context, wildmat string) ([]wire.NewsgroupInfo, error) {
	cmd := wire.List{}
	if wildmat != "" {
		cmd = wire.List{Variant: wire.ListActive, Wildmat: wildmat}
	}

	var groups []wire.NewsgroupInfo
	_, err := c.roundTrip(ctx, cmd, into(&groups, wire.ReadNewsgroups), wire.StatusInformationFollows)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListNewsgroups sends LIST NEWSGROUPS and decodes the group descriptions.
func (c *Conn) ListNewsgroups(ctx context.Context, wildmat string) ([]wire.NewsgroupDescription, error) {
	var descs []wire.NewsgroupDescription
	cmd := wire.List{Variant: wire.ListNewsgroups, Wildmat: wildmat}
	_, err := c.roundTrip(ctx, cmd, into(&descs, wire.ReadDescriptions), wire.StatusInformationFollows)
	if err != nil {
		return nil, err
	}
	return descs, nil
}

// Group selects a newsgroup. Returns a *wire.StatusError with code 411 when
// the group does not exist.
func (c *Conn) Group(ctx context.Context, name string) (wire.GroupStatus, error) {
	resp, err := c.roundTrip(ctx, wire.Group{Name: name}, nil, wire.StatusGroupSelected)
	if err != nil {
		return wire.GroupStatus{}, err
	}
	return wire.ParseGroupStatus(resp)
}

// Authenticate runs the AUTHINFO USER/PASS exchange. The password is only
// sent when the server asks for it with 381.
func (c *Conn) Authenticate(ctx context.Context, username, password string) error {
	resp, err := c.roundTrip(ctx, wire.AuthInfo{Part: wire.AuthUser(username)}, nil,
		wire.StatusAuthAccepted, wire.StatusPasswordRequired)
	if err != nil {
		return err
	}
	if resp.Code == wire.StatusAuthAccepted {
		return nil
	}

	_, err = c.roundTrip(ctx, wire.AuthInfo{Part: wire.AuthPass(password)}, nil, wire.StatusAuthAccepted)
	return err
}

// ModeReader sends MODE READER and reports whether posting is allowed.
func (c *Conn) ModeReader(ctx context.Context) (bool, error) {
	resp, err := c.roundTrip(ctx, wire.ModeReader{}, nil, wire.StatusPostingAllowed, wire.StatusPostingProhibited)
	if err != nil {
		return false, err
	}
	return resp.Code == wire.StatusPostingAllowed, nil
}

// Date returns the server's clock, in UTC.
func (c *Conn) Date(ctx context.Context) (time.Time, error) {
	resp, err := c.roundTrip(ctx, wire.Date{}, nil, wire.StatusDate)
	if err != nil {
		return time.Time{}, err
	}
	return wire.ParseDate(resp)
}

// Help returns the server's help text, one entry per line.
func (c *Conn) Help(ctx context.Context) ([]string, error) {
	var lines []string
	_, err := c.roundTrip(ctx, wire.Help{}, into(&lines, wire.ReadText), wire.StatusHelpFollows)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Quit ends the session and closes the connection, whatever the reply.
func (c *Conn) Quit(ctx context.Context) error {
	_, err := c.roundTrip(ctx, wire.Quit{}, nil, wire.StatusClosing)
	if closeErr := c.Close(); err == nil {
		err = closeErr
	}
	return err
}

// roundTrip sends cmd and checks the reply code against expect. A block
// following an expected reply is decoded by readBlock.
func (c *Conn) roundTrip(ctx context.Context, cmd wire.Command, readBlock func(wire.LineSource) error, expect ...wire.StatusCode) (wire.Response, error) {
	return c.exchange(ctx, cmd, readBlock, func(r wire.Response) error {
		return r.Expect(expect...)
	})
}

// exchange writes cmd and reads its reply. A block following a reply that
// check rejects, or that no readBlock was given for, is drained.
func (c *Conn) exchange(ctx context.Context, cmd wire.Command, readBlock func(wire.LineSource) error, check func(wire.Response) error) (wire.Response, error) {
	if err := wire.ValidateCommand(cmd); err != nil {
		return wire.Response{}, err
	}

	// Check if context is already cancelled
	if err := ctx.Err(); err != nil {
		return wire.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return wire.Response{}, ErrConnectionClosed
	}

	c.setDeadline(ctx)

	c.logger.Debug("nntp: sending command", "addr", c.addr, "command", cmd.Keyword())
	if err := wire.WriteCommand(c.writer, cmd); err != nil {
		return wire.Response{}, c.fail(&wire.ConnectionError{Op: "write", Err: err})
	}
	c.stats.recordCommands(1)

	resp, err := c.readResponse()
	if err != nil {
		return resp, c.fail(err)
	}
	c.lastUsed = coarsetime.Now()

	checkErr := check(resp)

	if resp.FollowsBlock() {
		if checkErr != nil || readBlock == nil {
			readBlock = c.discardBlock
		}
		if err := c.consumeBlock(readBlock); err != nil {
			return resp, err
		}
	}

	if resp.Code == wire.StatusClosing {
		// The server hangs up after 205
		c.closeLocked()
	}

	if checkErr != nil {
		return resp, c.fail(checkErr)
	}
	return resp, nil
}

// consumeBlock runs read over the connection. After a malformed data line the
// rest of the block is drained so the next reply can be read.
func (c *Conn) consumeBlock(read func(wire.LineSource) error) error {
	err := read(c.reader)
	if err == nil {
		c.stats.recordBlock()
		return nil
	}

	var dle *wire.DataLineError
	if errors.As(err, &dle) {
		n, drainErr := wire.DrainBlock(c.reader)
		c.stats.recordDrained(n)
		if drainErr != nil {
			return c.fail(drainErr)
		}
		c.logger.Warn("nntp: discarded block after malformed data line",
			"addr", c.addr, "index", dle.Index, "line", dle.Line, "drained", n, "error", dle.Err)
	}

	return c.fail(err)
}

func (c *Conn) discardBlock(src wire.LineSource) error {
	n, err := wire.DrainBlock(src)
	c.stats.recordDrained(n)
	return err
}

// readResponse reads one status line. End of input here means the server hung up.
func (c *Conn) readResponse() (wire.Response, error) {
	resp, err := wire.ReadResponse(c.reader)
	if errors.Is(err, io.EOF) {
		return resp, &wire.ConnectionError{Op: "read", Err: io.ErrUnexpectedEOF}
	}
	return resp, err
}

// setDeadline maps the context deadline onto the socket (must be called with lock held)
func (c *Conn) setDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		// Clear deadline if context doesn't have one
		c.conn.SetDeadline(time.Time{})
	}
}

// fail records err and closes the connection when err leaves it unusable
// (must be called with lock held)
func (c *Conn) fail(err error) error {
	c.stats.recordError()
	if wire.ShouldCloseConnection(err) {
		c.closeLocked()
	}
	return err
}

// LastUsed returns when the connection last received a reply
func (c *Conn) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// IsClosed returns whether the connection is closed
func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Addr returns the server address
func (c *Conn) Addr() string {
	return c.addr
}

// Stats returns a snapshot of the counters this connection updates. For a
// Conn created by a Client they are shared with the Client.
func (c *Conn) Stats() Stats {
	return c.stats.snapshot()
}

// Close closes the connection without sending QUIT
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Conn) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// into adapts a block reader to store its items in dst.
func into[T any](dst *[]T, read func(wire.LineSource) ([]T, error)) func(wire.LineSource) error {
	return func(src wire.LineSource) error {
		items, err := read(src)
		*dst = items
		return err
	}
}
