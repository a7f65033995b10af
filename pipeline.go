package nntp

import (
	"context"
	"errors"

	"github.com/pior/nntp/internal/coarsetime"
	"github.com/pior/nntp/wire"
)

// Reply is the outcome of one pipelined command.
type Reply struct {
	Command  wire.Command
	Response wire.Response
	Lines    []string // block lines, dot-unescaped; nil when no block followed
	Err      error    // failure reply or malformed block
}

// Capabilities decodes the block of a 101 reply.
func (r Reply) Capabilities() ([]wire.Capability, error) {
	return decodeLines(r, wire.DecodeCapability)
}

// Newsgroups decodes the block of a 215 reply to LIST or LIST ACTIVE.
func (r Reply) Newsgroups() ([]wire.NewsgroupInfo, error) {
	return decodeLines(r, wire.DecodeNewsgroupInfo)
}

// Descriptions decodes the block of a 215 reply to LIST NEWSGROUPS.
func (r Reply) Descriptions() ([]wire.NewsgroupDescription, error) {
	return decodeLines(r, wire.DecodeNewsgroupDescription)
}

func decodeLines[T any](r Reply, decode func(string) (T, error)) ([]T, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	items := make([]T, 0, len(r.Lines))
	for i, line := range r.Lines {
		item, err := decode(line)
		if err != nil {
			return nil, &wire.DataLineError{Index: i + 1, Line: line, Err: err}
		}
		items = append(items, item)
	}
	return items, nil
}

// Pipeline writes all commands in one batch, then reads one reply per
// command, in order. Malformed status lines are logged and skipped.
//
// A failure reply or a malformed block only sets that Reply's Err. The
// returned error is set when the session broke; the replies read until then
// are returned with it. A 205 reply closes the connection once every reply
// has been read.
func (c *Conn) Pipeline(ctx context.Context, cmds ...wire.Command) ([]Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	for _, cmd := range cmds {
		if err := wire.ValidateCommand(cmd); err != nil {
			return nil, err
		}
	}

	// Check if context is already cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	c.setDeadline(ctx)

	buf := make([]byte, 0, 32*len(cmds))
	for _, cmd := range cmds {
		buf = wire.AppendCommand(buf, cmd)
	}

	c.logger.Debug("nntp: sending pipeline", "addr", c.addr, "commands", len(cmds))
	if _, err := c.writer.Write(buf); err != nil {
		return nil, c.fail(&wire.ConnectionError{Op: "write", Err: err})
	}
	if err := c.writer.Flush(); err != nil {
		return nil, c.fail(&wire.ConnectionError{Op: "write", Err: err})
	}
	c.stats.recordCommands(len(cmds))

	replies := make([]Reply, 0, len(cmds))
	closing := false

	for _, cmd := range cmds {
		resp, err := c.readPipelinedResponse()
		if err != nil {
			return replies, c.fail(err)
		}

		reply := Reply{Command: cmd, Response: resp, Err: resp.Err()}
		if reply.Err != nil {
			c.stats.recordError()
		}

		if resp.FollowsBlock() {
			if err := c.consumeBlock(into(&reply.Lines, wire.ReadText)); err != nil {
				reply.Err = err
				if wire.ShouldCloseConnection(err) {
					return append(replies, reply), err
				}
			}
		}

		if resp.Code == wire.StatusClosing {
			closing = true
		}
		replies = append(replies, reply)
	}

	c.lastUsed = coarsetime.Now()
	if closing {
		c.closeLocked()
	}
	return replies, nil
}

// readPipelinedResponse reads the next status line, skipping malformed ones.
func (c *Conn) readPipelinedResponse() (wire.Response, error) {
	for {
		resp, err := c.readResponse()

		var sle *wire.StatusLineError
		if errors.As(err, &sle) {
			c.stats.recordSkipped()
			c.logger.Warn("nntp: skipping malformed status line", "addr", c.addr, "line", sle.Line, "reason", sle.Reason)
			continue
		}

		return resp, err
	}
}
