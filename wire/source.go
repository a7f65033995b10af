package wire

import (
	"errors"
	"io"
)

// LineSource supplies reply lines one at a time, without their line
// terminator. It returns io.EOF once no more lines will come.
//
// A line, once returned, is consumed: sources are not restartable.
// *textproto.Reader implements LineSource.
type LineSource interface {
	ReadLine() (string, error)
}

// StaticLines is an in-memory LineSource over a fixed sequence of lines,
// for tests and for replaying recorded sessions.
type StaticLines struct {
	lines []string
}

// Lines returns a LineSource yielding lines in order, then io.EOF.
func Lines(lines ...string) *StaticLines {
	return &StaticLines{lines: lines}
}

func (s *StaticLines) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// Remaining returns the number of lines not read yet.
func (s *StaticLines) Remaining() int {
	return len(s.lines)
}

// sourceError maps a LineSource failure outside of a block: end of input
// passes through, anything else becomes a ConnectionError.
func sourceError(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConnectionError{Op: "read", Err: err}
}
