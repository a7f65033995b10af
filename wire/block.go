package wire

import (
	"errors"
	"io"
	"strings"
)

// BlockReader reads the data lines of one multi-line block from a
// LineSource, un-escaping dot-stuffed lines.
//
// It pulls exactly one line from the source per call to Next and never reads
// past the terminator, so the source is positioned on the next reply once
// the block is done.
type BlockReader struct {
	src   LineSource
	lines int    // data lines consumed so far
	raw   string // last data line as received
	done  bool
	err   error // sticky source error
}

// NewBlockReader returns a BlockReader positioned on the first data line of
// a block, i.e. right after a status line for which FollowsBlock is true.
func NewBlockReader(src LineSource) *BlockReader {
	return &BlockReader{src: src}
}

// Next returns the next data line with dot-stuffing removed.
//
// Returns:
//   - io.EOF once the "." terminator has been consumed
//   - *DataLineError for a line starting with a single "." followed by text;
//     the line is consumed and reading may continue
//   - *IncompleteBlockError if the source ends before the terminator
//   - *ConnectionError for any other source failure
func (b *BlockReader) Next() (string, error) {
	if b.done {
		return "", io.EOF
	}
	if b.err != nil {
		return "", b.err
	}

	line, err := b.src.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			b.err = &IncompleteBlockError{Lines: b.lines}
		} else {
			b.err = sourceError(err)
		}
		return "", b.err
	}

	line = strings.TrimSuffix(line, "\r")
	if line == Terminator {
		b.done = true
		return "", io.EOF
	}

	b.lines++
	b.raw = line

	if strings.HasPrefix(line, Terminator) {
		if !strings.HasPrefix(line, "..") {
			return "", &DataLineError{
				Index: b.lines,
				Line:  line,
				Err:   &ParseError{Message: "leading dot not escaped"},
			}
		}
		line = line[1:]
	}

	return line, nil
}

// Lines returns the number of data lines consumed so far, terminator excluded.
func (b *BlockReader) Lines() int {
	return b.lines
}

// Done reports whether the terminator has been consumed.
func (b *BlockReader) Done() bool {
	return b.done
}

// Drain consumes the remaining lines of the block, terminator included, and
// returns how many data lines were discarded. Malformed lines are skipped.
func (b *BlockReader) Drain() (int, error) {
	n := 0
	for {
		_, err := b.Next()
		if err == io.EOF {
			return n, nil
		}
		var dle *DataLineError
		if err != nil && !errors.As(err, &dle) {
			return n, err
		}
		n++
	}
}

// ReadBlock reads a whole multi-line block from src and decodes every data
// line with decode. Items are returned in the order received.
//
// If a line cannot be decoded the block parse stops with a *DataLineError
// naming that line; lines already read stay consumed. Use DrainBlock to skip
// what is left of the block. If src ends before the terminator the error is
// an *IncompleteBlockError and no items are returned.
func ReadBlock[T any](src LineSource, decode func(line string) (T, error)) ([]T, error) {
	br := NewBlockReader(src)

	var items []T
	for {
		line, err := br.Next()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return nil, err
		}

		item, err := decode(line)
		if err != nil {
			return nil, &DataLineError{Index: br.lines, Line: br.raw, Err: err}
		}
		items = append(items, item)
	}
}

// DrainBlock discards the rest of a block, terminator included. It is meant
// to resynchronize a session after ReadBlock failed with a *DataLineError.
func DrainBlock(src LineSource) (int, error) {
	return NewBlockReader(src).Drain()
}

// ReadNewsgroups reads a LIST / LIST ACTIVE block (reply 215).
func ReadNewsgroups(src LineSource) ([]NewsgroupInfo, error) {
	return ReadBlock(src, DecodeNewsgroupInfo)
}

// ReadCapabilities reads a CAPABILITIES block (reply 101).
func ReadCapabilities(src LineSource) ([]Capability, error) {
	return ReadBlock(src, DecodeCapability)
}

// ReadDescriptions reads a LIST NEWSGROUPS block (reply 215).
func ReadDescriptions(src LineSource) ([]NewsgroupDescription, error) {
	return ReadBlock(src, DecodeNewsgroupDescription)
}

// ReadText reads a free text block, such as the reply to HELP (100).
func ReadText(src LineSource) ([]string, error) {
	return ReadBlock(src, DecodeText)
}
