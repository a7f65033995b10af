package wire

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for errors.Is checks. The structured error types below
// unwrap to them.
var (
	// ErrMalformedStatusLine: reply line too short or its code is not numeric.
	ErrMalformedStatusLine = errors.New("nntp: malformed status line")

	// ErrUnknownStatusCode: numeric code that is not in the status table.
	// ParseLine does not return it; see Response.CheckKnown.
	ErrUnknownStatusCode = errors.New("nntp: unknown status code")

	// ErrMalformedDataLine: a line inside a multi-line block failed to decode.
	ErrMalformedDataLine = errors.New("nntp: malformed data line")

	// ErrIncompleteBlock: the line source ended before the block terminator.
	ErrIncompleteBlock = errors.New("nntp: incomplete block")
)

// StatusLineError is returned by ParseLine when a reply line does not start
// with a 3-digit status code.
//
// Connection handling: the session is still usable, log and read the next line
type StatusLineError struct {
	Line   string
	Reason string
}

func (e *StatusLineError) Error() string {
	return fmt.Sprintf("nntp: malformed status line %q: %s", e.Line, e.Reason)
}

func (e *StatusLineError) Unwrap() error {
	return ErrMalformedStatusLine
}

func (e *StatusLineError) ShouldCloseConnection() bool {
	return false
}

// ParseError is returned by item decoders (DecodeNewsgroupInfo,
// DecodeCapability, ...) when a single data line cannot be decoded.
// Inside a block it is wrapped in a DataLineError.
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DataLineError reports the line of a multi-line block that could not be
// decoded. Lines already consumed stay consumed: the block cannot be re-read.
//
// Connection handling: only the current block is lost. Drain the rest of the
// block with DrainBlock and keep using the connection.
type DataLineError struct {
	Index int    // 1-based position of the line in the block
	Line  string // raw line as received, before dot un-escaping
	Err   error
}

func (e *DataLineError) Error() string {
	return "nntp: malformed data line " + strconv.Itoa(e.Index) + " " + strconv.Quote(e.Line) + ": " + e.Err.Error()
}

func (e *DataLineError) Unwrap() []error {
	return []error{ErrMalformedDataLine, e.Err}
}

func (e *DataLineError) ShouldCloseConnection() bool {
	return false
}

// IncompleteBlockError is returned when the line source reports end of input
// before the "." terminator: the server hung up mid-block.
//
// Connection handling: the connection is gone, CLOSE it
type IncompleteBlockError struct {
	Lines int // data lines received before the end of input
}

func (e *IncompleteBlockError) Error() string {
	return "nntp: incomplete block: end of input after " + strconv.Itoa(e.Lines) + " lines"
}

func (e *IncompleteBlockError) Unwrap() error {
	return ErrIncompleteBlock
}

func (e *IncompleteBlockError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps I/O errors from the line source or the writer.
//
// Connection handling: connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (read, write, dial)
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("nntp: connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// StatusError is a reply whose code does not mean success for the command
// that was sent, typically a 4xx or 5xx.
//
// Connection handling: the session stays valid, except for 400 (service
// discontinued) and 205 (closing) after which the server hangs up.
type StatusError struct {
	Code StatusCode
	Text string
}

func (e *StatusError) Error() string {
	if e.Text == "" {
		return "nntp: server replied " + e.Code.String()
	}
	return "nntp: server replied " + e.Code.String() + " " + e.Text
}

func (e *StatusError) ShouldCloseConnection() bool {
	return e.Code == StatusServiceUnavailable || e.Code == StatusClosing
}

// InvalidArgumentError is returned by ValidateCommand for fields that would
// break the wire framing. Nothing was sent.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return "nntp: invalid " + e.Field + ": " + e.Message
}

func (e *InvalidArgumentError) ShouldCloseConnection() bool {
	return false
}

// ErrorWithConnectionState is implemented by the error types of this package
// that know whether the connection survives them.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection in a state
// where it must be closed.
//
// Returns false for nil, StatusLineError, DataLineError, InvalidArgumentError
// and most StatusErrors. Returns true for IncompleteBlockError,
// ConnectionError and any error of unknown type.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}
