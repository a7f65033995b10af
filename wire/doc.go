// Package wire provides a low-level wire protocol implementation for the
// client side of NNTP (RFC 3977, with AUTHINFO USER/PASS from RFC 4643).
//
// This package serves as a foundation for NNTP sessions and tools. It
// serializes commands and parses replies, without owning a connection: the
// caller writes the encoded bytes and supplies reply lines.
//
// # Core Types
//
//   - Command: closed set of request values (Capabilities, List, Quit, Group,
//     AuthInfo, ModeReader, Date, Help)
//   - Response: a parsed status line (code, text, kind)
//   - LineSource: anything that yields reply lines, *textproto.Reader included
//   - NewsgroupInfo, Capability, NewsgroupDescription: block items
//
// # Serialization and Parsing
//
// WriteCommand serializes commands to wire format:
//
//	err := wire.WriteCommand(conn, wire.Group{Name: "comp.lang.go"})
//
// ReadResponse parses a status line, ReadBlock the multi-line block that
// follows it:
//
//	src := textproto.NewReader(bufio.NewReader(conn))
//	resp, err := wire.ReadResponse(src)
//	if err != nil {
//	    return err
//	}
//	if resp.Kind == wire.KindInformationFollows {
//	    groups, err := wire.ReadNewsgroups(src)
//	    ...
//	}
//
// ReadBlock is generic over the item type, any func(string) (T, error) can
// decode the data lines:
//
//	ids, err := wire.ReadBlock(src, func(line string) (int64, error) {
//	    return strconv.ParseInt(line, 10, 64)
//	})
//
// # Multi-line Blocks
//
// A block is zero or more data lines followed by a line holding a single ".".
// Data lines starting with "." are sent with an extra leading dot, which
// BlockReader removes. A line starting with a single dot followed by text is
// rejected. Lines are pulled one at a time, nothing is read ahead of the
// terminator.
//
// # Error Handling
//
// Every error type tells whether the connection survives it:
//
//   - StatusLineError: malformed status line, log and continue
//   - DataLineError: one block item failed to decode, drain the block and continue
//   - IncompleteBlockError: input ended inside a block, CLOSE connection
//   - ConnectionError: I/O failure, CLOSE connection
//   - StatusError: 4xx/5xx reply, connection usually still valid
//
// Use ShouldCloseConnection to pick the strategy:
//
//	if err != nil {
//	    if wire.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//
// Unknown but numeric status codes are not errors: they parse with Kind
// KindUnknown so that servers implementing extensions remain usable.
//
// # Design Principles
//
// 1. Zero business logic - just serialization and parsing
// 2. No connection management - caller controls connections
// 3. No validation when encoding - ValidateCommand is opt-in
// 4. Pure functions - every call is independent, no shared state
//
// # Thread Safety
//
// Encoding and parsing functions are safe for concurrent use. A LineSource
// and the BlockReader on top of it belong to one session.
package wire
