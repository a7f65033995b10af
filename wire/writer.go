package wire

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// Buffer pool for building request lines
var bufferPool = sync.Pool{
	New: func() any {
		// Typical request is well under 64 bytes
		b := make([]byte, 0, 128)
		return &b
	},
}

// Encode returns the wire line for cmd, CRLF included.
//
// Fields are embedded verbatim. Keeping CR and LF out of group names and
// credentials is the caller's responsibility: a field containing CRLF would
// put a second line on the wire. See ValidateCommand.
func Encode(cmd Command) []byte {
	return AppendCommand(nil, cmd)
}

// AppendCommand appends the wire line for cmd to dst and returns the extended
// buffer.
//
// It panics if cmd is nil or a type outside this package, which cannot happen
// for values built from the exported command types.
func AppendCommand(dst []byte, cmd Command) []byte {
	dst = append(dst, cmd.Keyword()...)

	switch c := cmd.(type) {
	case Capabilities, Quit, Date, Help:
		// keyword only
	case List:
		if c.Variant != "" {
			dst = append(dst, Space...)
			dst = append(dst, c.Variant...)
			if c.Wildmat != "" {
				dst = append(dst, Space...)
				dst = append(dst, c.Wildmat...)
			}
		}
	case Group:
		dst = append(dst, Space...)
		dst = append(dst, c.Name...)
	case AuthInfo:
		if c.Part != nil {
			dst = append(dst, Space...)
			dst = append(dst, c.Part.subKeyword()...)
			dst = append(dst, Space...)
			dst = append(dst, c.Part.value()...)
		}
	case ModeReader:
		dst = append(dst, Space...)
		dst = append(dst, ModeReaderArg...)
	default:
		panic("nntp: unknown command type")
	}

	return append(dst, CRLF...)
}

// WriteCommand serializes cmd and writes it to w.
//
// When w is a *bufio.Writer the line is written into its buffer and flushed,
// otherwise a pooled buffer is used and written with a single Write call.
func WriteCommand(w io.Writer, cmd Command) error {
	if bw, ok := w.(*bufio.Writer); ok {
		if _, err := bw.Write(AppendCommand(bw.AvailableBuffer(), cmd)); err != nil {
			return err
		}
		return bw.Flush()
	}

	bp := bufferPool.Get().(*[]byte)
	defer func() {
		*bp = (*bp)[:0]
		bufferPool.Put(bp)
	}()

	*bp = AppendCommand(*bp, cmd)
	_, err := w.Write(*bp)
	return err
}

// ValidateCommand checks that no field of cmd would break the one line per
// command framing: fields must not contain CR or LF, and single-token fields
// (group name, LIST keyword and wildmat) must not contain spaces or tabs.
//
// Encoding never validates; this is for callers that take fields from
// untrusted input.
func ValidateCommand(cmd Command) error {
	switch c := cmd.(type) {
	case nil:
		return &InvalidArgumentError{Field: "command", Message: "command is nil"}
	case Group:
		return validateToken("group name", c.Name, true)
	case List:
		if err := validateToken("list keyword", c.Variant, false); err != nil {
			return err
		}
		if c.Wildmat != "" && c.Variant == "" {
			return &InvalidArgumentError{Field: "wildmat", Message: "wildmat requires a list keyword"}
		}
		return validateToken("wildmat", c.Wildmat, false)
	case AuthInfo:
		if c.Part == nil {
			return &InvalidArgumentError{Field: "authinfo", Message: "missing user or password"}
		}
		if strings.ContainsAny(c.Part.value(), "\r\n") {
			return &InvalidArgumentError{Field: "authinfo", Message: "contains a line break"}
		}
	}
	return nil
}

func validateToken(field, value string, required bool) error {
	if value == "" {
		if required {
			return &InvalidArgumentError{Field: field, Message: "is empty"}
		}
		return nil
	}
	if strings.ContainsAny(value, "\r\n") {
		return &InvalidArgumentError{Field: field, Message: "contains a line break"}
	}
	if strings.ContainsAny(value, " \t") {
		return &InvalidArgumentError{Field: field, Message: "contains whitespace"}
	}
	return nil
}
