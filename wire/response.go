package wire

import (
	"strconv"
	"strings"
	"time"
)

// Response is a parsed reply status line.
// This is a plain container; the data lines of a multi-line reply are read
// separately with ReadBlock.
type Response struct {
	// Code is the 3-digit status code.
	Code StatusCode

	// Text is everything after the code and its separating space.
	Text string

	// Kind is the semantic class of Code, from the status table.
	Kind Kind
}

// FollowsBlock reports whether a multi-line data block follows this reply
// on the wire.
func (r Response) FollowsBlock() bool {
	_, multiline := KindOf(r.Code)
	return multiline
}

// IsSuccess returns true for 1xx and 2xx replies.
func (r Response) IsSuccess() bool {
	c := r.Code.Class()
	return c == 1 || c == 2
}

// IsContinue returns true for 3xx replies: the command is accepted so far and
// the server waits for the rest (e.g. 381 after AUTHINFO USER).
func (r Response) IsContinue() bool {
	return r.Code.Class() == 3
}

// IsFailure returns true for 4xx and 5xx replies.
func (r Response) IsFailure() bool {
	c := r.Code.Class()
	return c == 4 || c == 5
}

// Err returns a *StatusError for failure replies and nil otherwise.
func (r Response) Err() error {
	if r.IsFailure() {
		return &StatusError{Code: r.Code, Text: r.Text}
	}
	return nil
}

// CheckKnown returns ErrUnknownStatusCode when the code is not in the status
// table. ParseLine accepts such codes so that protocol extensions do not
// break parsing; callers that need a strict check use this.
func (r Response) CheckKnown() error {
	if _, ok := statusTable[r.Code]; !ok {
		return ErrUnknownStatusCode
	}
	return nil
}

// Expect returns nil if the reply code is one of codes, otherwise a
// *StatusError describing the unexpected reply.
func (r Response) Expect(codes ...StatusCode) error {
	for _, c := range codes {
		if r.Code == c {
			return nil
		}
	}
	return &StatusError{Code: r.Code, Text: r.Text}
}

func (r Response) String() string {
	if r.Text == "" {
		return r.Code.String()
	}
	return r.Code.String() + " " + r.Text
}

// ParseLine parses one reply status line.
// Format: <3 digits>[[ ]<text>]
//
// The line terminator must already be stripped; a single trailing CR left by
// an LF-only reader is ignored. Codes that are numeric but unknown are not an
// error: the response has Kind KindUnknown.
//
// The text is whatever follows the code, minus one separating space if
// present. Returns *StatusLineError (ErrMalformedStatusLine) when the line is
// shorter than 3 bytes or the code is not 3 ASCII digits.
//
// ParseLine is a pure function.
func ParseLine(line string) (Response, error) {
	line = strings.TrimSuffix(line, "\r")

	if len(line) < 3 {
		return Response{}, &StatusLineError{Line: line, Reason: "shorter than a status code"}
	}

	var code StatusCode
	for i := 0; i < 3; i++ {
		b := line[i]
		if b < '0' || b > '9' {
			return Response{}, &StatusLineError{Line: line, Reason: "status code is not numeric"}
		}
		code = code*10 + StatusCode(b-'0')
	}

	text := line[3:]
	if len(text) > 0 && text[0] == ' ' {
		text = text[1:]
	}

	kind, _ := KindOf(code)
	return Response{Code: code, Text: text, Kind: kind}, nil
}

// ReadResponse pulls the next line from src and parses it.
//
// End of input is returned as io.EOF unchanged, so a session loop can stop
// cleanly; other read failures are returned as *ConnectionError.
func ReadResponse(src LineSource) (Response, error) {
	line, err := src.ReadLine()
	if err != nil {
		return Response{}, sourceError(err)
	}
	return ParseLine(line)
}

// GroupStatus is the payload of a 211 reply to GROUP.
type GroupStatus struct {
	Count int64 // estimated number of articles
	Low   int64
	High  int64
	Name  string
}

// ParseGroupStatus decodes the text of a 211 reply: <count> <low> <high> <group>.
func ParseGroupStatus(r Response) (GroupStatus, error) {
	if r.Code != StatusGroupSelected {
		return GroupStatus{}, &StatusError{Code: r.Code, Text: r.Text}
	}

	fields := strings.Fields(r.Text)
	if len(fields) < 4 {
		return GroupStatus{}, &ParseError{Message: "group reply needs 4 fields, got " + strconv.Itoa(len(fields))}
	}

	var gs GroupStatus
	var err error
	if gs.Count, err = parseArticleNumber(fields[0]); err != nil {
		return GroupStatus{}, &ParseError{Message: "invalid article count", Err: err}
	}
	if gs.Low, err = parseArticleNumber(fields[1]); err != nil {
		return GroupStatus{}, &ParseError{Message: "invalid low water mark", Err: err}
	}
	if gs.High, err = parseArticleNumber(fields[2]); err != nil {
		return GroupStatus{}, &ParseError{Message: "invalid high water mark", Err: err}
	}
	gs.Name = fields[3]

	return gs, nil
}

const dateLayout = "20060102150405"

// ParseDate decodes the text of a 111 reply to DATE: yyyymmddhhmmss, UTC.
func ParseDate(r Response) (time.Time, error) {
	if r.Code != StatusDate {
		return time.Time{}, &StatusError{Code: r.Code, Text: r.Text}
	}

	field, _, _ := strings.Cut(r.Text, Space)
	t, err := time.ParseInLocation(dateLayout, field, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Message: "invalid date", Err: err}
	}
	return t, nil
}
