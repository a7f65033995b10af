package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// PostingStatus is the posting permission flag of a newsgroup in LIST ACTIVE.
type PostingStatus byte

const (
	PostingPermitted    = PostingStatus('y')
	PostingNotPermitted = PostingStatus('n')
	PostingModerated    = PostingStatus('m')
)

func (ps PostingStatus) String() string {
	return fmt.Sprintf("%c", ps)
}

// Valid reports whether ps is one of y, n or m.
func (ps PostingStatus) Valid() bool {
	switch ps {
	case PostingPermitted, PostingNotPermitted, PostingModerated:
		return true
	}
	return false
}

// NewsgroupInfo is one line of a LIST ACTIVE block:
//
//	<name> <high> <low> <status>
type NewsgroupInfo struct {
	Name    string
	High    int64
	Low     int64
	Posting PostingStatus
}

// DecodeNewsgroupInfo decodes one LIST ACTIVE line. The line must have exactly
// four whitespace separated fields, integer water marks and a posting flag
// of y, n or m.
func DecodeNewsgroupInfo(line string) (NewsgroupInfo, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return NewsgroupInfo{}, &ParseError{Message: "newsgroup line needs 4 fields, got " + strconv.Itoa(len(fields))}
	}

	high, err := parseArticleNumber(fields[1])
	if err != nil {
		return NewsgroupInfo{}, &ParseError{Message: "invalid high water mark", Err: err}
	}

	low, err := parseArticleNumber(fields[2])
	if err != nil {
		return NewsgroupInfo{}, &ParseError{Message: "invalid low water mark", Err: err}
	}

	if len(fields[3]) != 1 || !PostingStatus(fields[3][0]).Valid() {
		return NewsgroupInfo{}, &ParseError{Message: "invalid posting status " + strconv.Quote(fields[3])}
	}

	return NewsgroupInfo{
		Name:    fields[0],
		High:    high,
		Low:     low,
		Posting: PostingStatus(fields[3][0]),
	}, nil
}

// Capability is one line of a CAPABILITIES block: a label and its arguments.
type Capability struct {
	Label string
	Args  []string
}

// HasArg reports whether arg is one of the capability arguments.
// Labels and arguments are case-insensitive.
func (c Capability) HasArg(arg string) bool {
	for _, a := range c.Args {
		if strings.EqualFold(a, arg) {
			return true
		}
	}
	return false
}

func (c Capability) String() string {
	if len(c.Args) == 0 {
		return c.Label
	}
	return c.Label + Space + strings.Join(c.Args, Space)
}

// DecodeCapability decodes one CAPABILITIES line. Only an empty (or blank)
// line is an error.
func DecodeCapability(line string) (Capability, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Capability{}, &ParseError{Message: "empty capability line"}
	}

	c := Capability{Label: fields[0]}
	if len(fields) > 1 {
		c.Args = fields[1:]
	}
	return c, nil
}

// FindCapability returns the capability with the given label.
func FindCapability(caps []Capability, label string) (Capability, bool) {
	for _, c := range caps {
		if strings.EqualFold(c.Label, label) {
			return c, true
		}
	}
	return Capability{}, false
}

// NewsgroupDescription is one line of a LIST NEWSGROUPS block.
type NewsgroupDescription struct {
	Name        string
	Description string
}

// DecodeNewsgroupDescription decodes "<name> <description>"; the name and the
// description are separated by spaces or tabs, the description may be empty.
func DecodeNewsgroupDescription(line string) (NewsgroupDescription, error) {
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return NewsgroupDescription{}, &ParseError{Message: "empty newsgroup description line"}
	}

	end := strings.IndexAny(line, " \t")
	if end == -1 {
		return NewsgroupDescription{Name: line}, nil
	}
	return NewsgroupDescription{
		Name:        line[:end],
		Description: strings.Trim(line[end:], " \t"),
	}, nil
}

// DecodeText returns the line unchanged.
func DecodeText(line string) (string, error) {
	return line, nil
}

// parseArticleNumber parses an unsigned decimal article number. Signs are
// rejected: water marks and counts are never negative.
func parseArticleNumber(s string) (int64, error) {
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
