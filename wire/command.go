package wire

// Command is a typed NNTP request.
//
// The set of commands is closed: Capabilities, List, Quit, Group, AuthInfo,
// ModeReader, Date and Help. Values are plain data and are serialized by
// Encode, AppendCommand or WriteCommand.
type Command interface {
	// Keyword returns the command verb as sent on the wire.
	Keyword() string

	isCommand()
}

// Capabilities asks the server for its capability list.
//
// Wire format: CAPABILITIES\r\n
//
// Reply: 101 followed by a block of Capability lines.
type Capabilities struct{}

// List asks for a list of newsgroups or related information.
//
// Wire format: LIST [<keyword> [<wildmat>]]\r\n
//
// Variant is the LIST keyword (ACTIVE, NEWSGROUPS, ...). With an empty Variant
// the server answers like LIST ACTIVE: 215 followed by a block of
// NewsgroupInfo lines. Wildmat is only sent when Variant is set.
type List struct {
	Variant string
	Wildmat string
}

// Quit ends the session. The server replies 205 and closes the connection.
//
// Wire format: QUIT\r\n
type Quit struct{}

// Group selects a newsgroup.
//
// Wire format: GROUP <name>\r\n
//
// Reply: 211 <count> <low> <high> <name>, or 411 if the group does not exist.
type Group struct {
	Name string
}

// AuthInfo sends one half of the AUTHINFO USER/PASS exchange.
//
// Wire format: AUTHINFO USER <user>\r\n or AUTHINFO PASS <password>\r\n
//
// Replies: 281 accepted, 381 password required, 481 rejected, 482 out of
// sequence. Ordering of the two halves is left to the caller.
type AuthInfo struct {
	Part AuthPart
}

// AuthPart tags which half of the credential exchange an AuthInfo encodes.
// It is either AuthUser or AuthPass.
type AuthPart interface {
	subKeyword() string
	value() string
}

// AuthUser is the user name half of AUTHINFO.
type AuthUser string

// AuthPass is the password half of AUTHINFO.
type AuthPass string

func (u AuthUser) subKeyword() string { return AuthInfoUser }
func (u AuthUser) value() string      { return string(u) }
func (p AuthPass) subKeyword() string { return AuthInfoPass }
func (p AuthPass) value() string      { return string(p) }

// ModeReader switches a mode-switching server to reader mode.
//
// Wire format: MODE READER\r\n
//
// Reply: 200 or 201, like the initial greeting.
type ModeReader struct{}

// Date asks for the server's UTC time.
//
// Wire format: DATE\r\n
//
// Reply: 111 yyyymmddhhmmss
type Date struct{}

// Help asks for the server's help text.
//
// Wire format: HELP\r\n
//
// Reply: 100 followed by a block of free text.
type Help struct{}

func (Capabilities) Keyword() string { return KeywordCapabilities }
func (List) Keyword() string         { return KeywordList }
func (Quit) Keyword() string         { return KeywordQuit }
func (Group) Keyword() string        { return KeywordGroup }
func (AuthInfo) Keyword() string     { return KeywordAuthInfo }
func (ModeReader) Keyword() string   { return KeywordMode }
func (Date) Keyword() string         { return KeywordDate }
func (Help) Keyword() string         { return KeywordHelp }

func (Capabilities) isCommand() {}
func (List) isCommand()         {}
func (Quit) isCommand()         {}
func (Group) isCommand()        {}
func (AuthInfo) isCommand()     {}
func (ModeReader) isCommand()   {}
func (Date) isCommand()         {}
func (Help) isCommand()         {}
