package wire

import (
	"fmt"
	"strconv"
)

// StatusCode is the 3-digit code that starts every reply line.
type StatusCode uint16

// Protocol delimiters
const (
	// CRLF is the line terminator for requests and replies
	CRLF = "\r\n"

	// Space separates command tokens
	Space = " "

	// Terminator is the line that ends a multi-line block.
	Terminator = "."
)

// Command keywords (RFC 3977 section 3.1, RFC 4643 for AUTHINFO)
const (
	KeywordCapabilities = "CAPABILITIES"
	KeywordList         = "LIST"
	KeywordQuit         = "QUIT"
	KeywordGroup        = "GROUP"
	KeywordAuthInfo     = "AUTHINFO"
	KeywordMode         = "MODE"
	KeywordDate         = "DATE"
	KeywordHelp         = "HELP"

	// AUTHINFO sub-keywords
	AuthInfoUser = "USER"
	AuthInfoPass = "PASS"

	// MODE argument
	ModeReaderArg = "READER"
)

// LIST keywords (RFC 3977 section 7.6)
const (
	ListActive      = "ACTIVE"
	ListActiveTimes = "ACTIVE.TIMES"
	ListDistribPats = "DISTRIB.PATS"
	ListNewsgroups  = "NEWSGROUPS"
	ListOverviewFmt = "OVERVIEW.FMT"
	ListHeaders     = "HEADERS"
)

// Status codes
//
// 1xx: informative, 2xx: command ok, 3xx: command ok so far, send the rest,
// 4xx: command correct but could not be performed, 5xx: command unknown,
// unsupported or syntactically wrong.
const (
	StatusHelpFollows         StatusCode = 100
	StatusCapabilitiesFollow  StatusCode = 101
	StatusDate                StatusCode = 111
	StatusPostingAllowed      StatusCode = 200
	StatusPostingProhibited   StatusCode = 201
	StatusClosing             StatusCode = 205
	StatusGroupSelected       StatusCode = 211
	StatusInformationFollows  StatusCode = 215
	StatusArticleFollows      StatusCode = 220
	StatusHeadFollows         StatusCode = 221
	StatusBodyFollows         StatusCode = 222
	StatusArticleExists       StatusCode = 223
	StatusOverviewFollows     StatusCode = 224
	StatusHeadersFollow       StatusCode = 225
	StatusNewArticlesFollow   StatusCode = 230
	StatusNewGroupsFollow     StatusCode = 231
	StatusTransferred         StatusCode = 235
	StatusPosted              StatusCode = 240
	StatusAuthAccepted        StatusCode = 281
	StatusSASLAccepted        StatusCode = 283
	StatusSendTransfer        StatusCode = 335
	StatusSendArticle         StatusCode = 340
	StatusPasswordRequired    StatusCode = 381
	StatusSASLContinue        StatusCode = 383
	StatusServiceUnavailable  StatusCode = 400
	StatusWrongMode           StatusCode = 401
	StatusInternalFault       StatusCode = 403
	StatusNoSuchGroup         StatusCode = 411
	StatusNoGroupSelected     StatusCode = 412
	StatusInvalidArticleNum   StatusCode = 420
	StatusNoNextArticle       StatusCode = 421
	StatusNoPrevArticle       StatusCode = 422
	StatusNoArticleWithNum    StatusCode = 423
	StatusNoArticleWithID     StatusCode = 430
	StatusNotWanted           StatusCode = 435
	StatusTransferLater       StatusCode = 436
	StatusTransferRejected    StatusCode = 437
	StatusPostingNotPermitted StatusCode = 440
	StatusPostingFailed       StatusCode = 441
	StatusAuthRequired        StatusCode = 480
	StatusAuthRejected        StatusCode = 481
	StatusAuthOutOfSequence   StatusCode = 482
	StatusPrivacyRequired     StatusCode = 483
	StatusUnknownCommand      StatusCode = 500
	StatusSyntaxError         StatusCode = 501
	StatusPermissionDenied    StatusCode = 502
	StatusNotSupported        StatusCode = 503
	StatusBase64Error         StatusCode = 504
)

// String returns the code as three decimal digits.
func (c StatusCode) String() string {
	return fmt.Sprintf("%03d", uint16(c))
}

// Class returns the first digit of the code (1 to 5 for defined codes).
func (c StatusCode) Class() int {
	return int(c) / 100
}

// Kind classifies a reply by the semantic class its code is defined with.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindHelpFollows
	KindCapabilitiesFollow
	KindInformational
	KindServiceReady
	KindSuccess
	KindInformationFollows
	KindArticleFollows
	KindOverviewFollows
	KindNewArticlesFollow
	KindNewGroupsFollow
	KindContinue
	KindTransientFailure
	KindPermanentFailure
)

var kindNames = [...]string{
	KindUnknown:            "Unknown",
	KindHelpFollows:        "HelpFollows",
	KindCapabilitiesFollow: "CapabilitiesFollow",
	KindInformational:      "Informational",
	KindServiceReady:       "ServiceReady",
	KindSuccess:            "Success",
	KindInformationFollows: "InformationFollows",
	KindArticleFollows:     "ArticleFollows",
	KindOverviewFollows:    "OverviewFollows",
	KindNewArticlesFollow:  "NewArticlesFollow",
	KindNewGroupsFollow:    "NewGroupsFollow",
	KindContinue:           "Continue",
	KindTransientFailure:   "TransientFailure",
	KindPermanentFailure:   "PermanentFailure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// statusInfo is one row of the status code table.
type statusInfo struct {
	kind      Kind
	multiline bool
}

// statusTable maps every code defined by RFC 3977 and RFC 4643 to its kind.
// Codes missing from the table parse as KindUnknown.
var statusTable = map[StatusCode]statusInfo{
	StatusHelpFollows:        {KindHelpFollows, true},
	StatusCapabilitiesFollow: {KindCapabilitiesFollow, true},
	StatusDate:               {KindInformational, false},

	StatusPostingAllowed:     {KindServiceReady, false},
	StatusPostingProhibited:  {KindServiceReady, false},
	StatusClosing:            {KindSuccess, false},
	StatusGroupSelected:      {KindSuccess, false},
	StatusInformationFollows: {KindInformationFollows, true},
	StatusArticleFollows:     {KindArticleFollows, true},
	StatusHeadFollows:        {KindArticleFollows, true},
	StatusBodyFollows:        {KindArticleFollows, true},
	StatusArticleExists:      {KindSuccess, false},
	StatusOverviewFollows:    {KindOverviewFollows, true},
	StatusHeadersFollow:      {KindOverviewFollows, true},
	StatusNewArticlesFollow:  {KindNewArticlesFollow, true},
	StatusNewGroupsFollow:    {KindNewGroupsFollow, true},
	StatusTransferred:        {KindSuccess, false},
	StatusPosted:             {KindSuccess, false},
	StatusAuthAccepted:       {KindSuccess, false},
	StatusSASLAccepted:       {KindSuccess, false},

	StatusSendTransfer:     {KindContinue, false},
	StatusSendArticle:      {KindContinue, false},
	StatusPasswordRequired: {KindContinue, false},
	StatusSASLContinue:     {KindContinue, false},

	StatusServiceUnavailable:  {KindTransientFailure, false},
	StatusWrongMode:           {KindTransientFailure, false},
	StatusInternalFault:       {KindTransientFailure, false},
	StatusNoSuchGroup:         {KindTransientFailure, false},
	StatusNoGroupSelected:     {KindTransientFailure, false},
	StatusInvalidArticleNum:   {KindTransientFailure, false},
	StatusNoNextArticle:       {KindTransientFailure, false},
	StatusNoPrevArticle:       {KindTransientFailure, false},
	StatusNoArticleWithNum:    {KindTransientFailure, false},
	StatusNoArticleWithID:     {KindTransientFailure, false},
	StatusNotWanted:           {KindTransientFailure, false},
	StatusTransferLater:       {KindTransientFailure, false},
	StatusTransferRejected:    {KindTransientFailure, false},
	StatusPostingNotPermitted: {KindTransientFailure, false},
	StatusPostingFailed:       {KindTransientFailure, false},
	StatusAuthRequired:        {KindTransientFailure, false},
	StatusAuthRejected:        {KindTransientFailure, false},
	StatusAuthOutOfSequence:   {KindTransientFailure, false},
	StatusPrivacyRequired:     {KindTransientFailure, false},

	StatusUnknownCommand:   {KindPermanentFailure, false},
	StatusSyntaxError:      {KindPermanentFailure, false},
	StatusPermissionDenied: {KindPermanentFailure, false},
	StatusNotSupported:     {KindPermanentFailure, false},
	StatusBase64Error:      {KindPermanentFailure, false},
}

// KindOf returns the kind of a status code and whether a multi-line block
// follows a reply carrying it.
func KindOf(code StatusCode) (kind Kind, multiline bool) {
	info, ok := statusTable[code]
	if !ok {
		return KindUnknown, false
	}
	return info.kind, info.multiline
}

// Capability labels (RFC 3977 section 3.3.2)
const (
	CapabilityVersion        = "VERSION"
	CapabilityReader         = "READER"
	CapabilityIHave          = "IHAVE"
	CapabilityPost           = "POST"
	CapabilityNewNews        = "NEWNEWS"
	CapabilityHdr            = "HDR"
	CapabilityOver           = "OVER"
	CapabilityList           = "LIST"
	CapabilityImplementation = "IMPLEMENTATION"
	CapabilityModeReader     = "MODE-READER"
	CapabilityAuthInfo       = "AUTHINFO"
	CapabilitySASL           = "SASL"
)
