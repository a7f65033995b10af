package nntp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/pior/nntp/internal/testutils"
	"github.com/pior/nntp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "200 news.example.com InterNetNews server ready\r\n"

var testConfig = Config{Logger: slog.New(slog.DiscardHandler)}

func newTestConn(t *testing.T, replies ...string) (*Conn, *testutils.ConnectionMock) {
	t.Helper()
	mock := testutils.NewConnectionMock(append([]string{greeting}, replies...)...)
	conn, err := NewConn(context.Background(), mock, testConfig)
	require.NoError(t, err)
	return conn, mock
}

func TestNewConn_Greeting(t *testing.T) {
	conn, mock := newTestConn(t)

	assert.True(t, conn.PostingAllowed())
	assert.Equal(t, wire.StatusPostingAllowed, conn.Greeting().Code)
	assert.Equal(t, "news.example.com InterNetNews server ready", conn.Greeting().Text)
	assert.Equal(t, "127.0.0.1:119", conn.Addr())
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.GetWrittenRequest())
}

func TestNewConn_PostingProhibited(t *testing.T) {
	mock := testutils.NewConnectionMock("201 reader only\r\n")
	conn, err := NewConn(context.Background(), mock, testConfig)
	require.NoError(t, err)
	assert.False(t, conn.PostingAllowed())
}

func TestNewConn_GreetingRejected(t *testing.T) {
	tests := []struct {
		name string
		line string
		code wire.StatusCode
	}{
		{name: "permission denied", line: "502 access denied\r\n", code: wire.StatusPermissionDenied},
		{name: "service unavailable", line: "400 too many connections\r\n", code: wire.StatusServiceUnavailable},
		{name: "unexpected success", line: "281 ok\r\n", code: wire.StatusAuthAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutils.NewConnectionMock(tt.line)
			conn, err := NewConn(context.Background(), mock, testConfig)
			assert.Nil(t, conn)

			var se *wire.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.True(t, mock.IsClosed())
		})
	}
}

func TestNewConn_NoGreeting(t *testing.T) {
	mock := testutils.NewConnectionMock()
	_, err := NewConn(context.Background(), mock, testConfig)

	var ce *wire.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, mock.IsClosed())
}

func TestNewConn_Setup(t *testing.T) {
	mock := testutils.NewConnectionMock(
		greeting,
		"201 posting prohibited\r\n",
		"381 enter password\r\n",
		"281 authentication accepted\r\n",
	)

	config := testConfig
	config.ReaderMode = true
	config.Username = "alice"
	config.Password = "s3cret"

	conn, err := NewConn(context.Background(), mock, config)
	require.NoError(t, err)
	assert.False(t, conn.IsClosed())
	assert.Equal(t, "MODE READER\r\nAUTHINFO USER alice\r\nAUTHINFO PASS s3cret\r\n", mock.GetWrittenRequest())
}

func TestNewConn_SetupFailure(t *testing.T) {
	mock := testutils.NewConnectionMock(greeting, "481 authentication failed\r\n")

	config := testConfig
	config.Username = "alice"

	_, err := NewConn(context.Background(), mock, config)
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusAuthRejected, se.Code)
	assert.True(t, mock.IsClosed())
}

func TestConn_Capabilities(t *testing.T) {
	conn, mock := newTestConn(t,
		"101 Capability list:\r\n",
		"VERSION 2\r\n",
		"READER\r\n",
		"LIST ACTIVE NEWSGROUPS\r\n",
		".\r\n",
	)

	caps, err := conn.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []wire.Capability{
		{Label: "VERSION", Args: []string{"2"}},
		{Label: "READER"},
		{Label: "LIST", Args: []string{"ACTIVE", "NEWSGROUPS"}},
	}, caps)
	assert.Equal(t, "CAPABILITIES\r\n", mock.GetWrittenRequest())
}

func TestConn_List(t *testing.T) {
	conn, mock := newTestConn(t,
		"215 list of newsgroups follows\r\n",
		"alt.test 100 1 y\r\n",
		"comp.lang.go 2000 1000 m\r\n",
		".\r\n",
	)

	groups, err := conn.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []wire.NewsgroupInfo{
		{Name: "alt.test", High: 100, Low: 1, Posting: wire.PostingPermitted},
		{Name: "comp.lang.go", High: 2000, Low: 1000, Posting: wire.PostingModerated},
	}, groups)
	assert.Equal(t, "LIST\r\n", mock.GetWrittenRequest())
	assert.Equal(t, uint64(1), conn.Stats().Blocks)
}

func TestConn_ListActive(t *testing.T) {
	conn, mock := newTestConn(t, "215 list follows\r\n", ".\r\n")

	groups, err := conn.ListActive(context.Background(), "comp.*")
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, "LIST ACTIVE comp.*\r\n", mock.GetWrittenRequest())
}

func TestConn_ListNewsgroups(t *testing.T) {
	conn, mock := newTestConn(t,
		"215 descriptions follow\r\n",
		"comp.lang.go\tThe Go programming language\r\n",
		".\r\n",
	)

	descs, err := conn.ListNewsgroups(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []wire.NewsgroupDescription{
		{Name: "comp.lang.go", Description: "The Go programming language"},
	}, descs)
	assert.Equal(t, "LIST NEWSGROUPS\r\n", mock.GetWrittenRequest())
}

func TestConn_List_MalformedDataLine(t *testing.T) {
	conn, _ := newTestConn(t,
		"215 list follows\r\n",
		"alt.test 100 1 y\r\n",
		"broken line\r\n",
		"misc.test 1 1 y\r\n",
		"misc.other 1 1 y\r\n",
		".\r\n",
		"211 3 1 3 alt.test\r\n",
	)
	ctx := context.Background()

	groups, err := conn.List(ctx)
	assert.Nil(t, groups)
	require.ErrorIs(t, err, wire.ErrMalformedDataLine)
	assert.False(t, conn.IsClosed())

	// The session is back in sync
	gs, err := conn.Group(ctx, "alt.test")
	require.NoError(t, err)
	assert.Equal(t, "alt.test", gs.Name)

	stats := conn.Stats()
	assert.Equal(t, uint64(2), stats.DrainedLines)
	assert.Equal(t, uint64(0), stats.Blocks)
	assert.Equal(t, uint64(1), stats.Errors)
}

func TestConn_List_Incomplete(t *testing.T) {
	conn, mock := newTestConn(t,
		"215 list follows\r\n",
		"alt.test 100 1 y\r\n",
	)
	ctx := context.Background()

	_, err := conn.List(ctx)
	require.ErrorIs(t, err, wire.ErrIncompleteBlock)
	assert.True(t, conn.IsClosed())
	assert.True(t, mock.IsClosed())

	_, err = conn.List(ctx)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestConn_Group(t *testing.T) {
	conn, mock := newTestConn(t, "211 1234 3000234 3002322 misc.test\r\n")

	gs, err := conn.Group(context.Background(), "misc.test")
	require.NoError(t, err)
	assert.Equal(t, wire.GroupStatus{Count: 1234, Low: 3000234, High: 3002322, Name: "misc.test"}, gs)
	assert.Equal(t, "GROUP misc.test\r\n", mock.GetWrittenRequest())
}

func TestConn_Group_NoSuchGroup(t *testing.T) {
	conn, _ := newTestConn(t, "411 no such news group\r\n")

	_, err := conn.Group(context.Background(), "no.such.group")
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusNoSuchGroup, se.Code)
	assert.False(t, conn.IsClosed())
}

func TestConn_UnexpectedBlockIsDrained(t *testing.T) {
	conn, _ := newTestConn(t,
		"215 list follows\r\n",
		"alt.test 100 1 y\r\n",
		".\r\n",
		"211 1 1 1 alt.test\r\n",
	)
	ctx := context.Background()

	_, err := conn.Group(ctx, "alt.test")
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusInformationFollows, se.Code)
	assert.False(t, conn.IsClosed())

	_, err = conn.Group(ctx, "alt.test")
	require.NoError(t, err)
}

func TestConn_Authenticate(t *testing.T) {
	tests := []struct {
		name    string
		replies []string
		written string
		code    wire.StatusCode
	}{
		{
			name:    "accepted without password",
			replies: []string{"281 ok\r\n"},
			written: "AUTHINFO USER alice\r\n",
		},
		{
			name:    "accepted with password",
			replies: []string{"381 password required\r\n", "281 ok\r\n"},
			written: "AUTHINFO USER alice\r\nAUTHINFO PASS s3cret pw\r\n",
		},
		{
			name:    "password rejected",
			replies: []string{"381 password required\r\n", "481 rejected\r\n"},
			written: "AUTHINFO USER alice\r\nAUTHINFO PASS s3cret pw\r\n",
			code:    wire.StatusAuthRejected,
		},
		{
			name:    "out of sequence",
			replies: []string{"482 out of sequence\r\n"},
			written: "AUTHINFO USER alice\r\n",
			code:    wire.StatusAuthOutOfSequence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newTestConn(t, tt.replies...)

			err := conn.Authenticate(context.Background(), "alice", "s3cret pw")
			if tt.code == 0 {
				require.NoError(t, err)
			} else {
				var se *wire.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.code, se.Code)
			}
			assert.Equal(t, tt.written, mock.GetWrittenRequest())
			assert.False(t, conn.IsClosed())
		})
	}
}

func TestConn_ModeReader(t *testing.T) {
	conn, mock := newTestConn(t, "200 posting allowed\r\n")

	posting, err := conn.ModeReader(context.Background())
	require.NoError(t, err)
	assert.True(t, posting)
	assert.Equal(t, "MODE READER\r\n", mock.GetWrittenRequest())
}

func TestConn_Date(t *testing.T) {
	conn, mock := newTestConn(t, "111 20240102030405\r\n")

	ts, err := conn.Date(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ts)
	assert.Equal(t, "DATE\r\n", mock.GetWrittenRequest())
}

func TestConn_Help(t *testing.T) {
	conn, _ := newTestConn(t,
		"100 help text follows\r\n",
		"  article [message-ID|number]\r\n",
		"..dotted\r\n",
		".\r\n",
	)

	lines, err := conn.Help(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"  article [message-ID|number]", ".dotted"}, lines)
}

func TestConn_Quit(t *testing.T) {
	conn, mock := newTestConn(t, "205 closing connection\r\n")

	require.NoError(t, conn.Quit(context.Background()))
	assert.True(t, conn.IsClosed())
	assert.True(t, mock.IsClosed())
	assert.Equal(t, "QUIT\r\n", mock.GetWrittenRequest())
}

func TestConn_Do(t *testing.T) {
	conn, mock := newTestConn(t,
		"111 20240102030405\r\n",
		"100 help follows\r\n",
		"text\r\n",
		".\r\n",
		"411 no such group\r\n",
		"205 bye\r\n",
	)
	ctx := context.Background()

	resp, err := conn.Do(ctx, wire.Date{})
	require.NoError(t, err)
	assert.Equal(t, wire.StatusDate, resp.Code)

	// The block is read and discarded
	resp, err = conn.Do(ctx, wire.Help{})
	require.NoError(t, err)
	assert.Equal(t, wire.StatusHelpFollows, resp.Code)

	resp, err = conn.Do(ctx, wire.Group{Name: "nope"})
	var se *wire.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, wire.StatusNoSuchGroup, resp.Code)

	resp, err = conn.Do(ctx, wire.Quit{})
	require.NoError(t, err)
	assert.Equal(t, wire.StatusClosing, resp.Code)
	assert.True(t, conn.IsClosed())

	assert.Equal(t, "DATE\r\nHELP\r\nGROUP nope\r\nQUIT\r\n", mock.GetWrittenRequest())
	assert.Equal(t, uint64(1), conn.Stats().DrainedLines)
}

func TestConn_InvalidArgument(t *testing.T) {
	conn, mock := newTestConn(t)

	_, err := conn.Group(context.Background(), "two words")
	var iae *wire.InvalidArgumentError
	require.ErrorAs(t, err, &iae)
	assert.Empty(t, mock.GetWrittenRequest())
	assert.False(t, conn.IsClosed())
}

func TestConn_WriteError(t *testing.T) {
	conn, mock := newTestConn(t)
	mock.FailWritesWith(errors.New("broken pipe"))

	_, err := conn.List(context.Background())
	var ce *wire.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "write", ce.Op)
	assert.True(t, conn.IsClosed())
}

func TestConn_ReadTimeout(t *testing.T) {
	conn, mock := newTestConn(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	mock.FailReadsWith(os.ErrDeadlineExceeded)

	_, err := conn.Date(ctx)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.True(t, wire.ShouldCloseConnection(err))
	assert.True(t, conn.IsClosed())

	deadline, _ := ctx.Deadline()
	assert.Equal(t, deadline, mock.Deadline())
}

func TestConn_ContextCancelled(t *testing.T) {
	conn, mock := newTestConn(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Date(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.GetWrittenRequest())
	assert.False(t, conn.IsClosed())
}

func TestConn_Close(t *testing.T) {
	conn, mock := newTestConn(t)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.True(t, mock.IsClosed())

	_, err := conn.Date(context.Background())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}
