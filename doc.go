// Package nntp is an NNTP client built on the wire codec in
// github.com/pior/nntp/wire.
//
// A Conn is one session: it reads the greeting, sends commands and decodes
// their replies, including multi-line blocks.
//
//	conn, err := nntp.Dial(ctx, "news.example.com:119", nntp.Config{ReaderMode: true})
//	if err != nil {
//		return err
//	}
//	defer conn.Quit(ctx)
//
//	groups, err := conn.List(ctx)
//
// Pipeline sends several commands at once and reads the replies in order:
//
//	replies, err := conn.Pipeline(ctx, wire.Capabilities{}, wire.List{}, wire.Quit{})
//
// A Client spreads sessions over several servers. The server for a newsgroup
// is picked by consistent hashing, and each server can be guarded by a
// circuit breaker (see NewCircuitBreakerConfig). Client.Stats and
// Client.ServerStates can be exported with the metrics package.
//
// Errors come from the wire package; wire.ShouldCloseConnection tells whether
// a session survived one. Conn closes itself when it did not.
package nntp
