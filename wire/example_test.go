package wire_test

import (
	"bufio"
	"fmt"
	"log"
	"net/textproto"
	"strings"

	"github.com/pior/nntp/wire"
)

// ExampleEncode demonstrates command serialization.
func ExampleEncode() {
	fmt.Printf("%q\n", wire.Encode(wire.Group{Name: "comp.lang.go"}))
	fmt.Printf("%q\n", wire.Encode(wire.List{Variant: wire.ListActive, Wildmat: "comp.*"}))
	// Output:
	// "GROUP comp.lang.go\r\n"
	// "LIST ACTIVE comp.*\r\n"
}

// ExampleParseLine demonstrates status line classification.
func ExampleParseLine() {
	resp, err := wire.ParseLine("215 list of newsgroups follows")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Code, resp.Kind, resp.FollowsBlock())
	// Output: 215 InformationFollows true
}

// ExampleReadNewsgroups reads a LIST reply from a textproto.Reader.
func ExampleReadNewsgroups() {
	input := "215 list follows\r\n" +
		"alt.test 100 1 y\r\n" +
		"comp.lang.go 2000 1000 m\r\n" +
		".\r\n"
	r := textproto.NewReader(bufio.NewReader(strings.NewReader(input)))

	resp, err := wire.ReadResponse(r)
	if err != nil {
		log.Fatal(err)
	}
	if !resp.FollowsBlock() {
		log.Fatalf("unexpected reply: %s", resp)
	}

	groups, err := wire.ReadNewsgroups(r)
	if err != nil {
		log.Fatal(err)
	}
	for _, g := range groups {
		fmt.Printf("%s %d-%d %s\n", g.Name, g.Low, g.High, g.Posting)
	}
	// Output:
	// alt.test 1-100 y
	// comp.lang.go 1000-2000 m
}

// ExampleReadCapabilities reads a CAPABILITIES block.
func ExampleReadCapabilities() {
	caps, err := wire.ReadCapabilities(wire.Lines("VERSION 2", "READER", "AUTHINFO USER", "."))
	if err != nil {
		log.Fatal(err)
	}

	auth, _ := wire.FindCapability(caps, wire.CapabilityAuthInfo)
	fmt.Println(len(caps), auth.HasArg("USER"))
	// Output: 3 true
}

// Example_errorHandling demonstrates deciding whether a connection survives an error.
func Example_errorHandling() {
	src := wire.Lines("alt.test 100 1 y", "garbage", ".", "205 bye")

	_, err := wire.ReadNewsgroups(src)
	fmt.Println(wire.ShouldCloseConnection(err))

	// Skip the rest of the block and read the next reply
	if _, err := wire.DrainBlock(src); err != nil {
		log.Fatal(err)
	}
	resp, _ := wire.ReadResponse(src)
	fmt.Println(resp)
	// Output:
	// false
	// 205 bye
}
