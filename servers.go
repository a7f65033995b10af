package nntp

import (
	"errors"
	"net"

	"github.com/pior/nntp/internal"
	"github.com/zeebo/xxh3"
)

// DefaultPort is the NNTP port used for addresses given without one.
const DefaultPort = "119"

var ErrNoServers = errors.New("nntp: no servers available")

// Servers provides the list of server addresses a Client dials.
type Servers interface {
	List() []string
}

type staticServers struct {
	addresses []string
}

// NewStaticServers returns a fixed server list. Addresses without a port get
// DefaultPort.
func NewStaticServers(addresses ...string) Servers {
	normalized := make([]string, len(addresses))
	for i, addr := range addresses {
		normalized[i] = withDefaultPort(addr)
	}
	return &staticServers{addresses: normalized}
}

func (s *staticServers) List() []string {
	return s.addresses
}

func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultPort)
}

// SelectServerFunc picks which server to use for a key, typically a
// newsgroup name. It receives the current list from Servers.List().
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer uses Jump Hash over xxh3 for consistent server selection:
// the same group keeps landing on the same server, and few groups move when
// servers are added or removed.
func DefaultSelectServer(key string, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}
	return servers[internal.JumpHash(xxh3.HashString(key), len(servers))], nil
}
