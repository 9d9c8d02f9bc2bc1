package inventory

import "strings"

const (
	// IPv4 and IPv6 are the Network.Version tags.
	IPv4 = "v4"
	IPv6 = "v6"

	privatePrefix = "10."
)

// Server is a provider-independent view of one compute instance.
type Server struct {
	ID       string
	Name     string
	Networks []Network
}

// Network is one address attachment of a server.
type Network struct {
	Version string // IPv4 or IPv6
	Address string
	Type    string // provider's own classification, informational only
}

// IsPrivate reports whether an address is treated as private. Only the
// 10.0.0.0/8 prefix counts.
func IsPrivate(address string) bool {
	return strings.HasPrefix(address, privatePrefix)
}

// IPv4 returns the server's IPv4 attachments in provider order.
func (s Server) IPv4() []Network {
	var out []Network
	for _, n := range s.Networks {
		if n.Version == IPv4 {
			out = append(out, n)
		}
	}
	return out
}

// SelectAddress picks the one address that represents the server: the first
// IPv4 address, unless it is private and a non-private one follows, in which
// case the first non-private address wins. It returns false when the server
// has no IPv4 attachment.
func SelectAddress(s Server) (string, bool) {
	v4 := s.IPv4()
	if len(v4) == 0 {
		return "", false
	}

	chosen := v4[0].Address
	if IsPrivate(chosen) {
		for _, n := range v4 {
			if !IsPrivate(n.Address) {
				chosen = n.Address
				break
			}
		}
	}
	return chosen, true
}
