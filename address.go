package threadlet

import (
	"fmt"
	"strconv"
	"strings"
)

// Addr is an AF_INET address: a 32-bit IPv4 address in network byte order
// plus a 16-bit port in host byte order (§3 Address data model). The core
// does not implement IPv6, TLS, or DNS resolution (§1 Non-goals).
type Addr struct {
	IP   [4]byte // network byte order
	Port uint16  // host byte order
}

// NewAddr builds an Addr from four dotted-quad octets and a port.
func NewAddr(a, b, c, d byte, port uint16) Addr {
	return Addr{IP: [4]byte{a, b, c, d}, Port: port}
}

// String renders the address as "a.b.c.d:port".
func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.IP[0], a.IP[1], a.IP[2], a.IP[3], a.Port)
}

// ParseAddr parses a "a.b.c.d:port" string. It is the exact inverse of
// String: parse(to_string(addr)) == addr for any AF_INET address (§8 Laws,
// round-trip address).
func ParseAddr(s string) (Addr, error) {
	host, portStr, ok := cutLastColon(s)
	if !ok {
		return Addr{}, New(InvalidParam, "address missing port: "+s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Addr{}, Wrap(InvalidParam, "invalid port in address: "+s, err)
	}
	octets := strings.Split(host, ".")
	if len(octets) != 4 {
		return Addr{}, New(InvalidParam, "invalid ipv4 address: "+s)
	}
	var ip [4]byte
	for i, o := range octets {
		v, err := strconv.ParseUint(o, 10, 8)
		if err != nil {
			return Addr{}, Wrap(InvalidParam, "invalid ipv4 octet in address: "+s, err)
		}
		ip[i] = byte(v)
	}
	return Addr{IP: ip, Port: uint16(port)}, nil
}

func cutLastColon(s string) (before, after string, found bool) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// IsUnspecified reports whether a is the 0.0.0.0 wildcard address.
func (a Addr) IsUnspecified() bool {
	return a.IP == [4]byte{}
}

// Broadcast returns the 255.255.255.255 broadcast address with the given
// port, used by the UDP broadcast-discovery pattern (§8 scenario 3).
func Broadcast(port uint16) Addr {
	return Addr{IP: [4]byte{255, 255, 255, 255}, Port: port}
}
