package p9srv

import (
	"fmt"
	"net"
	"strings"
)

// ParseAddress splits a dial string of the form unix!path or
// tcp!host!port into a network and an address for net.Listen.
func ParseAddress(addr string) (network, address string, err error) {
	parts := strings.Split(addr, "!")
	switch {
	case len(parts) == 2 && parts[0] == "unix" && parts[1] != "":
		return "unix", parts[1], nil
	case len(parts) == 3 && parts[0] == "tcp" && parts[2] != "":
		return "tcp", net.JoinHostPort(parts[1], parts[2]), nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrBadAddress, addr)
}
