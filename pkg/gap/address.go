// Package gap implements the Generic Access Profile helpers the original
// library shipped alongside HCI itself: Bluetooth address string parsing
// and advertising-payload decoding (utils.c / gap.c).
package gap

import "fmt"

// ParseAddress parses a colon-separated hex Bluetooth address, e.g.
// "AA:BB:CC:DD:EE:FF", into its 6-byte wire representation: reversed
// (least-significant octet first), matching how the controller expects
// addresses serialized on the wire. Returns an error for anything other
// than exactly 6 colon-separated hex octets.
func ParseAddress(s string) ([6]byte, error) {
	var addr [6]byte

	if len(s) != 17 {
		return addr, fmt.Errorf("gap: invalid address %q: want AA:BB:CC:DD:EE:FF", s)
	}

	for i := 0; i < 6; i++ {
		pos := i * 3
		if i < 5 && s[pos+2] != ':' {
			return addr, fmt.Errorf("gap: invalid address %q: missing ':' separator", s)
		}
		hi, ok := hexNibble(s[pos])
		if !ok {
			return addr, fmt.Errorf("gap: invalid address %q: bad hex digit %q", s, s[pos])
		}
		lo, ok := hexNibble(s[pos+1])
		if !ok {
			return addr, fmt.Errorf("gap: invalid address %q: bad hex digit %q", s, s[pos+1])
		}
		addr[5-i] = hi<<4 | lo
	}

	return addr, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// FormatAddress renders addr (in the same reversed wire representation
// ParseAddress produces) back into "AA:BB:CC:DD:EE:FF" form.
func FormatAddress(addr [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}
