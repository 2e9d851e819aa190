package jar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAddress is returned for recipients that are recognizably malformed.
var ErrInvalidAddress = errors.New("invalid address")

// AddressKind is the syntactic family of an address string.
type AddressKind int

const (
	KindUnknown AddressKind = iota
	KindSegwit              // bech32 / bech32m, e.g. opt1p...
	KindHex                 // 0x-prefixed public key or contract address
)

// Kind classifies addr for the given network HRP without validating it.
func Kind(addr, hrp string) AddressKind {
	lower := strings.ToLower(addr)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return KindHex
	case hrp != "" && strings.HasPrefix(lower, strings.ToLower(hrp)+"1"):
		return KindSegwit
	default:
		return KindUnknown
	}
}

// ValidateRecipient checks the parts of a recipient that can be checked
// locally. Segwit addresses must decode and carry hrp; hex addresses must be
// even-length hex. Anything else that is not a segwit address of another
// network is accepted here and left for the provider to resolve.
func ValidateRecipient(addr, hrp string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ErrNoAddress
	}
	switch Kind(addr, hrp) {
	case KindSegwit:
		got, _, _, err := DecodeSegwit(addr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		if got != strings.ToLower(hrp) {
			return fmt.Errorf("%w: network prefix %q, want %q", ErrInvalidAddress, got, hrp)
		}
	case KindHex:
		digits := addr[2:]
		if len(digits) == 0 || len(digits)%2 != 0 {
			return fmt.Errorf("%w: odd-length hex", ErrInvalidAddress)
		}
		for i := 0; i < len(digits); i++ {
			if !isHex(digits[i]) {
				return fmt.Errorf("%w: non-hex character %q", ErrInvalidAddress, digits[i])
			}
		}
	default:
		// A well-formed segwit address for some other network.
		if got, _, _, err := DecodeSegwit(addr); err == nil {
			return fmt.Errorf("%w: network prefix %q, want %q", ErrInvalidAddress, got, hrp)
		}
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
