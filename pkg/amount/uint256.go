package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var (
	// ErrNegative is returned when a negative amount is converted to an
	// unsigned on-chain quantity.
	ErrNegative = errors.New("amount is negative")

	// ErrOverflow is returned when an amount does not fit in 256 bits.
	ErrOverflow = errors.New("amount exceeds 256 bits")
)

// ToUint256 converts units to the u256 representation used by OP20 contracts.
func ToUint256(units *big.Int) (*uint256.Int, error) {
	if units == nil {
		return new(uint256.Int), nil
	}
	if units.Sign() < 0 {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(units)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

// FromUint256 converts a u256 quantity back to an arbitrary-precision integer.
func FromUint256(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

// ParseQuantity decodes a quantity returned by a provider. Both 0x-prefixed
// hex and plain decimal strings are accepted; the value must fit in 256 bits.
func ParseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty quantity")
	}

	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			digits = "0"
		}
		v, err = uint256.FromHex("0x" + digits)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return v.ToBig(), nil
}

// QuantityString encodes units as the decimal string sent to a bridge.
func QuantityString(units *big.Int) (string, error) {
	v, err := ToUint256(units)
	if err != nil {
		return "", err
	}
	return v.Dec(), nil
}
