// Package amount converts token quantities between their human-readable
// decimal form and integer counts of smallest units.
//
// All arithmetic is done on *big.Int. Floating point is never used, so no
// precision is lost on chain-scale amounts. Every function is pure and safe
// for concurrent use.
package amount

import (
	"math/big"
	"strings"
)

const (
	// MaxDecimals is the largest token precision accepted by callers.
	MaxDecimals = 18

	// DefaultDisplayDecimals is the number of fractional digits shown when a
	// call site does not ask for a specific display precision.
	DefaultDisplayDecimals = 3
)

var bigTen = big.NewInt(10)

// ValidDecimals reports whether d is a usable token precision.
func ValidDecimals(d int) bool {
	return d >= 0 && d <= MaxDecimals
}

// Pow10 returns a new big.Int holding 10^d. Negative d yields 1.
func Pow10(d int) *big.Int {
	if d <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(bigTen, big.NewInt(int64(d)), nil)
}

// ParseUnits converts a decimal string such as "1.5" into smallest units for
// a token with the given precision.
//
// Parsing is fail-soft: empty input yields zero, non-digit characters are
// dropped, and fractional digits beyond decimals are truncated, not rounded.
// The result is never negative. Callers that need a positive amount must check
// the result themselves.
func ParseUnits(value string, decimals int) *big.Int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || decimals < 0 {
		return new(big.Int)
	}

	parts := strings.Split(trimmed, ".")
	intPart := digitsOnly(parts[0])
	fracPart := ""
	if len(parts) > 1 {
		fracPart = digitsOnly(parts[1])
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		fracPart = "0"
	}

	// Pad then truncate to exactly decimals digits.
	if len(fracPart) < decimals {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	}
	fracPart = fracPart[:decimals]

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return new(big.Int)
	}
	units := whole.Mul(whole, Pow10(decimals))
	if fracPart == "" {
		return units
	}
	frac, ok := new(big.Int).SetString(fracPart, 10)
	if !ok {
		return new(big.Int)
	}
	return units.Add(units, frac)
}

// Format renders value with DefaultDisplayDecimals fractional digits at most.
func Format(value *big.Int, decimals int) string {
	return FormatUnits(value, decimals, DefaultDisplayDecimals)
}

// FormatFull renders value keeping every significant fractional digit.
func FormatFull(value *big.Int, decimals int) string {
	return FormatUnits(value, decimals, decimals)
}

// FormatUnits converts smallest units back into a decimal string.
//
// At most displayDecimals fractional digits are shown; lower-order digits are
// dropped, not rounded. The output never ends in a trailing '.' or trailing
// zeros. Negative values keep their sign. A nil value formats as "0".
func FormatUnits(value *big.Int, decimals, displayDecimals int) string {
	if value == nil {
		return "0"
	}

	sign := ""
	abs := value
	if value.Sign() < 0 {
		sign = "-"
		abs = new(big.Int).Neg(value)
	}
	if decimals <= 0 {
		return sign + abs.String()
	}

	whole, fraction := new(big.Int).QuoRem(abs, Pow10(decimals), new(big.Int))
	if fraction.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := fraction.String()
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	visible := min(decimals, displayDecimals)
	if visible < 0 {
		visible = 0
	}
	fracStr = strings.TrimRight(fracStr[:visible], "0")
	if fracStr == "" {
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fracStr
}

// digitsOnly drops every byte that is not an ASCII digit.
func digitsOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
