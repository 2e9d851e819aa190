package tipjar

import (
	"fmt"
	"strings"

	"github.com/0xpierson/tipjar/config"
)

// Token is an OP20 token that can be tipped.
type Token = config.Token

// Asset selects the token on the send form.
type Asset string

const (
	AssetPill   Asset = "PILL"
	AssetMoto   Asset = "MOTO"
	AssetCustom Asset = "CUSTOM"
)

// ParseAsset normalizes s to an Asset. Empty input yields def.
func ParseAsset(s string, def Asset) Asset {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return Asset(s)
}

// ResolveToken returns the token for asset. Configured tokens are looked up by
// ID; CUSTOM builds a token from the user's contract address and decimals.
func ResolveToken(tokens []Token, asset Asset, customAddress, customDecimals string) (Token, error) {
	if asset == AssetCustom {
		return Token{
			ID:       string(AssetCustom),
			Symbol:   string(AssetCustom),
			Name:     "Custom token",
			Address:  strings.TrimSpace(customAddress),
			Decimals: parseDecimals(customDecimals),
		}, nil
	}
	for _, t := range tokens {
		if t.ID == string(asset) {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("%w: %q", ErrUnknownAsset, string(asset))
}

// parseDecimals reads the leading integer of s. Anything unparseable is 0.
// Trailing garbage is ignored, so "8abc" is 8.
func parseDecimals(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1_000_000 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
