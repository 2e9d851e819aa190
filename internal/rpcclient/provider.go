package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/0xpierson/tipjar/pkg/amount"
)

// ErrUnknownAddress is returned when the provider has no public key
// information for an address.
var ErrUnknownAddress = errors.New("address has no public key info")

// Provider queries an OPNet node.
type Provider struct {
	c *Client
}

// NewProvider wraps c as an OPNet provider client.
func NewProvider(c *Client) *Provider {
	return &Provider{c: c}
}

// GetBalance returns the confirmed balance of a Bitcoin address in satoshis.
func (p *Provider) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var raw json.RawMessage
	if err := p.c.Call(ctx, "btc_getBalance", []interface{}{address, true}, &raw); err != nil {
		return nil, err
	}
	v, err := decodeQuantity(raw)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return v, nil
}

// PublicKeyInfo is the key material the node knows for an address.
type PublicKeyInfo struct {
	OriginalPubKey       string `json:"originalPubKey,omitempty"`
	TweakedPubkey        string `json:"tweakedPubkey,omitempty"`
	MLDSAHashedPublicKey string `json:"mldsaHashedPublicKey,omitempty"`
	P2TR                 string `json:"p2tr,omitempty"`
}

// OPNetAddress returns the 0x-prefixed OPNet address for the key info, or ""
// when the node returned nothing usable.
func (k PublicKeyInfo) OPNetAddress() string {
	for _, v := range []string{k.MLDSAHashedPublicKey, k.TweakedPubkey} {
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, "0x") {
			v = "0x" + v
		}
		return strings.ToLower(v)
	}
	return ""
}

// GetPublicKeyInfo resolves address to its OPNet address.
func (p *Provider) GetPublicKeyInfo(ctx context.Context, address string) (string, error) {
	var infos map[string]*PublicKeyInfo
	if err := p.c.Call(ctx, "btc_publicKeyInfo", []interface{}{[]string{address}}, &infos); err != nil {
		return "", err
	}
	info := infos[address]
	if info == nil {
		return "", ErrUnknownAddress
	}
	resolved := info.OPNetAddress()
	if resolved == "" {
		return "", ErrUnknownAddress
	}
	return resolved, nil
}

// decodeQuantity accepts a JSON string (hex or decimal) or a JSON number.
func decodeQuantity(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("unexpected quantity %s", string(raw))
		}
		s = n.String()
	}
	return amount.ParseQuantity(s)
}
