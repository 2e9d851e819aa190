package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/0xpierson/tipjar/pkg/amount"
)

// Validate checks runtime config for obvious operator mistakes. It
// normalizes token IDs and addresses in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if !KnownNetwork(cfg.Network) {
		return fmt.Errorf("network must be %q, %q or %q", Regtest, Testnet, Mainnet)
	}
	if err := validateURL(cfg.Provider.URL, "provider.url"); err != nil {
		return err
	}
	if cfg.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if err := validateURL(cfg.Bridge.URL, "bridge.url"); err != nil {
		return err
	}
	if cfg.Bridge.Timeout <= 0 {
		return fmt.Errorf("bridge.timeout must be positive")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range [0, 65535]")
	}
	if cfg.Server.PublicOrigin != "" {
		if err := validateURL(cfg.Server.PublicOrigin, "server.origin"); err != nil {
			return err
		}
	}

	if cfg.Tip.DisplayDecimals < 0 || cfg.Tip.DisplayDecimals > amount.MaxDecimals {
		return fmt.Errorf("tip.display_decimals must be in range [0, %d]", amount.MaxDecimals)
	}
	if cfg.Tip.MaxNoteBytes < 0 {
		return fmt.Errorf("tip.max_note_bytes must not be negative")
	}
	for i, q := range cfg.Tip.QuickAmounts {
		if amount.ParseUnits(q, amount.MaxInputFractionDigits).Sign() <= 0 {
			return fmt.Errorf("tip.quick_amounts[%d] %q is not a positive amount", i, q)
		}
	}

	if err := validateTokens(cfg.Tokens); err != nil {
		return err
	}

	asset := strings.ToUpper(cfg.Tip.DefaultAsset)
	if asset == "" {
		asset = PillToken.ID
	}
	if _, ok := cfg.Token(asset); !ok && asset != "CUSTOM" {
		return fmt.Errorf("tip.asset %q is not a configured token", cfg.Tip.DefaultAsset)
	}
	cfg.Tip.DefaultAsset = asset

	return nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	return nil
}

func validateTokens(tokens []Token) error {
	seen := make(map[string]struct{}, len(tokens))
	for i := range tokens {
		t := &tokens[i]
		t.ID = strings.ToUpper(strings.TrimSpace(t.ID))
		if t.ID == "" {
			return fmt.Errorf("tokens[%d] has no id", i)
		}
		if t.ID == "BTC" || t.ID == "CUSTOM" {
			return fmt.Errorf("token id %q is reserved", t.ID)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("duplicate token id %q", t.ID)
		}
		seen[t.ID] = struct{}{}

		addr := strings.ToLower(strings.TrimSpace(t.Address))
		b, err := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
		if !strings.HasPrefix(addr, "0x") || err != nil || len(b) != 32 {
			return fmt.Errorf("token %s: address must be 0x-prefixed 32-byte hex", t.ID)
		}
		t.Address = addr

		if !amount.ValidDecimals(t.Decimals) {
			return fmt.Errorf("token %s: decimals must be in range [0, %d]", t.ID, amount.MaxDecimals)
		}
	}
	return nil
}
