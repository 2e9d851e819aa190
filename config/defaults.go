package config

import "time"

// Tip defaults.
const (
	DefaultMaxSatToSpend = 100_000
	DefaultMaxNoteBytes  = 80
	DefaultServerPort    = 8480
)

// DefaultQuickAmounts are the one-click amounts offered on the send form.
var DefaultQuickAmounts = []string{"0.1", "1", "10", "1000"}

// DefaultTestnet returns the default configuration for OPNet testnet.
func DefaultTestnet() *Config {
	return &Config{
		Network: Testnet,
		DataDir: DefaultDataDir(),
		Provider: ProviderConfig{
			URL:     ParamsFor(Testnet).RPCURL,
			Timeout: 10 * time.Second,
		},
		Bridge: BridgeConfig{
			URL:     "http://127.0.0.1:8490",
			Timeout: 2 * time.Minute,
		},
		Server: ServerConfig{
			Enabled:      true,
			Addr:         "127.0.0.1",
			Port:         DefaultServerPort,
			AllowedIPs:   []string{"127.0.0.1"},
			Metrics:      true,
			PublicOrigin: "http://localhost:5173",
		},
		Tip: TipConfig{
			DefaultAsset:    PillToken.ID,
			DisplayDecimals: 3,
			QuickAmounts:    append([]string(nil), DefaultQuickAmounts...),
			MaxSatToSpend:   DefaultMaxSatToSpend,
			FeeRate:         0,
			MaxNoteBytes:    DefaultMaxNoteBytes,
		},
		Tokens: DefaultTokens(),
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Default returns the default configuration for the given network.
// Only the provider endpoint differs between networks.
func Default(network NetworkType) *Config {
	cfg := DefaultTestnet()
	if KnownNetwork(network) {
		cfg.Network = network
		cfg.Provider.URL = ParamsFor(network).RPCURL
	}
	return cfg
}
