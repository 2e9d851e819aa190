// Package config handles application configuration.
//
// Configuration is layered, lowest precedence first:
//   - Built-in defaults per network
//   - The tipjar.conf file in the data directory
//   - TIPJAR_* environment variables (a .env file is loaded if present)
//   - Command-line flags
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies the OPNet network the tip jar talks to.
type NetworkType string

const (
	Regtest NetworkType = "regtest"
	Testnet NetworkType = "testnet"
	Mainnet NetworkType = "mainnet"
)

// Config holds the tip jar runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Blockchain RPC provider
	Provider ProviderConfig

	// Wallet bridge (wallet connection + OP20 binding)
	Bridge BridgeConfig

	// JSON-RPC server for the web front end and tipjar-cli
	Server ServerConfig

	// Tip form behaviour
	Tip TipConfig

	// Tokens offered besides a custom OP20 contract
	Tokens []Token

	// Logging
	Log LogConfig
}

// ProviderConfig holds the OPNet JSON-RPC provider settings.
type ProviderConfig struct {
	URL     string        `conf:"provider.url"`
	Timeout time.Duration `conf:"provider.timeout"`
}

// BridgeConfig holds the wallet bridge settings.
type BridgeConfig struct {
	URL     string        `conf:"bridge.url"`
	Timeout time.Duration `conf:"bridge.timeout"`
}

// ServerConfig holds JSON-RPC server settings.
type ServerConfig struct {
	Enabled     bool     `conf:"server.enabled"`
	Addr        string   `conf:"server.addr"`
	Port        int      `conf:"server.port"`
	AllowedIPs  []string `conf:"server.allowed"`
	CORSOrigins []string `conf:"server.cors"` // Allowed CORS origins ("*" = all).
	Metrics     bool     `conf:"server.metrics"`

	// PublicOrigin is the web front end origin used to build jar links.
	PublicOrigin string `conf:"server.origin"`
}

// TipConfig holds settings for building and sending tips.
type TipConfig struct {
	DefaultAsset    string   `conf:"tip.asset"`
	DisplayDecimals int      `conf:"tip.display_decimals"`
	QuickAmounts    []string `conf:"tip.quick_amounts"`
	MaxSatToSpend   uint64   `conf:"tip.max_sat_to_spend"`
	FeeRate         uint64   `conf:"tip.fee_rate"`
	MaxNoteBytes    int      `conf:"tip.max_note_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.tipjar
//	macOS:   ~/Library/Application Support/TipJar
//	Windows: %APPDATA%\TipJar
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tipjar"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "TipJar")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "TipJar")
		}
		return filepath.Join(home, "AppData", "Roaming", "TipJar")
	default:
		return filepath.Join(home, ".tipjar")
	}
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "tipjar.conf")
}

// EnvFile returns the optional .env file path inside the data directory.
func (c *Config) EnvFile() string {
	return filepath.Join(c.DataDir, ".env")
}

// Params returns the static parameters of the configured network.
func (c *Config) Params() NetworkParams {
	return ParamsFor(c.Network)
}

// Token returns the configured token with the given ID.
func (c *Config) Token(id string) (Token, bool) {
	for _, t := range c.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}
