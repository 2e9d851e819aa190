package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenAddr = "0x" + "ab" + "000000000000000000000000000000000000000000000000000000000000cd"

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tipjar.conf")
	content := `# comment
network = mainnet

provider.url = "https://example.org/rpc"
server.cors = 'http://a.test, http://b.test'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"network":      "mainnet",
		"provider.url": "https://example.org/rpc",
		"server.cors":  "http://a.test, http://b.test",
	}, values)
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tipjar.conf")
	require.NoError(t, os.WriteFile(path, []byte("network = testnet\njunk\n"), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "line 2")
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultTestnet()
	err := ApplyFileConfig(cfg, map[string]string{
		"network":              "MAINNET",
		"provider.timeout":     "3s",
		"bridge":               "http://127.0.0.1:9000",
		"server.enabled":       "no",
		"server.port":          "9999",
		"server.allowed":       "10.0.0.0/8, 127.0.0.1",
		"tip.asset":            "moto",
		"tip.display_decimals": "5",
		"tip.quick_amounts":    "1,2",
		"tip.max_sat_to_spend": "5000",
		"tip.max_note_bytes":   "40",
		"log.json":             "on",
		"some.unknown":         "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, Mainnet, cfg.Network)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Bridge.URL)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.AllowedIPs)
	assert.Equal(t, "MOTO", cfg.Tip.DefaultAsset)
	assert.Equal(t, 5, cfg.Tip.DisplayDecimals)
	assert.Equal(t, []string{"1", "2"}, cfg.Tip.QuickAmounts)
	assert.Equal(t, uint64(5000), cfg.Tip.MaxSatToSpend)
	assert.Equal(t, 40, cfg.Tip.MaxNoteBytes)
	assert.True(t, cfg.Log.JSON)
}

func TestApplyFileConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"server.port":          "eighty",
		"provider.timeout":     "soon",
		"tip.display_decimals": "x",
		"token.ABC":            "0x00",
		"token.ABC.color":      "red",
		"token.ABC.decimals":   "eight",
	}
	for key, value := range tests {
		err := ApplyFileConfig(DefaultTestnet(), map[string]string{key: value})
		assert.Error(t, err, key)
		assert.ErrorContains(t, err, key)
	}
}

func TestApplyFileConfig_Tokens(t *testing.T) {
	cfg := DefaultTestnet()
	require.NoError(t, ApplyFileConfig(cfg, map[string]string{
		"token.abc.address":  testTokenAddr,
		"token.abc.decimals": "18",
		"token.pill.name":    "Orange Pill",
	}))

	abc, ok := cfg.Token("ABC")
	require.True(t, ok)
	assert.Equal(t, Token{ID: "ABC", Symbol: "ABC", Name: "ABC", Address: testTokenAddr, Decimals: 18}, abc)

	pill, ok := cfg.Token("PILL")
	require.True(t, ok)
	assert.Equal(t, "Orange Pill", pill.Name)
	assert.Equal(t, PillToken.Address, pill.Address)
	assert.Len(t, cfg.Tokens, 3)
}

func TestEnvValues(t *testing.T) {
	values := envValues([]string{
		"HOME=/root",
		"TIPJAR_NETWORK=mainnet",
		"TIPJAR_PROVIDER_URL=https://example.org",
		"TIPJAR_TIP_MAX_SAT_TO_SPEND=42",
		"TIPJAR_TOKEN_abc_ADDRESS=0x01",
		"TIPJAR_=empty",
	})
	assert.Equal(t, map[string]string{
		"network":              "mainnet",
		"provider.url":         "https://example.org",
		"tip.max_sat_to_spend": "42",
		"token.ABC.address":    "0x01",
	}, values)
}

func TestLoadEnv_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TIPJAR_LOG_LEVEL=debug\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TIPJAR_LOG_LEVEL") })

	values := LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "debug", values["log.level"])
}

func TestValidate_Defaults(t *testing.T) {
	for _, n := range []NetworkType{Regtest, Testnet, Mainnet} {
		require.NoError(t, Validate(Default(n)), n)
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := DefaultTestnet()
	cfg.Tip.DefaultAsset = ""
	cfg.Tokens = append(cfg.Tokens, Token{ID: " abc ", Address: "0xAB" + testTokenAddr[4:], Decimals: 18})

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "PILL", cfg.Tip.DefaultAsset)
	assert.Equal(t, "ABC", cfg.Tokens[2].ID)
	assert.Equal(t, testTokenAddr, cfg.Tokens[2].Address)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"network", func(c *Config) { c.Network = "signet" }, "network"},
		{"provider url", func(c *Config) { c.Provider.URL = "testnet.opnet.org" }, "provider.url"},
		{"provider scheme", func(c *Config) { c.Provider.URL = "ws://testnet.opnet.org" }, "provider.url"},
		{"provider timeout", func(c *Config) { c.Provider.Timeout = 0 }, "provider.timeout"},
		{"bridge url", func(c *Config) { c.Bridge.URL = "" }, "bridge.url"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"origin", func(c *Config) { c.Server.PublicOrigin = "/relative" }, "server.origin"},
		{"display decimals", func(c *Config) { c.Tip.DisplayDecimals = 19 }, "tip.display_decimals"},
		{"note bytes", func(c *Config) { c.Tip.MaxNoteBytes = -1 }, "tip.max_note_bytes"},
		{"quick amount", func(c *Config) { c.Tip.QuickAmounts = []string{"1", "0"} }, "tip.quick_amounts[1]"},
		{"reserved id", func(c *Config) { c.Tokens[0].ID = "btc" }, "reserved"},
		{"duplicate id", func(c *Config) { c.Tokens[1].ID = "PILL" }, "duplicate"},
		{"short address", func(c *Config) { c.Tokens[0].Address = "0xabcd" }, "32-byte"},
		{"no 0x", func(c *Config) { c.Tokens[0].Address = testTokenAddr[2:] }, "32-byte"},
		{"31 bytes", func(c *Config) { c.Tokens[0].Address = testTokenAddr[:len(testTokenAddr)-2] }, "32-byte"},
		{"33 bytes", func(c *Config) { c.Tokens[0].Address = testTokenAddr + "ef" }, "32-byte"},
		{"token decimals", func(c *Config) { c.Tokens[0].Decimals = 30 }, "decimals"},
		{"unknown asset", func(c *Config) { c.Tip.DefaultAsset = "DOGE" }, "tip.asset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTestnet()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.Error(t, Validate(nil))
}

func TestValidate_CustomAsset(t *testing.T) {
	cfg := DefaultTestnet()
	cfg.Tip.DefaultAsset = "custom"
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "CUSTOM", cfg.Tip.DefaultAsset)
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--network=mainnet", "--server=false", "--server-port", "9000", "--asset", "moto", "--log-json"})
	require.NoError(t, err)
	assert.Equal(t, "mainnet", f.Network)
	assert.True(t, f.SetServer)
	assert.False(t, f.Server)
	assert.False(t, f.SetMetrics)
	assert.True(t, f.SetLogJSON)

	cfg := DefaultTestnet()
	ApplyFlags(cfg, f)
	assert.Equal(t, Mainnet, cfg.Network)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "MOTO", cfg.Tip.DefaultAsset)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.Server.Metrics, "unset bool flags keep config values")
}

func TestParseFlags_Positional(t *testing.T) {
	_, err := ParseFlags([]string{"extra", "--network=mainnet"})
	assert.Error(t, err)
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TIPJAR_TIP_ASSET", "moto")
	t.Setenv("TIPJAR_TIP_MAX_NOTE_BYTES", "20")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tipjar.conf"),
		[]byte("network = mainnet\ntip.max_note_bytes = 10\nserver.port = 8001\n"), 0644))

	cfg, flags, err := Load([]string{"--datadir", dir, "--server-port", "8002"})
	require.NoError(t, err)
	require.NotNil(t, flags)

	assert.Equal(t, Mainnet, cfg.Network, "file")
	assert.Equal(t, 20, cfg.Tip.MaxNoteBytes, "env over file")
	assert.Equal(t, "MOTO", cfg.Tip.DefaultAsset, "env")
	assert.Equal(t, 8002, cfg.Server.Port, "flags over file")
}

func TestLoad_Help(t *testing.T) {
	cfg, flags, err := Load([]string{"--help"})
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.True(t, flags.Help)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tipjar.conf"), []byte("server.port = 99999\n"), 0644))

	_, err := LoadFromFile(dir, Testnet)
	assert.ErrorContains(t, err, "server.port")
}

func TestEnsureDataDirs(t *testing.T) {
	cfg := DefaultTestnet()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "tipjar")
	require.NoError(t, EnsureDataDirs(cfg))

	_, err := os.Stat(cfg.LogsDir())
	assert.NoError(t, err)

	values, err := LoadFile(cfg.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, "testnet", values["network"])

	// The written default must load back into a valid config.
	fresh := DefaultTestnet()
	require.NoError(t, ApplyFileConfig(fresh, values))
	assert.NoError(t, Validate(fresh))
}

func TestExplorerTxURL(t *testing.T) {
	assert.Equal(t, "https://opscan.org/transactions/abc?network=op_testnet", ParamsFor(Testnet).ExplorerTxURL("abc"))
	assert.Equal(t, Testnet, ParamsFor("bogus").Name)
}
