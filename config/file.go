package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration values from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies key/value configuration to a Config struct.
// The same keys are used by the config file and, upper-cased with a TIPJAR_
// prefix, by the environment.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	if strings.HasPrefix(key, "token.") {
		return setTokenValue(cfg, strings.TrimPrefix(key, "token."), value)
	}

	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value

	// Provider
	case "provider.url", "rpc":
		cfg.Provider.URL = value
	case "provider.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Provider.Timeout = d

	// Bridge
	case "bridge.url", "bridge":
		cfg.Bridge.URL = value
	case "bridge.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Bridge.Timeout = d

	// Server
	case "server.enabled", "server":
		cfg.Server.Enabled = parseBool(value)
	case "server.addr":
		cfg.Server.Addr = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	case "server.allowed":
		cfg.Server.AllowedIPs = parseStringList(value)
	case "server.cors":
		cfg.Server.CORSOrigins = parseStringList(value)
	case "server.metrics":
		cfg.Server.Metrics = parseBool(value)
	case "server.origin":
		cfg.Server.PublicOrigin = value

	// Tip
	case "tip.asset":
		cfg.Tip.DefaultAsset = strings.ToUpper(value)
	case "tip.display_decimals":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Tip.DisplayDecimals = n
	case "tip.quick_amounts":
		cfg.Tip.QuickAmounts = parseStringList(value)
	case "tip.max_sat_to_spend":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Tip.MaxSatToSpend = n
	case "tip.fee_rate":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Tip.FeeRate = n
	case "tip.max_note_bytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Tip.MaxNoteBytes = n

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// setTokenValue handles token.<ID>.<field> keys. A new ID adds a token.
func setTokenValue(cfg *Config, rest, value string) error {
	id, field, ok := strings.Cut(rest, ".")
	if !ok || id == "" {
		return fmt.Errorf("expected token.<id>.<field>")
	}
	id = strings.ToUpper(id)

	idx := -1
	for i := range cfg.Tokens {
		if cfg.Tokens[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		cfg.Tokens = append(cfg.Tokens, Token{ID: id, Symbol: id, Name: id})
		idx = len(cfg.Tokens) - 1
	}
	tok := &cfg.Tokens[idx]

	switch field {
	case "address":
		tok.Address = value
	case "decimals":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		tok.Decimals = n
	case "symbol":
		tok.Symbol = value
	case "name":
		tok.Name = value
	default:
		return fmt.Errorf("unknown token field %q", field)
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# Tip Jar Configuration
#
# Every key can also be set through the environment as TIPJAR_<KEY>, with
# dots replaced by underscores (e.g. TIPJAR_PROVIDER_URL).

# Network: regtest, testnet or mainnet
network = ` + string(network) + `

# Data directory (default: ~/.tipjar)
# datadir = ~/.tipjar

# ============================================================================
# Blockchain RPC provider
# ============================================================================

provider.url = ` + ParamsFor(network).RPCURL + `
provider.timeout = 10s

# ============================================================================
# Wallet bridge (signs and broadcasts OP20 transfers)
# ============================================================================

bridge.url = http://127.0.0.1:8490
bridge.timeout = 2m

# ============================================================================
# JSON-RPC server
# ============================================================================

server.enabled = true
server.addr = 127.0.0.1
server.port = 8480
server.allowed = 127.0.0.1
server.metrics = true
# Origin of the web front end, used for shareable jar links
server.origin = http://localhost:5173
# CORS allowed origins ("*" for all)
# server.cors = http://localhost:5173

# ============================================================================
# Tips
# ============================================================================

tip.asset = PILL
tip.display_decimals = 3
tip.quick_amounts = 0.1,1,10,1000
tip.max_sat_to_spend = 100000
tip.fee_rate = 0
tip.max_note_bytes = 80

# Extra OP20 tokens: token.<ID>.address / .decimals / .symbol / .name
# token.ABC.address = 0x...
# token.ABC.decimals = 8

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
