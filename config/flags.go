package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Version is reported by --version.
const Version = "0.1.0"

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Endpoints
	ProviderURL string
	BridgeURL   string

	// Server
	Server        bool
	ServerAddr    string
	ServerPort    int
	ServerAllowed string
	ServerCORS    string
	ServerOrigin  string
	Metrics       bool

	// Tip
	Asset string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetServer  bool
	SetMetrics bool
	SetLogJSON bool
}

// ParseFlags parses command-line flags from args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("tipjard", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (regtest, testnet or mainnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Endpoints
	fs.StringVar(&f.ProviderURL, "provider", "", "OPNet JSON-RPC provider URL")
	fs.StringVar(&f.BridgeURL, "bridge", "", "Wallet bridge URL")

	// Server
	fs.BoolVar(&f.Server, "server", true, "Enable JSON-RPC server")
	fs.StringVar(&f.ServerAddr, "server-addr", "", "Server listen address")
	fs.IntVar(&f.ServerPort, "server-port", 0, "Server listen port")
	fs.StringVar(&f.ServerAllowed, "server-allowed", "", "Allowed IPs for the server (comma-separated)")
	fs.StringVar(&f.ServerCORS, "server-cors", "", "Allowed CORS origins (comma-separated)")
	fs.StringVar(&f.ServerOrigin, "origin", "", "Public web origin used for jar links")
	fs.BoolVar(&f.Metrics, "metrics", true, "Expose Prometheus metrics on /metrics")

	// Tip
	fs.StringVar(&f.Asset, "asset", "", "Default tip asset (PILL, MOTO, CUSTOM)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.SetOutput(os.Stderr)
	fs.Usage = PrintUsage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.SetServer = isFlagSet(fs, "server")
	f.SetMetrics = isFlagSet(fs, "metrics")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Endpoints
	if f.ProviderURL != "" {
		cfg.Provider.URL = f.ProviderURL
	}
	if f.BridgeURL != "" {
		cfg.Bridge.URL = f.BridgeURL
	}

	// Server
	if f.SetServer {
		cfg.Server.Enabled = f.Server
	}
	if f.ServerAddr != "" {
		cfg.Server.Addr = f.ServerAddr
	}
	if f.ServerPort != 0 {
		cfg.Server.Port = f.ServerPort
	}
	if f.ServerAllowed != "" {
		cfg.Server.AllowedIPs = parseStringList(f.ServerAllowed)
	}
	if f.ServerCORS != "" {
		cfg.Server.CORSOrigins = parseStringList(f.ServerCORS)
	}
	if f.ServerOrigin != "" {
		cfg.Server.PublicOrigin = f.ServerOrigin
	}
	if f.SetMetrics {
		cfg.Server.Metrics = f.Metrics
	}

	// Tip
	if f.Asset != "" {
		cfg.Tip.DefaultAsset = strings.ToUpper(f.Asset)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the daemon flag reference to stderr.
func PrintUsage() {
	usage := `Tip Jar - send OPNet tips in BTC, PILL, MOTO or any OP20 token

Usage:
  tipjard [options]
  tipjard --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network type: regtest, testnet (default) or mainnet
  --datadir       Data directory (default: ~/.tipjar)
  --config, -c    Config file path (default: <datadir>/tipjar.conf)

Endpoint Options:
  --provider      OPNet JSON-RPC provider URL (default per network)
  --bridge        Wallet bridge URL (default: http://127.0.0.1:8490)

Server Options:
  --server          Enable JSON-RPC server (default: true)
  --server-addr     Listen address (default: 127.0.0.1)
  --server-port     Listen port (default: 8480)
  --server-allowed  Allowed IPs (comma-separated)
  --server-cors     Allowed CORS origins (comma-separated)
  --origin          Public web origin for jar links
  --metrics         Expose Prometheus metrics (default: true)

Tip Options:
  --asset         Default tip asset: PILL (default), MOTO or CUSTOM

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Environment:
  Every config key can be set as TIPJAR_<SECTION>_<KEY>, for example
  TIPJAR_PROVIDER_URL or TIPJAR_TIP_ASSET. A .env file in the working
  directory or the data directory is loaded first.

Examples:
  # Serve the testnet tip jar
  tipjard

  # Regtest with a local bridge
  tipjard --network=regtest --bridge=http://127.0.0.1:9000
`
	fmt.Fprint(os.Stderr, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Environment (.env files, then TIPJAR_* variables)
// 5. Command-line flags
//
// Help and version requests are returned through Flags; the caller decides
// how to exit.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	network := Testnet
	if flags.Network != "" {
		network = NetworkType(strings.ToLower(flags.Network))
	}

	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	if err := loadLayers(cfg, configPath); err != nil {
		return nil, nil, err
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// LoadFromFile loads config from defaults, the conf file and the environment
// (no CLI flags).
func LoadFromFile(dataDir string, network NetworkType) (*Config, error) {
	cfg := Default(network)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}
	if err := loadLayers(cfg, cfg.ConfigFile()); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadLayers(cfg *Config, configPath string) error {
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return fmt.Errorf("applying config file: %w", err)
	}

	envValues := LoadEnv(".env", cfg.EnvFile())
	if err := ApplyFileConfig(cfg, envValues); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
