package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TIPJAR_"

// LoadEnv reads TIPJAR_* variables into config keys. Files are loaded with
// godotenv first; missing files are skipped and variables already set in the
// process environment win over file values.
func LoadEnv(files ...string) map[string]string {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
	return envValues(os.Environ())
}

// envValues maps TIPJAR_PROVIDER_URL=... to provider.url=...
// Token keys keep their ID segment: TIPJAR_TOKEN_ABC_ADDRESS -> token.ABC.address.
func envValues(environ []string) map[string]string {
	values := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		if name == "" {
			continue
		}
		values[envKey(name)] = v
	}
	return values
}

// envKey rewrites an underscore-separated env name to a dotted config key.
// Only the first underscore is a separator, so tip_max_sat_to_spend maps to
// tip.max_sat_to_spend.
func envKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "token_"); ok {
		id, field, found := strings.Cut(rest, "_")
		if found {
			return "token." + strings.ToUpper(id) + "." + field
		}
		return "token." + rest
	}
	section, field, found := strings.Cut(name, "_")
	if !found {
		return name
	}
	return section + "." + field
}
