// Package config loads runtime configuration for the bookvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via the --config flag.
//  3. Command-line flags, applied by the CLI layer on top of the result.
//
// # JSON schema
//
//	{
//	  "db_path": "books.db",
//	  "key_mode": "passphrase",
//	  "verbose": false
//	}
package config

// Key derivation modes accepted by the "key_mode" setting.
const (
	KeyModePassphrase = "passphrase"
	KeyModeRaw        = "raw"
)

// Config holds runtime settings for the bookvault CLI.
//
// Fields:
//   - DBPath: location of the encrypted catalog file.
//   - KeyMode: how the passphrase is turned into the cipher key,
//     "passphrase" (engine-side KDF) or "raw" (argon2id with a sidecar salt).
//   - Verbose: enables debug-level logging on stderr.
type Config struct {
	DBPath  string
	KeyMode string
	Verbose bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "books.db"
	c.KeyMode = KeyModePassphrase
	c.Verbose = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file at configPath (if non-empty). Flag overrides are applied later
// by the caller, so later sources take precedence over earlier ones.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}
