// Package config loads nescient's CLI-facing configuration: the default
// packing triple, PBKDF2 iteration count, chunk/block sizing, cache backend
// selection, and optional metrics listen address. It layers flags over
// environment variables (prefixed NESCIENT_) over an optional config file,
// the same precedence order the example pack's viper-based tools use.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aarant/nescient/internal/crypto"
)

// Config holds resolved settings for a single CLI invocation.
type Config struct {
	// Triple is the default pack algorithm+mode+auth combination, used when
	// the caller does not pass -m explicitly.
	Triple string `mapstructure:"triple"`

	// PBKDF2Iterations is loaded from configuration but no command reads
	// it: key derivation always uses the fixed crypto.PBKDF2Iterations.
	PBKDF2Iterations int `mapstructure:"pbkdf2_iterations"`

	// ChunkSize is loaded from configuration but no command reads it: the
	// random-access reader always works in fixed 64-byte ChaCha blocks.
	ChunkSize int64 `mapstructure:"chunk_size"`

	// CacheBackend selects the header-metadata cache used by the info
	// command's bulk-scan path: "memory" or "sqlite".
	CacheBackend string `mapstructure:"cache_backend"`

	// CachePath is the sqlite database path when CacheBackend is "sqlite".
	CachePath string `mapstructure:"cache_path"`

	// MetricsAddr, if non-empty, is the listen address for the Prometheus
	// /metrics endpoint. Empty disables the metrics server.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

const envPrefix = "NESCIENT"

// defaults mirror the root package's Default triple, duplicated here (not
// imported) because config must not depend on the root package, which
// itself may depend on config-derived settings in the CLI layer. The
// iteration count is taken from internal/crypto directly.
var defaults = map[string]any{
	"triple":            "chacha-stm-sha",
	"pbkdf2_iterations": crypto.PBKDF2Iterations,
	"chunk_size":        int64(64),
	"cache_backend":     "memory",
	"cache_path":        "",
	"metrics_addr":      "",
}

// Load builds a Config from (in increasing precedence) built-in defaults, an
// optional config file, NESCIENT_-prefixed environment variables, and flags
// already registered on fs. configFile may be empty, in which case Load
// searches for "nescient.yaml" in the current directory and $HOME, ignoring
// a missing file.
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("nescient")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	if fs != nil {
		for key, flagName := range flagNames {
			if f := fs.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: binding flag %s: %w", flagName, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// flagNames maps each mapstructure key to the cobra-style dashed flag name
// RegisterFlags registers it under.
var flagNames = map[string]string{
	"triple":            "triple",
	"pbkdf2_iterations": "pbkdf2-iterations",
	"chunk_size":        "chunk-size",
	"cache_backend":     "cache-backend",
	"cache_path":        "cache-path",
	"metrics_addr":      "metrics-addr",
}

// RegisterFlags adds the flags Load knows how to bind to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("triple", defaults["triple"].(string), "default pack algorithm-mode-auth triple")
	fs.Int("pbkdf2-iterations", defaults["pbkdf2_iterations"].(int), "PBKDF2 iteration count")
	fs.Int64("chunk-size", defaults["chunk_size"].(int64), "random-access block size in bytes")
	fs.String("cache-backend", defaults["cache_backend"].(string), "header cache backend: memory or sqlite")
	fs.String("cache-path", defaults["cache_path"].(string), "sqlite cache database path")
	fs.String("metrics-addr", defaults["metrics_addr"].(string), "Prometheus metrics listen address, empty to disable")
}
