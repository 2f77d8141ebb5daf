// Package config loads server configuration from defaults, an optional
// file, environment variables, and command-line key=value pairs.
// Grounded on original_source/http/src/server/mod.rs's load_settings/
// get_arguments plus the file+env loading pattern shown in
// go-server-3/internal/config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the listener settings the engine needs to start.
type ServerConfig struct {
	Hostname string `mapstructure:"hostname"`
	Port     uint16 `mapstructure:"port"`
}

// LoggingConfig controls zap logger construction.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
	Endpoint   string `mapstructure:"endpoint"`
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Load reads defaults, an optional "coophttp" config file (current
// directory or ./config), and COOPHTTP_-prefixed environment variables,
// the same three-tier precedence go-server-3/internal/config.Load uses.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.hostname", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9095")
	v.SetDefault("metrics.endpoint", "/metrics")

	v.SetConfigName("coophttp")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("COOPHTTP")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// ApplyArgs overlays the "key=value" command-line arguments (as in
// os.Args[1:]) onto cfg, recognizing "port" and "hostname" only.
// Grounded on get_arguments in original_source/http/src/server/mod.rs,
// which walks std::env::args() in full (including argv[0], the binary
// path) and panics the instant it sees a key that is not "port" or
// "hostname" — on every real invocation argv[0] itself has no "=" in it,
// so input[0].to_ascii_lowercase() is the whole binary path, which never
// matches either key and panics on line one before a single real flag is
// read. Fixed here by walking only os.Args[1:], the actual argument
// list, preserving everything else (lower-cased key, fatal on unknown
// key) exactly.
func ApplyArgs(cfg *Config, args []string) {
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		key := strings.ToLower(parts[0])

		switch key {
		case "port":
			if len(parts) < 2 {
				fmt.Fprintf(os.Stderr, "missing value for command line argument: %s!\n", key)
				os.Exit(1)
			}
			n, err := strconv.ParseUint(parts[1], 10, 16)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", parts[1], err)
				os.Exit(1)
			}
			cfg.Server.Port = uint16(n)
		case "hostname":
			if len(parts) < 2 {
				fmt.Fprintf(os.Stderr, "missing value for command line argument: %s!\n", key)
				os.Exit(1)
			}
			cfg.Server.Hostname = parts[1]
		default:
			fmt.Fprintf(os.Stderr, "Unknown command line argument: %s!\n", key)
			os.Exit(1)
		}
	}
}
