// Package config loads application settings from defaults, an optional YAML file,
// GENIE_* environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "genie.yaml"

// EnvPrefix prefixes every environment override, e.g. GENIE_HTTP_ADDR.
const EnvPrefix = "GENIE"

// Config is the application configuration shared by every command.
type Config struct {
	// Script is a YAML/JSON file or a loam directory. Empty selects the built-in script.
	Script       string  `mapstructure:"script"`
	LogLevel     string  `mapstructure:"log_level"`
	LatencyScale float64 `mapstructure:"latency_scale"`

	HTTP  HTTPConfig  `mapstructure:"http"`
	Redis RedisConfig `mapstructure:"redis"`
	MCP   MCPConfig   `mapstructure:"mcp"`
}

// HTTPConfig configures the HTTP adapter.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables the Redis publisher when Addr is set.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// MCPConfig configures the MCP adapter. Port 0 serves over stdio.
type MCPConfig struct {
	Port int `mapstructure:"port"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		LogLevel:     "info",
		LatencyScale: 1,
		HTTP:         HTTPConfig{Addr: ":8080"},
		Redis:        RedisConfig{ChannelPrefix: "genie:session:"},
	}
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"script":         "script",
	"log-level":      "log_level",
	"latency-scale":  "latency_scale",
	"addr":           "http.addr",
	"redis-addr":     "redis.addr",
	"redis-password": "redis.password",
	"redis-db":       "redis.db",
	"redis-prefix":   "redis.channel_prefix",
	"port":           "mcp.port",
}

// Load builds the configuration. An empty path falls back to DefaultFile when it exists.
// Flags that are present in the set and were changed take precedence over everything else.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("script", cfg.Script)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("latency_scale", cfg.LatencyScale)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.channel_prefix", cfg.Redis.ChannelPrefix)
	v.SetDefault("mcp.port", cfg.MCP.Port)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can run with.
func (c Config) Validate() error {
	if c.LatencyScale < 0 {
		return fmt.Errorf("latency_scale must not be negative, got %v", c.LatencyScale)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MCP.Port < 0 {
		return fmt.Errorf("mcp.port must not be negative, got %d", c.MCP.Port)
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
