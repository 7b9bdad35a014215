package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tombowditch/ptpb/client"
)

const (
	// Client defaults
	DefaultBaseURL = client.DefaultBaseURL
	EnvPrefix      = "PTPB"
	ConfigDir      = "ptpb"
	ConfigFile     = "config.yml"

	// Reference server defaults
	ServerEnvPrefix = "PB"
	HTTPAddr        = "127.0.0.1:10002"
	RedisPassword   = ""
	RedisDB         = 0

	// Paste settings
	MaxPayloadSize = 5_000_000 // 5MB

	// One create or update per client IP per interval, Redis only
	WriteRateInterval = 5 * time.Second

	// ID lengths
	ShortIDLength = 4
	LongIDLength  = 24
)

// Config holds CLI settings that may come from a config file or the
// environment. Command-line flags override them.
type Config struct {
	BaseURL string  `mapstructure:"base_url"`
	Private bool    `mapstructure:"private"`
	Sunset  float64 `mapstructure:"sunset"`
}

// ServerConfig configures the reference pb server.
type ServerConfig struct {
	HTTPAddr      string `mapstructure:"http_addr"`
	PublicURL     string `mapstructure:"public_url"`
	RedisURI      string `mapstructure:"redis_uri"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/ptpb/config.yml, or "" when
// no user config directory is known.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ConfigDir, ConfigFile)
}

// Load reads the CLI configuration. Values come from defaults, then the
// config file, then PTPB_* environment variables. An explicit file must
// exist; the default one is optional.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("private", false)
	v.SetDefault("sunset", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	} else if path := DefaultConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url cannot be empty")
	}
	return &cfg, nil
}

// LoadServer reads the reference server configuration from PB_* variables
// and REDIS_URI. An empty RedisURI selects the in-memory store; an empty
// PublicURL makes the server use each request's Host.
func LoadServer() (*ServerConfig, error) {
	v := viper.New()
	v.SetDefault("http_addr", HTTPAddr)
	v.SetDefault("public_url", "")
	v.SetDefault("redis_uri", "")
	v.SetDefault("redis_password", RedisPassword)
	v.SetDefault("redis_db", RedisDB)

	v.SetEnvPrefix(ServerEnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("redis_uri", "REDIS_URI")

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
