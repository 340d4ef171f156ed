// Package config resolves the AgentWarden endpoint from an optional YAML
// file, environment variables, and built-in defaults. Explicit client
// options always win over anything resolved here.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for local auto-discovery.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 6777
	DefaultGRPCPort = 6778
)

// Config holds the resolved connection settings.
type Config struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	// GRPCPort mirrors the server's discovery contract. The SDK speaks HTTP;
	// the high-throughput gRPC transport is a server-side offering and is not
	// implemented here.
	GRPCPort int `mapstructure:"grpc_port"`

	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads agentwarden.yaml (from . or ./configs) if present, then applies
// AGENTWARDEN_* environment overrides on top of the defaults. A missing file
// is not an error; a malformed one is.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("agentwarden")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// AGENTWARDEN_HOST overrides host, AGENTWARDEN_GRPC_PORT overrides
	// grpc_port, and so on.
	v.SetEnvPrefix("agentwarden")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("grpc_port", DefaultGRPCPort)
	v.SetDefault("api_key", "")
	v.SetDefault("timeout", 30*time.Second)
}
