package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds the environment variables that override config.yaml
// values. Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	Host      *string `env:"MCPWEB_HOST"`
	Port      *int    `env:"MCPWEB_PORT"`
	Transport *string `env:"MCPWEB_TRANSPORT"`
	Scheme    *string `env:"MCPWEB_SCHEME"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func applyEnvOverrides(config Config) (Config, error) {
	var raw envOverrides
	if err := ParseEnv(&raw); err != nil {
		return Config{}, err
	}

	if raw.Host != nil {
		config.Gateway.Host = *raw.Host
	}
	if raw.Port != nil {
		config.Gateway.Port = *raw.Port
	}
	if raw.Transport != nil {
		config.Gateway.Transport = *raw.Transport
	}
	if raw.Scheme != nil {
		config.Gateway.Scheme = *raw.Scheme
	}
	return config, nil
}
