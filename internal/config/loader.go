package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (Default())
//  2. TOML file at path, if path is non-empty
//  3. environment variables with the MULTIRPG_ prefix, where a double
//     underscore separates nesting: MULTIRPG_GAME__SELF_CLOCK
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("MULTIRPG_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "MULTIRPG_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration with the file path taken from
// MULTIRPG_CONFIG
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("MULTIRPG_CONFIG"))
}

func (c *Config) validate() error {
	if c.Game.SelfClock <= 0 {
		return errors.New("game.self_clock must be positive")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.New("web.port must be a valid port")
	}
	if len(c.Networks) == 0 {
		return errors.New("at least one network must be configured")
	}
	for _, n := range c.Networks {
		if n.Name == "" || !strings.HasPrefix(n.Channel, "#") {
			return fmt.Errorf("network %q must have a name and a #channel", n.Name)
		}
		if n.Host == "" {
			return fmt.Errorf("network %q must have a host", n.Name)
		}
		if n.Port <= 0 || n.Port > 65535 {
			return fmt.Errorf("network %q must have a valid port", n.Name)
		}
	}
	return nil
}
