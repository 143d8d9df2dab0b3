// Package config defines the server configuration and its loading order:
// defaults, then an optional TOML file, then MULTIRPG_ environment
// variables.
package config

import (
	"time"
)

// Config is the full server configuration
type Config struct {
	LogLevel string `koanf:"log_level"`

	Game     GameConfig      `koanf:"game"`
	Web      WebConfig       `koanf:"web"`
	Redis    RedisConfig     `koanf:"redis"`
	Dispatch DispatchConfig  `koanf:"dispatch"`
	Networks []NetworkConfig `koanf:"networks"`
}

// GameConfig tunes the game engine
type GameConfig struct {
	// SelfClock is the tick interval in seconds
	SelfClock int `koanf:"self_clock"`
	// LimitPen caps any single presence penalty in seconds; zero means
	// uncapped
	LimitPen int `koanf:"limit_pen"`
	// QuestDelay is how long after startup the first quest may begin
	QuestDelay time.Duration `koanf:"quest_delay"`
}

// WebConfig tunes the HTTP API server
type WebConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// RedisConfig selects and tunes the durable mirror
type RedisConfig struct {
	// Enabled switches the mirror from in-memory to redis
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
}

// DispatchConfig tunes outbound message delivery
type DispatchConfig struct {
	// MinDelay is the minimum gap between sends per connection
	MinDelay time.Duration `koanf:"min_delay"`
}

// NetworkConfig describes one chat network to join. The engine itself
// consumes Name and Channel; the remaining fields are handed to the
// connection layer verbatim.
type NetworkConfig struct {
	Name    string `koanf:"name"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	Channel string `koanf:"channel"`
	Nick    string `koanf:"nick"`
	UseSSL  bool   `koanf:"use_ssl"`

	NickservPass string `koanf:"nickserv_pass"`
	ServerPass   string `koanf:"server_pass"`
}

// Default returns the standard configuration
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Game: GameConfig{
			SelfClock:  5,
			LimitPen:   0,
			QuestDelay: time.Hour,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Redis: RedisConfig{
			Enabled: false,
			URL:     "redis://localhost:6379",
		},
		Dispatch: DispatchConfig{
			MinDelay: 500 * time.Millisecond,
		},
		Networks: []NetworkConfig{
			{
				Name:    "libera",
				Host:    "irc.libera.chat",
				Port:    6697,
				Channel: "#multirpg",
				Nick:    "multirpg",
				UseSSL:  true,
			},
		},
	}
}
