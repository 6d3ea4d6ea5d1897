// Package config loads the agentscene configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/agentscene/internal/logging"
)

// Transition modes.
const (
	ModeQueue  = "queue"
	ModeReject = "reject"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config represents the application configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Editor      string            `yaml:"editor"`
	PresetsDir  string            `yaml:"presets_dir"`
	HTTP        HTTPConfig        `yaml:"http"`
	MCP         MCPConfig         `yaml:"mcp"`
	Redis       RedisConfig       `yaml:"redis"`
	Transitions TransitionsConfig `yaml:"transitions"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := validation.Validate(c.Editor, validation.Required); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.MCP.Validate(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Transitions.Validate(); err != nil {
		return fmt.Errorf("transitions: %w", err)
	}
	return nil
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR")),
		validation.Field(&c.Format, validation.In(logging.FormatText, logging.FormatJSON)),
	)
}

// HTTPConfig holds the HTTP API settings. An empty Token disables auth.
type HTTPConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
	)
}

// MCPConfig holds the MCP server settings.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
	BaseURL   string `yaml:"base_url"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Transport, validation.Required, validation.In(TransportStdio, TransportSSE)),
		validation.Field(&c.Addr, validation.When(c.Transport == TransportSSE, validation.Required)),
	)
}

// RedisConfig enables distributed scene locks and the event journal when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether a Redis server is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
	)
}

// TransitionsConfig controls what happens when a scene load arrives during another.
type TransitionsConfig struct {
	Mode    string        `yaml:"mode"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// Reject reports whether concurrent loads are refused.
func (c *TransitionsConfig) Reject() bool {
	return c.Mode == ModeReject
}

// Validate validates the transitions configuration.
func (c *TransitionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeQueue, ModeReject)),
		validation.Field(&c.LockTTL, validation.Required, validation.Min(time.Second)),
	)
}

// NewDefault returns a Config with default values.
func NewDefault() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Editor: "architecture",
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		MCP: MCPConfig{
			Transport: TransportStdio,
			Addr:      ":8081",
			BaseURL:   "http://localhost:8081",
		},
		Redis: RedisConfig{
			Prefix: "agentscene:",
		},
		Transitions: TransitionsConfig{
			Mode:    ModeQueue,
			LockTTL: 30 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults, expanding environment variables first.
// An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := NewDefault()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
