package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the server and the batch runner.
// Zero values mean "unspecified" and are replaced by Default() in WithDefaults.
type Config struct {
	Addr                  string   `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel              string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat             string   `json:"log_format" yaml:"log_format" toml:"log_format"` // "console" or "json"
	DefaultStepIntervalMs int      `json:"default_step_interval_ms" yaml:"default_step_interval_ms" toml:"default_step_interval_ms"`
	MaxTrack              int      `json:"max_track" yaml:"max_track" toml:"max_track"`
	RecordPath            string   `json:"record_path" yaml:"record_path" toml:"record_path"` // JSON lines run history, empty = keep in memory
	AllowedOrigins        []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	MaxBodyBytes          int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Addr:                  ":8080",
		LogLevel:              "info",
		LogFormat:             "console",
		DefaultStepIntervalMs: 1000,
		MaxTrack:              199,
		AllowedOrigins:        []string{"*"},
		MaxBodyBytes:          1 << 20,
	}
}

// WithDefaults fills unspecified fields from Default()
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.DefaultStepIntervalMs == 0 {
		c.DefaultStepIntervalMs = d.DefaultStepIntervalMs
	}
	if c.MaxTrack == 0 {
		c.MaxTrack = d.MaxTrack
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = d.AllowedOrigins
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}

// Validate checks a config after defaults are applied
func (c Config) Validate() error {
	if c.DefaultStepIntervalMs < 1 {
		return fmt.Errorf("default_step_interval_ms must be >= 1")
	}
	if c.MaxTrack < 1 {
		return fmt.Errorf("max_track must be >= 1")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be 'console' or 'json', got %q", c.LogFormat)
	}
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(path, b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode unmarshals b into v using the decoder matching path's extension
func Decode(path string, b []byte, v interface{}) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, v)
	case ".json":
		return json.Unmarshal(b, v)
	case ".toml":
		return toml.Unmarshal(b, v)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}
