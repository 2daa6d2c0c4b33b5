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

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr"`
	RuntimeURL string `json:"runtime_url" yaml:"runtime_url" toml:"runtime_url"`
	Model      string `json:"model" yaml:"model" toml:"model"`

	// Telemetry sampling.
	SampleIntervalSec int `json:"sample_interval_sec" yaml:"sample_interval_sec" toml:"sample_interval_sec"`
	HistorySize       int `json:"history_size" yaml:"history_size" toml:"history_size"`

	// Switch state machine.
	SwitchPollSec     int `json:"switch_poll_sec" yaml:"switch_poll_sec" toml:"switch_poll_sec"`
	SwitchMaxAttempts int `json:"switch_max_attempts" yaml:"switch_max_attempts" toml:"switch_max_attempts"`

	// Keep-alive loop.
	KeepalivePingSec    int `json:"keepalive_ping_sec" yaml:"keepalive_ping_sec" toml:"keepalive_ping_sec"`
	KeepaliveRetries    int `json:"keepalive_retries" yaml:"keepalive_retries" toml:"keepalive_retries"`
	KeepaliveBackoffSec int `json:"keepalive_backoff_sec" yaml:"keepalive_backoff_sec" toml:"keepalive_backoff_sec"`

	// Logging.
	LogLevel      string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile       string `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" yaml:"log_max_size_mb" toml:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" yaml:"log_max_backups" toml:"log_max_backups"`

	// CORS (opt-in).
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
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
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
