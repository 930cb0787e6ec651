package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Config models pcc.yml.
type Config struct {
	Storage struct {
		Driver string `yaml:"driver"`
		Key    string `yaml:"key"`
		File   string `yaml:"file"`
	} `yaml:"storage"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Dashboard struct {
		UpcomingLimit int `yaml:"upcoming_limit"`
		TopRisksLimit int `yaml:"top_risks_limit"`
	} `yaml:"dashboard"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with pcc init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Key == "" {
			return fmt.Errorf("config.storage.key is required for the sqlite driver")
		}
	case DriverFile:
		if c.Storage.File == "" {
			return fmt.Errorf("config.storage.file is required for the file driver")
		}
	default:
		return fmt.Errorf("config.storage.driver must be 'sqlite' or 'file', got %q", c.Storage.Driver)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	if c.Dashboard.UpcomingLimit < 0 || c.Dashboard.TopRisksLimit < 0 {
		return fmt.Errorf("config.dashboard limits must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("config.log.format %q is not one of json, text", c.Log.Format)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "pcc.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing
// sections take their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `storage:
  # sqlite keeps the snapshot in .pcc/pcc.db; file writes .pcc/project.json
  driver: sqlite
  key: ai-pcc-project
  file: project.json

server:
  addr: 127.0.0.1:8080
  base_path: /v0

dashboard:
  upcoming_limit: 5
  top_risks_limit: 4

log:
  level: info
  format: text
`
