package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Papers  Papers  `yaml:"papers"`
	Fetch   Fetch   `yaml:"fetch"`
	Search  Search  `yaml:"search"`
	Server  Server  `yaml:"server"`
	Sync    Sync    `yaml:"sync"`
	Output  Output  `yaml:"output"`
	Logging Logging `yaml:"logging"`
}

type Papers struct {
	// Dir is the local paper_json directory; BaseURL, when set, takes
	// precedence and reads the daily files over HTTP instead.
	Dir      string `yaml:"dir"`
	BaseURL  string `yaml:"base_url"`
	Days     int    `yaml:"days"`
	KeepDays int    `yaml:"keep_days"`
}

type Fetch struct {
	Categories []string `yaml:"categories"`
	MaxResults int      `yaml:"max_results"`
	Schedule   string   `yaml:"schedule"` // cron spec for fetch --watch
}

type Search struct {
	Chips      []string `yaml:"chips"`
	DebounceMS int      `yaml:"debounce_ms"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Sync struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for paperdeck.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "paperdeck")
}

// DataDir returns the XDG data directory for paperdeck.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "paperdeck")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/paperdeck/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'paperdeck init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Papers: Papers{
			Dir:      "paper_json",
			Days:     3,
			KeepDays: 5,
		},
		Fetch: Fetch{
			Categories: []string{"cs.AI", "cs.CV", "cs.LG", "stat.ML"},
			MaxResults: 300,
			Schedule:   "0 6 * * *",
		},
		Search:  Search{DebounceMS: 250},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
