// CLAUDE:SUMMARY Configuration structs (server, resolver, browser) and YAML loader for cartwatch.
package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cartwatch configuration.
type Config struct {
	Port        string `yaml:"port"`
	SelectorDir string `yaml:"selector_dir"`
	CatalogDB   string `yaml:"catalog_db"`

	Resolver ResolverConfig `yaml:"resolver"`
	Browser  BrowserConfig  `yaml:"browser"`
	Diff     DiffConfig     `yaml:"diff"`
}

// ResolverConfig controls selector resolution behaviour.
type ResolverConfig struct {
	StrategyTimeout time.Duration `yaml:"strategy_timeout"`
}

// BrowserConfig controls the optional live-page Chrome manager.
type BrowserConfig struct {
	Enabled          bool          `yaml:"enabled"`
	RemoteURL        string        `yaml:"remote_url"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
}

// DiffConfig controls review thresholds.
type DiffConfig struct {
	PriceThreshold float64 `yaml:"price_threshold"`
}

func (c *Config) defaults() {
	if c.Port == "" {
		c.Port = "8086"
	}
	if c.CatalogDB == "" {
		c.CatalogDB = "db/selectors.db"
	}
	if c.Resolver.StrategyTimeout <= 0 {
		c.Resolver.StrategyTimeout = 2 * time.Second
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if len(c.Browser.ResourceBlocking) == 0 {
		c.Browser.ResourceBlocking = []string{"images", "fonts", "media"}
	}
	if c.Diff.PriceThreshold <= 0 {
		c.Diff.PriceThreshold = 10.00
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
