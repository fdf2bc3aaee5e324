package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedInstrument configures the quote distribution for one instrument.
type FeedInstrument struct {
	Mean  float64 `yaml:"mean"`
	Sigma float64 `yaml:"sigma"`
}

// Config holds the whole application configuration. Load it with LoadConfig;
// a few operational knobs can be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		RefreshIntervalMS int                       `yaml:"refresh_interval_ms"`
		Instruments       map[string]FeedInstrument `yaml:"instruments"`
	} `yaml:"feed"`

	Book struct {
		AskCount int `yaml:"ask_count"`
		BidCount int `yaml:"bid_count"`
	} `yaml:"book"`

	Server struct {
		Addr                string `yaml:"addr"`
		BroadcastIntervalMS int    `yaml:"broadcast_interval_ms"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.RefreshIntervalMS <= 0 {
		return fmt.Errorf("feed refresh interval must be positive, got %d", c.Feed.RefreshIntervalMS)
	}
	if len(c.Feed.Instruments) == 0 {
		return fmt.Errorf("at least one feed instrument is required")
	}
	for name, stats := range c.Feed.Instruments {
		if stats.Sigma < 0 {
			return fmt.Errorf("instrument %q: sigma must not be negative", name)
		}
	}

	if c.Book.AskCount < 0 || c.Book.BidCount < 0 {
		return fmt.Errorf("book depth must not be negative, got asks=%d bids=%d", c.Book.AskCount, c.Book.BidCount)
	}

	if c.Server.Addr != "" && c.Server.BroadcastIntervalMS <= 0 {
		return fmt.Errorf("server broadcast interval must be positive, got %d", c.Server.BroadcastIntervalMS)
	}

	return nil
}

// overrideWithEnv overrides config values when environment variables are set.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("ORDERBOOK_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("ORDERBOOK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
