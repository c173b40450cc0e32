package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration. Values load from a
// YAML file and are then overridden by environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Engine struct {
		// Safety net for planners without a termination guarantee.
		// Zero lifts the corresponding bound.
		MaxIterations int `yaml:"max_iterations"`
		MaxRuntimeSec int `yaml:"max_runtime_sec"`
	} `yaml:"engine"`

	Market struct {
		// Mode selects the MarketView implementation: "stub" or "feed".
		Mode    string   `yaml:"mode"`
		WSURL   string   `yaml:"ws_url"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"market"`

	Archive struct {
		Enabled bool   `yaml:"enabled"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"archive"`

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

// Validate checks configuration validity.
func (c *Config) Validate() error {
	switch c.Market.Mode {
	case "stub", "feed":
	case "":
		c.Market.Mode = "stub"
	default:
		return fmt.Errorf("unknown market mode: %q", c.Market.Mode)
	}

	if c.Market.Mode == "feed" {
		if !strings.HasPrefix(c.Market.WSURL, "ws://") && !strings.HasPrefix(c.Market.WSURL, "wss://") {
			return fmt.Errorf("invalid market WS URL: %s", c.Market.WSURL)
		}
		if len(c.Market.Symbols) == 0 {
			return fmt.Errorf("at least one market symbol is required in feed mode")
		}
	}

	if c.Engine.MaxIterations < 0 {
		return fmt.Errorf("engine max_iterations must not be negative")
	}
	if c.Engine.MaxRuntimeSec < 0 {
		return fmt.Errorf("engine max_runtime_sec must not be negative")
	}

	if c.Archive.Enabled && c.Archive.DBPath == "" {
		return fmt.Errorf("archive db_path is required when the archive is enabled")
	}

	return nil
}

// overrideWithEnv applies environment overrides on top of the file.
// Environment always wins over the config file.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("ALGOEXEC_WS_URL"); url != "" {
		cfg.Market.WSURL = url
	}
	if mode := os.Getenv("ALGOEXEC_MARKET_MODE"); mode != "" {
		cfg.Market.Mode = mode
	}
	if path := os.Getenv("ALGOEXEC_DB_PATH"); path != "" {
		cfg.Archive.DBPath = path
	}
	if level := os.Getenv("ALGOEXEC_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if iters := os.Getenv("ALGOEXEC_MAX_ITERATIONS"); iters != "" {
		if n, err := strconv.Atoi(iters); err == nil {
			cfg.Engine.MaxIterations = n
		}
	}
}
