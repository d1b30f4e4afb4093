package config

import (
	"fmt"
	"mancala/controller"
	"mancala/searcher"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MANCALA_MAX_NODES.
const EnvPrefix = "MANCALA"

type Config struct {
	Exploration     float64       `mapstructure:"exploration"`
	Seed            uint64        `mapstructure:"seed"`
	MaxNodes        int           `mapstructure:"max_nodes"`
	ReuseSubtree    bool          `mapstructure:"reuse_subtree"`
	PublishEvery    int           `mapstructure:"publish_every"`
	PublishInterval time.Duration `mapstructure:"publish_interval"`
	ThinkTime       time.Duration `mapstructure:"think_time"`
	Games           int           `mapstructure:"games"`
	Temperature     float64       `mapstructure:"temperature"`
	OutputDir       string        `mapstructure:"output_dir"`
	LogLevel        string        `mapstructure:"log_level"`
}

// Load reads the config file at path, if any, then applies MANCALA_*
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("exploration", searcher.DefaultExploration)
	v.SetDefault("seed", 0) // Seeded from time
	v.SetDefault("max_nodes", searcher.DefaultMaxNodes)
	v.SetDefault("reuse_subtree", true)
	v.SetDefault("publish_every", controller.DefaultPublishEvery)
	v.SetDefault("publish_interval", controller.DefaultPublishInterval)
	v.SetDefault("think_time", time.Second)
	v.SetDefault("games", 10)
	v.SetDefault("temperature", 1.0)
	v.SetDefault("output_dir", "experiments")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Exploration <= 0:
		return fmt.Errorf("exploration must be positive, got %v", c.Exploration)
	case c.MaxNodes < 2:
		return fmt.Errorf("max_nodes must be at least 2, got %d", c.MaxNodes)
	case c.Games < 1:
		return fmt.Errorf("games must be positive, got %d", c.Games)
	case c.Temperature <= 0:
		return fmt.Errorf("temperature must be positive, got %v", c.Temperature)
	case c.ThinkTime <= 0:
		return fmt.Errorf("think_time must be positive, got %v", c.ThinkTime)
	}
	return nil
}

// SearchOptions translates the search settings. A zero seed leaves the
// searcher seeded from time.
func (c *Config) SearchOptions() []searcher.Option {
	options := []searcher.Option{
		searcher.WithExploration(c.Exploration),
		searcher.WithMaxNodes(c.MaxNodes),
		searcher.WithSubtreeReuse(c.ReuseSubtree),
	}
	if c.Seed != 0 {
		options = append(options, searcher.WithSeed(c.Seed))
	}
	return options
}

func (c *Config) ControllerOptions() []controller.Option {
	return []controller.Option{
		controller.WithSearchOptions(c.SearchOptions()...),
		controller.WithPublishEvery(c.PublishEvery),
		controller.WithPublishInterval(c.PublishInterval),
	}
}
