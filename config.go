package tecs

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config controls world behaviour.
type Config struct {
	// DeferredDestroy makes Entity.Destroy tag the entity instead of
	// destroying it; the sweep system removes tagged entities.
	DeferredDestroy bool   `toml:"deferred_destroy" yaml:"deferred_destroy"`
	DestroyTag      string `toml:"destroy_tag" yaml:"destroy_tag"`
	DestroyGroup    string `toml:"destroy_group" yaml:"destroy_group"`

	// CleanupPools trims idle pools on every Tick.
	CleanupPools      bool `toml:"cleanup_pools" yaml:"cleanup_pools"`
	EntityPoolSize    int  `toml:"entity_pool_size" yaml:"entity_pool_size"`
	ComponentPoolSize int  `toml:"component_pool_size" yaml:"component_pool_size"`

	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

const (
	DefaultDestroyTag   = "PendingDestroy"
	DefaultDestroyGroup = "destroy"
)

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DestroyTag:   DefaultDestroyTag,
		DestroyGroup: DefaultDestroyGroup,
		CleanupPools: true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c Config) withDefaults() Config {
	if c.DestroyTag == "" {
		c.DestroyTag = DefaultDestroyTag
	}
	if c.DestroyGroup == "" {
		c.DestroyGroup = DefaultDestroyGroup
	}
	return c
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	if format == FormatTOML {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, eris.Wrapf(err, "parse config %s", path)
	}
	return cfg.withDefaults(), nil
}
