package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/autopi/core/factory"
	"github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/infra/keepalive"
	"github.com/kilianp07/autopi/infra/mqtt"
)

type Config struct {
	MQTT      mqtt.Config          `json:"mqtt"`
	Motors    MotorsConfig         `json:"motors"`
	Hardware  factory.ModuleConfig `json:"hardware"`
	Control   ControlConfig        `json:"control"`
	KeepAlive keepalive.Config     `json:"keepalive"`
	Metrics   metrics.Config       `json:"metrics"`
	Logging   LoggingConfig        `json:"logging"`
	Sentry    SentryConfig         `json:"sentry"`
}

// Load reads the file at path, applies K_ prefixed environment overrides
// (K_MQTT__BROKER sets mqtt.broker), then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	c.Motors.SetDefaults()
	if c.Hardware.Type == "" {
		c.Hardware.Type = "raspi"
	}
	c.Control.SetDefaults()
	c.KeepAlive.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Motors.Validate(); err != nil {
		return err
	}
	if err := c.Control.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
