package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("CHATWIDGET_ENDPOINT must be an absolute http(s) URL, got %q", c.Endpoint)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("CHATWIDGET_MIN_INTERVAL must not be negative, got %s", c.MinInterval)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("CHATWIDGET_HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	switch c.Stub.Shape {
	case "plain", "nested", "encoded", "escaped", "text":
	default:
		return fmt.Errorf("CHATWIDGET_STUB_SHAPE must be one of plain, nested, encoded, escaped, text; got %q", c.Stub.Shape)
	}
	if c.Stub.RatePerMinute < 0 {
		return fmt.Errorf("CHATWIDGET_STUB_RATE must not be negative, got %d", c.Stub.RatePerMinute)
	}
	return nil
}

// LoadLabels reads a YAML labels file. An empty path returns zero Labels.
func LoadLabels(path string) (Labels, error) {
	var labels Labels
	if path == "" {
		return labels, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return labels, fmt.Errorf("read labels: %w", err)
	}
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return labels, fmt.Errorf("parse labels %s: %w", path, err)
	}
	return labels, nil
}
