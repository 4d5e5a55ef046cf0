package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShow(); err != nil {
		return err
	}
	if err := c.validateMixcloud(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShow() error {
	if c.Show.Name == "" {
		return errors.New("show.name must be set")
	}
	return nil
}

func (c *Config) validateMixcloud() error {
	if c.Mixcloud.TimeoutSeconds <= 0 {
		return errors.New("mixcloud.timeout_seconds must be positive")
	}
	if c.Mixcloud.CacheTTLHours <= 0 {
		return errors.New("mixcloud.cache_ttl_hours must be positive")
	}
	if c.Mixcloud.MinIntervalMS < 0 {
		return errors.New("mixcloud.min_interval_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
