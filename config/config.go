// Package config loads the debug client's TOML configuration.
package config

import (
	"docs-debug/catalog"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration.
type Config struct {
	// BaseURL is the origin used when the catalog lists no instance for a service.
	BaseURL string `toml:"base_url"`

	// Balancer is one of round_robin, weighted_random, consistent_hash.
	Balancer string `toml:"balancer"`

	// AnnotatedMode is "explicit" (caller picks the content type) or "fixed"
	// (built-in candidate list, for older debug UIs).
	AnnotatedMode string `toml:"annotated_mode"`

	// RequestID stamps every invocation with an x-request-id header.
	RequestID bool `toml:"request_id"`

	// Headers are attached to every invocation, in order.
	Headers []HeaderConfig `toml:"headers"`

	Catalog   CatalogConfig             `toml:"catalog"`
	Instances []catalog.ServiceInstance `toml:"instances"`
	RateLimit RateLimitConfig           `toml:"rate_limit"`
	Log       LogConfig                 `toml:"log"`
}

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

// CatalogConfig selects where specifications come from.
type CatalogConfig struct {
	Source        string   `toml:"source"` // file or etcd
	SpecFile      string   `toml:"spec_file"`
	EtcdEndpoints []string `toml:"etcd_endpoints"`
}

// RateLimitConfig bounds invocations per second. Rate 0 disables limiting.
type RateLimitConfig struct {
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `toml:"level"`
	// Format: console or json
	Format      string `toml:"format"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used for unset keys.
func Default() *Config {
	return &Config{
		BaseURL:       "http://127.0.0.1:8080",
		Balancer:      "round_robin",
		AnnotatedMode: "explicit",
		Catalog: CatalogConfig{
			Source:   "file",
			SpecFile: "specification.json",
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.SpecFile == "" {
			errs = append(errs, errors.New("catalog.spec_file is required for the file catalog"))
		}
	case "etcd":
		if len(c.Catalog.EtcdEndpoints) == 0 {
			errs = append(errs, errors.New("catalog.etcd_endpoints is required for the etcd catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog source %q", c.Catalog.Source))
	}
	switch c.AnnotatedMode {
	case "explicit", "fixed":
	default:
		errs = append(errs, fmt.Errorf("unknown annotated_mode %q", c.AnnotatedMode))
	}
	if c.RateLimit.Rate < 0 || (c.RateLimit.Rate > 0 && c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit needs a positive burst when rate is set"))
	}
	for i, h := range c.Headers {
		if strings.TrimSpace(h.Name) == "" {
			errs = append(errs, fmt.Errorf("headers[%d] has no name", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
