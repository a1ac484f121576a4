// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package config

import "fmt"

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateKeepalive(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.Providers.Primary.BaseURL != "" {
		if err := validateHTTPURL(c.Providers.Primary.BaseURL, "PROVIDER_PRIMARY_BASE_URL"); err != nil {
			return err
		}
	}
	if c.Providers.Fallback.BaseURL != "" {
		if err := validateHTTPURL(c.Providers.Fallback.BaseURL, "PROVIDER_FALLBACK_BASE_URL"); err != nil {
			return err
		}
	}
	if c.Providers.Primary.Timeout <= 0 {
		return fmt.Errorf("providers.primary.timeout must be positive")
	}
	if c.Providers.Fallback.Timeout <= 0 {
		return fmt.Errorf("providers.fallback.timeout must be positive")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.IndexCapacity <= 0 {
		return fmt.Errorf("search.index_capacity must be positive")
	}
	if c.Search.FreshTTL <= 0 || c.Search.StaleTTL <= 0 {
		return fmt.Errorf("search.fresh_ttl and search.stale_ttl must be positive")
	}
	if c.Search.StaleTTL < c.Search.FreshTTL {
		return fmt.Errorf("search.stale_ttl must be >= search.fresh_ttl")
	}
	if c.Search.MaxSmartResults <= 0 {
		return fmt.Errorf("search.max_smart_results must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters when set")
	}
	return nil
}

// validateKeepalive enforces spec's documented minimums: interval >= 60s,
// timeout >= 1s, when a keepalive URL is configured at all.
func (c *Config) validateKeepalive() error {
	if c.Keepalive.URL == "" {
		return nil
	}
	if err := validateHTTPURL(c.Keepalive.URL, "KEEPALIVE_URL"); err != nil {
		return err
	}
	if c.Keepalive.Interval < DefaultMinKeepaliveInterval {
		return fmt.Errorf("keepalive.interval must be >= %s", DefaultMinKeepaliveInterval)
	}
	if c.Keepalive.Timeout < DefaultMinKeepaliveTimeout {
		return fmt.Errorf("keepalive.timeout must be >= %s", DefaultMinKeepaliveTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "":
	default:
		return fmt.Errorf("logging.level %q is not a recognized level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console", "":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
