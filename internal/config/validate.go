package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Portal.validate(); err != nil {
		return fmt.Errorf("portal: %w", err)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http: timeout must be > 0 (got %v)", c.HTTP.Timeout)
	}
	if c.HTTP.RetryCount < 0 {
		return fmt.Errorf("http: retry_count must be >= 0 (got %d)", c.HTTP.RetryCount)
	}

	return nil
}

func (p *PortalConfig) validate() error {
	u, err := url.Parse(p.DistrictURL)
	if err != nil {
		return fmt.Errorf("district_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("district_url must be an http(s) URL (got %q)", p.DistrictURL)
	}
	if u.Host == "" {
		return fmt.Errorf("district_url has no host (got %q)", p.DistrictURL)
	}

	if p.Username == "" || p.Password == "" {
		return fmt.Errorf("username and password are required")
	}

	if !strings.HasPrefix(p.Endpoint, "/") || strings.HasSuffix(p.Endpoint, "/") {
		return fmt.Errorf("endpoint must start with / and must not end with / (got %q)", p.Endpoint)
	}

	return nil
}
