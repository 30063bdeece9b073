package stripe

import "errors"

// Config holds the Stripe client configuration.
type Config struct {
	SecretKey string
	BaseURL   string
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	return nil
}
