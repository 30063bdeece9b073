package mercadopago

import "errors"

// Config holds the Mercado Pago client configuration.
type Config struct {
	AccessToken string
	BaseURL     string
	SuccessURL  string
	PendingURL  string
	FailureURL  string
	WebhookURL  string
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access token is required")
	}
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	return nil
}
