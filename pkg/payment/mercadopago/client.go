package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a minimal Mercado Pago REST client covering the checkout
// preference and payment lookup endpoints.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Mercado Pago client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreatePreference creates a checkout preference and returns the redirect
// init point for the payer.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResponse, error) {
	if req.BackURLs.Success == "" {
		req.BackURLs = BackURLs{
			Success: c.config.SuccessURL,
			Pending: c.config.PendingURL,
			Failure: c.config.FailureURL,
		}
	}
	if req.NotificationURL == "" {
		req.NotificationURL = c.config.WebhookURL
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/checkout/preferences", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	var prefResp PreferenceResponse
	if err := json.Unmarshal(body, &prefResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preference response: %w", err)
	}

	return &prefResp, nil
}

// GetPayment fetches a payment by its provider-side id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	return &payment, nil
}

// SearchPaymentsByReference lists payments created under an external
// reference (the storefront order id), newest first.
func (c *Client) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]Payment, error) {
	path := "/v1/payments/search?sort=date_created&criteria=desc&external_reference=" + url.QueryEscape(externalReference)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search payments: %w", err)
	}

	var searchResp PaymentSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment search response: %w", err)
	}

	return searchResp.Results, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		}

		errorMsg := fmt.Sprintf("status: %d, error: %s, message: %s", resp.StatusCode, errResp.Error, errResp.Message)

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrAPIError, errorMsg)
		}
	}

	return body, nil
}
