package mercadopago

import "time"

// PreferenceItem is one purchasable line inside a checkout preference.
type PreferenceItem struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

// BackURLs are the storefront pages the payer is returned to.
type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PreferenceRequest creates a redirect-based checkout preference.
type PreferenceRequest struct {
	Items               []PreferenceItem `json:"items"`
	BackURLs            BackURLs         `json:"back_urls"`
	AutoReturn          string           `json:"auto_return,omitempty"`
	NotificationURL     string           `json:"notification_url,omitempty"`
	StatementDescriptor string           `json:"statement_descriptor,omitempty"`
	ExternalReference   string           `json:"external_reference"`
}

// PreferenceResponse is the created preference; InitPoint is the redirect
// URL the storefront sends the payer to.
type PreferenceResponse struct {
	ID               string    `json:"id"`
	InitPoint        string    `json:"init_point"`
	SandboxInitPoint string    `json:"sandbox_init_point"`
	DateCreated      time.Time `json:"date_created"`
}

// Payment is the provider-side view of one payment attempt.
// Status is Mercado Pago's raw vocabulary: "pending", "approved",
// "authorized", "in_process", "in_mediation", "rejected", "cancelled",
// "refunded", "charged_back".
type Payment struct {
	ID                int64     `json:"id"`
	Status            string    `json:"status"`
	StatusDetail      string    `json:"status_detail"`
	ExternalReference string    `json:"external_reference"`
	TransactionAmount float64   `json:"transaction_amount"`
	CurrencyID        string    `json:"currency_id"`
	DateCreated       time.Time `json:"date_created"`
	DateApproved      *time.Time `json:"date_approved,omitempty"`
}

// PaymentSearchResponse wraps the paged results of a payment search.
type PaymentSearchResponse struct {
	Results []Payment `json:"results"`
}

// WebhookNotification is the body Mercado Pago POSTs to the notification
// URL. Only payment notifications carry a payment id in Data.ID.
type WebhookNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}
