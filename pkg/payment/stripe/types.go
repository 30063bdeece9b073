package stripe

// PaymentIntentRequest creates a client-secret based payment intent.
// Amount is in the currency's minor unit (centavos).
type PaymentIntentRequest struct {
	Amount      int64
	Currency    string
	Description string
	// Metadata keys are sent as metadata[key]=value form fields; the
	// order id travels here so webhooks can find their way back.
	Metadata map[string]string
}

// PaymentIntent is the provider-side view of one payment attempt.
// Status is Stripe's raw vocabulary: "requires_payment_method",
// "requires_confirmation", "requires_action", "processing", "succeeded",
// "canceled".
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Created      int64             `json:"created"`
}

// WebhookEvent is the envelope Stripe POSTs to the webhook endpoint.
// Data.Object is kept raw; the handler decodes it per event type.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}
