package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/mercadopago"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/stripe"
)

const (
	ProviderMercadoPago = "mercadopago"
	ProviderStripe      = "stripe"
)

// ProviderStatusKind is the reconciler's fixed status vocabulary. Each
// provider's raw strings are mapped into it exactly once, at the provider
// boundary.
type ProviderStatusKind string

const (
	ProviderApproved  ProviderStatusKind = "approved"
	ProviderPending   ProviderStatusKind = "pending"
	ProviderRejected  ProviderStatusKind = "rejected"
	ProviderCancelled ProviderStatusKind = "cancelled"
	ProviderRefunded  ProviderStatusKind = "refunded"
	ProviderDisputed  ProviderStatusKind = "disputed"
	ProviderUnknown   ProviderStatusKind = "unknown"
)

// ProviderStatus tags a mapped status with the provider's raw string, so
// unknown statuses stay inspectable in logs without leaking into domain
// logic.
type ProviderStatus struct {
	Kind ProviderStatusKind
	Raw  string
}

// PaymentIntentResult is what checkout hands back to the storefront: a
// redirect URL for redirect-flow providers, a client secret for SDK-flow
// providers. ProviderRefID is empty when the provider assigns payment
// references only once the payer acts (redirect flow).
type PaymentIntentResult struct {
	Provider      string `json:"provider"`
	ProviderRefID string `json:"provider_ref_id,omitempty"`
	RedirectURL   string `json:"redirect_url,omitempty"`
	ClientSecret  string `json:"client_secret,omitempty"`
}

// ProviderPayment is one provider-side payment attempt, already mapped
// into the fixed vocabulary.
type ProviderPayment struct {
	ProviderRefID string
	Status        ProviderStatus
	Amount        float64
	Currency      string
}

// ProviderNotification is one provider event normalized for the
// reconciler: who, which payment attempt, which order, what the provider
// now says about it.
type ProviderNotification struct {
	Provider      string
	ProviderRefID string
	// OrderID is zero when the notification itself does not carry one;
	// the reconciler then resolves it from the stored payment row.
	OrderID  uint
	Status   ProviderStatus
	Amount   float64
	Currency string
}

// PaymentProvider is the port payment collection goes through. The
// reconciler and sweeper are written against this interface only.
type PaymentProvider interface {
	Name() string
	CreateIntent(ctx context.Context, order *model.Order) (*PaymentIntentResult, error)
	GetPaymentStatus(ctx context.Context, providerRefID string) (ProviderStatus, error)
	// FindPaymentsForOrder lists provider-side attempts for an order, so
	// the sweeper can recover from missed webhooks. Providers without a
	// search API return an empty slice.
	FindPaymentsForOrder(ctx context.Context, orderID uint) ([]ProviderPayment, error)
}

// MapMercadoPagoStatus maps Mercado Pago's raw payment status vocabulary.
func MapMercadoPagoStatus(raw string) ProviderStatus {
	status := ProviderStatus{Raw: raw}
	switch raw {
	case "approved":
		status.Kind = ProviderApproved
	case "pending", "authorized", "in_process":
		status.Kind = ProviderPending
	case "rejected":
		status.Kind = ProviderRejected
	case "cancelled":
		status.Kind = ProviderCancelled
	case "refunded":
		status.Kind = ProviderRefunded
	case "in_mediation", "charged_back":
		status.Kind = ProviderDisputed
	default:
		status.Kind = ProviderUnknown
	}
	return status
}

// MapStripeStatus maps Stripe's raw payment-intent status vocabulary.
func MapStripeStatus(raw string) ProviderStatus {
	status := ProviderStatus{Raw: raw}
	switch raw {
	case "succeeded":
		status.Kind = ProviderApproved
	case "processing", "requires_action", "requires_confirmation", "requires_payment_method", "requires_capture":
		status.Kind = ProviderPending
	case "canceled":
		status.Kind = ProviderCancelled
	default:
		status.Kind = ProviderUnknown
	}
	return status
}

// MercadoPagoProvider adapts the redirect-based checkout preference flow.
type MercadoPagoProvider struct {
	client *mercadopago.Client
}

func NewMercadoPagoProvider(client *mercadopago.Client) *MercadoPagoProvider {
	return &MercadoPagoProvider{client: client}
}

func (p *MercadoPagoProvider) Name() string {
	return ProviderMercadoPago
}

func (p *MercadoPagoProvider) CreateIntent(ctx context.Context, order *model.Order) (*PaymentIntentResult, error) {
	items := make([]mercadopago.PreferenceItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		title := item.Product.Name
		if title == "" {
			title = fmt.Sprintf("Producto %d", item.ProductID)
		}
		items = append(items, mercadopago.PreferenceItem{
			ID:         strconv.FormatUint(uint64(item.ProductID), 10),
			Title:      fmt.Sprintf("%s (%s / %s)", title, item.Size, item.Color),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: order.Currency,
		})
	}
	if order.ShippingCost > 0 {
		items = append(items, mercadopago.PreferenceItem{
			Title:      "Envío",
			Quantity:   1,
			UnitPrice:  order.ShippingCost,
			CurrencyID: order.Currency,
		})
	}
	if order.Tax > 0 {
		items = append(items, mercadopago.PreferenceItem{
			Title:      "IVA",
			Quantity:   1,
			UnitPrice:  order.Tax,
			CurrencyID: order.Currency,
		})
	}

	pref, err := p.client.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Items:             items,
		AutoReturn:        "approved",
		ExternalReference: strconv.FormatUint(uint64(order.ID), 10),
	})
	if err != nil {
		return nil, err
	}

	return &PaymentIntentResult{
		Provider:    ProviderMercadoPago,
		RedirectURL: pref.InitPoint,
	}, nil
}

func (p *MercadoPagoProvider) GetPaymentStatus(ctx context.Context, providerRefID string) (ProviderStatus, error) {
	payment, err := p.client.GetPayment(ctx, providerRefID)
	if err != nil {
		return ProviderStatus{}, err
	}
	return MapMercadoPagoStatus(payment.Status), nil
}

// ResolveNotification turns a webhook's payment id into a normalized
// notification by fetching the payment from the provider. Mercado Pago
// webhooks carry only the id; everything else requires this lookup.
func (p *MercadoPagoProvider) ResolveNotification(ctx context.Context, paymentID string) (*ProviderNotification, error) {
	payment, err := p.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	orderID, err := strconv.ParseUint(payment.ExternalReference, 10, 64)
	if err != nil {
		orderID = 0
	}

	return &ProviderNotification{
		Provider:      ProviderMercadoPago,
		ProviderRefID: strconv.FormatInt(payment.ID, 10),
		OrderID:       uint(orderID),
		Status:        MapMercadoPagoStatus(payment.Status),
		Amount:        payment.TransactionAmount,
		Currency:      payment.CurrencyID,
	}, nil
}

func (p *MercadoPagoProvider) FindPaymentsForOrder(ctx context.Context, orderID uint) ([]ProviderPayment, error) {
	payments, err := p.client.SearchPaymentsByReference(ctx, strconv.FormatUint(uint64(orderID), 10))
	if err != nil {
		return nil, err
	}

	results := make([]ProviderPayment, 0, len(payments))
	for _, payment := range payments {
		results = append(results, ProviderPayment{
			ProviderRefID: strconv.FormatInt(payment.ID, 10),
			Status:        MapMercadoPagoStatus(payment.Status),
			Amount:        payment.TransactionAmount,
			Currency:      payment.CurrencyID,
		})
	}
	return results, nil
}

// StripeProvider adapts the client-secret payment-intent flow.
type StripeProvider struct {
	client *stripe.Client
}

func NewStripeProvider(client *stripe.Client) *StripeProvider {
	return &StripeProvider{client: client}
}

func (p *StripeProvider) Name() string {
	return ProviderStripe
}

func (p *StripeProvider) CreateIntent(ctx context.Context, order *model.Order) (*PaymentIntentResult, error) {
	intent, err := p.client.CreatePaymentIntent(ctx, stripe.PaymentIntentRequest{
		// Stripe wants the amount in the currency's minor unit.
		Amount:      int64(math.Round(order.Total*100)),
		Currency:    order.Currency,
		Description: fmt.Sprintf("Pedido #%d", order.ID),
		Metadata: map[string]string{
			"order_id": strconv.FormatUint(uint64(order.ID), 10),
		},
	})
	if err != nil {
		return nil, err
	}

	return &PaymentIntentResult{
		Provider:      ProviderStripe,
		ProviderRefID: intent.ID,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

func (p *StripeProvider) GetPaymentStatus(ctx context.Context, providerRefID string) (ProviderStatus, error) {
	intent, err := p.client.GetPaymentIntent(ctx, providerRefID)
	if err != nil {
		return ProviderStatus{}, err
	}
	return MapStripeStatus(intent.Status), nil
}

func (p *StripeProvider) FindPaymentsForOrder(ctx context.Context, orderID uint) ([]ProviderPayment, error) {
	// Stripe references are known locally from intent creation; the
	// sweeper polls those instead of searching provider-side.
	return nil, nil
}

// NotificationFromStripeEvent normalizes a Stripe webhook event. Some
// event types override the intent's own status: after a refund the intent
// stays "succeeded", and after a failed attempt it reverts to
// "requires_payment_method", which maps to pending.
func NotificationFromStripeEvent(event stripe.WebhookEvent) *ProviderNotification {
	intent := event.Data.Object

	status := MapStripeStatus(intent.Status)
	switch event.Type {
	case "payment_intent.payment_failed":
		status = ProviderStatus{Kind: ProviderRejected, Raw: event.Type}
	case "charge.refunded":
		status = ProviderStatus{Kind: ProviderRefunded, Raw: event.Type}
	case "charge.dispute.created":
		status = ProviderStatus{Kind: ProviderDisputed, Raw: event.Type}
	}

	var orderID uint
	if raw, ok := intent.Metadata["order_id"]; ok {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			orderID = uint(parsed)
		}
	}

	return &ProviderNotification{
		Provider:      ProviderStripe,
		ProviderRefID: intent.ID,
		OrderID:       orderID,
		Status:        status,
		Amount:        float64(intent.Amount) / 100,
		Currency:      intent.Currency,
	}
}
