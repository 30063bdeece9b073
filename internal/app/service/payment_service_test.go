package service

import (
	"context"
	"testing"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T, orderStatus model.OrderStatus, provider *fakeProvider) (PaymentService, *model.Order, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)

	order := &model.Order{
		Subtotal:     10000,
		Tax:          2100,
		ShippingCost: 1500,
		Total:        13600,
		Currency:     "ARS",
		Status:       orderStatus,
		ContactEmail: "juan@example.com",
	}
	require.NoError(t, testDB.Create(order).Error)

	return NewPaymentService(orderRepo, paymentRepo, provider), order, testDB
}

func TestPaymentService_CreateIntent_DraftMovesToPending(t *testing.T) {
	provider := &fakeProvider{
		name:   "fake",
		intent: &PaymentIntentResult{Provider: "fake", ProviderRefID: "pi_1", ClientSecret: "secret"},
	}
	paymentService, order, testDB := setupPaymentServiceTest(t, model.OrderStatusDraft, provider)

	intent, err := paymentService.CreateIntent(context.Background(), order.ID, "fake")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ProviderRefID)

	var stored model.Order
	require.NoError(t, testDB.First(&stored, order.ID).Error)
	assert.Equal(t, model.OrderStatusPending, stored.Status)

	// A reference was assigned at intent time, so a payment row exists.
	var payment model.Payment
	require.NoError(t, testDB.Where("provider_ref_id = ?", "pi_1").First(&payment).Error)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, model.PaymentStatusRequiresAction, payment.Status)
	assert.Equal(t, 13600.0, payment.Amount)
}

func TestPaymentService_CreateIntent_RedirectFlowCreatesNoPaymentRow(t *testing.T) {
	provider := &fakeProvider{
		name:   "fake",
		intent: &PaymentIntentResult{Provider: "fake", RedirectURL: "https://pago.example.com/init"},
	}
	paymentService, order, testDB := setupPaymentServiceTest(t, model.OrderStatusDraft, provider)

	intent, err := paymentService.CreateIntent(context.Background(), order.ID, "fake")
	require.NoError(t, err)
	assert.Equal(t, "https://pago.example.com/init", intent.RedirectURL)

	// No provider reference yet; the row appears with the first webhook.
	var count int64
	testDB.Model(&model.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPaymentService_CreateIntent_RetryAfterFailure(t *testing.T) {
	provider := &fakeProvider{
		name:   "fake",
		intent: &PaymentIntentResult{Provider: "fake", ProviderRefID: "pi_retry"},
	}
	paymentService, order, testDB := setupPaymentServiceTest(t, model.OrderStatusFailed, provider)

	_, err := paymentService.CreateIntent(context.Background(), order.ID, "fake")
	require.NoError(t, err)

	// A FAILED order retries without changing status here; the provider
	// notification drives the next transition.
	var stored model.Order
	require.NoError(t, testDB.First(&stored, order.ID).Error)
	assert.Equal(t, model.OrderStatusFailed, stored.Status)
}

func TestPaymentService_CreateIntent_NotPayable(t *testing.T) {
	provider := &fakeProvider{name: "fake", intent: &PaymentIntentResult{Provider: "fake"}}
	paymentService, order, _ := setupPaymentServiceTest(t, model.OrderStatusPaid, provider)

	_, err := paymentService.CreateIntent(context.Background(), order.ID, "fake")
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestPaymentService_CreateIntent_UnknownProvider(t *testing.T) {
	provider := &fakeProvider{name: "fake", intent: &PaymentIntentResult{Provider: "fake"}}
	paymentService, order, _ := setupPaymentServiceTest(t, model.OrderStatusDraft, provider)

	_, err := paymentService.CreateIntent(context.Background(), order.ID, "nope")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestPaymentService_CreateIntent_OrderNotFound(t *testing.T) {
	provider := &fakeProvider{name: "fake", intent: &PaymentIntentResult{Provider: "fake"}}
	paymentService, _, _ := setupPaymentServiceTest(t, model.OrderStatusDraft, provider)

	_, err := paymentService.CreateIntent(context.Background(), 9999, "fake")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentService_ListOrderPayments(t *testing.T) {
	provider := &fakeProvider{
		name:   "fake",
		intent: &PaymentIntentResult{Provider: "fake", ProviderRefID: "pi_1"},
	}
	paymentService, order, _ := setupPaymentServiceTest(t, model.OrderStatusDraft, provider)

	_, err := paymentService.CreateIntent(context.Background(), order.ID, "fake")
	require.NoError(t, err)

	payments, err := paymentService.ListOrderPayments(order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_1", payments[0].ProviderRefID)

	_, err = paymentService.ListOrderPayments(9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
