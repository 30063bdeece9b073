package service

import (
	"context"
	"testing"
	"time"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider is a canned-response PaymentProvider for reconciliation
// tests.
type fakeProvider struct {
	name     string
	statuses map[string]ProviderStatus
	searches map[uint][]ProviderPayment
	intent   *PaymentIntentResult
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) CreateIntent(ctx context.Context, order *model.Order) (*PaymentIntentResult, error) {
	return p.intent, nil
}

func (p *fakeProvider) GetPaymentStatus(ctx context.Context, providerRefID string) (ProviderStatus, error) {
	return p.statuses[providerRefID], nil
}

func (p *fakeProvider) FindPaymentsForOrder(ctx context.Context, orderID uint) ([]ProviderPayment, error) {
	return p.searches[orderID], nil
}

type reconcileFixture struct {
	reconcile ReconcileService
	provider  *fakeProvider
	order     *model.Order
	payment   *model.Payment
	variant   *model.Variant
	db        *gorm.DB
}

func setupReconcileTest(t *testing.T, orderStatus model.OrderStatus, stock int) *reconcileFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)

	product := &model.Product{
		Name:     "Zapatilla Test",
		Price:    5000,
		Currency: "ARS",
		Sizes:    []string{"42"},
		Colors:   []string{"Negro"},
	}
	require.NoError(t, testDB.Create(product).Error)

	variant := &model.Variant{
		ProductID: product.ID,
		Size:      "42",
		Color:     "Negro",
		Stock:     stock,
	}
	require.NoError(t, testDB.Create(variant).Error)

	order := &model.Order{
		Subtotal:     10000,
		Tax:          2100,
		ShippingCost: 1500,
		Total:        13600,
		Currency:     "ARS",
		Status:       orderStatus,
		ContactEmail: "juan@example.com",
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, VariantID: variant.ID, Size: "42", Color: "Negro", Quantity: 2, UnitPrice: 5000},
		},
	}
	require.NoError(t, testDB.Create(order).Error)

	payment := &model.Payment{
		OrderID:       order.ID,
		Provider:      "fake",
		ProviderRefID: "pay-123",
		Amount:        13600,
		Currency:      "ARS",
		Status:        model.PaymentStatusRequiresAction,
	}
	require.NoError(t, testDB.Create(payment).Error)

	provider := &fakeProvider{
		name:     "fake",
		statuses: map[string]ProviderStatus{},
		searches: map[uint][]ProviderPayment{},
	}

	return &reconcileFixture{
		reconcile: NewReconcileService(testDB, orderRepo, paymentRepo, variantRepo, provider),
		provider:  provider,
		order:     order,
		payment:   payment,
		variant:   variant,
		db:        testDB,
	}
}

func (f *reconcileFixture) notification(kind ProviderStatusKind) *ProviderNotification {
	return &ProviderNotification{
		Provider:      "fake",
		ProviderRefID: "pay-123",
		OrderID:       f.order.ID,
		Status:        ProviderStatus{Kind: kind, Raw: string(kind)},
		Amount:        13600,
		Currency:      "ARS",
	}
}

func (f *reconcileFixture) reload(t *testing.T) (*model.Order, *model.Payment, *model.Variant) {
	t.Helper()
	var order model.Order
	require.NoError(t, f.db.First(&order, f.order.ID).Error)
	var payment model.Payment
	require.NoError(t, f.db.First(&payment, f.payment.ID).Error)
	var variant model.Variant
	require.NoError(t, f.db.First(&variant, f.variant.ID).Error)
	return &order, &payment, &variant
}

func TestReconcile_ApprovedMarksPaidAndDecrementsStock(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusSucceeded, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusPaid, result.OrderStatus)

	order, payment, variant := f.reload(t)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaidAt)
	assert.Equal(t, model.PaymentStatusSucceeded, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	assert.Equal(t, 3, variant.Stock)
}

func TestReconcile_DuplicateApprovedDecrementsOnce(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	_, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "duplicate notification", result.Note)

	_, _, variant := f.reload(t)
	assert.Equal(t, 3, variant.Stock)
}

func TestReconcile_PendingMovesToProcessing(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderPending))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusProcessing, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusProcessing, result.OrderStatus)

	// No stock movement for a non-paid transition.
	_, _, variant := f.reload(t)
	assert.Equal(t, 5, variant.Stock)
}

func TestReconcile_RejectedMarksFailed(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderRejected))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusFailed, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusFailed, result.OrderStatus)

	_, payment, _ := f.reload(t)
	assert.NotNil(t, payment.FailedAt)
}

func TestReconcile_ApprovedAfterRejectedRecovers(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	_, err := f.reconcile.ApplyNotification(f.notification(ProviderRejected))
	require.NoError(t, err)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.OrderStatusPaid, result.OrderStatus)

	_, _, variant := f.reload(t)
	assert.Equal(t, 3, variant.Stock)
}

func TestReconcile_UnknownReferenceIsNoOp(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	result, err := f.reconcile.ApplyNotification(&ProviderNotification{
		Provider:      "fake",
		ProviderRefID: "pay-never-seen",
		Status:        ProviderStatus{Kind: ProviderApproved, Raw: "approved"},
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "unknown payment reference", result.Note)

	order, _, variant := f.reload(t)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 5, variant.Stock)
}

func TestReconcile_UnknownReferenceWithOrderCreatesPayment(t *testing.T) {
	// Redirect providers have no payment row until the first webhook.
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	result, err := f.reconcile.ApplyNotification(&ProviderNotification{
		Provider:      "fake",
		ProviderRefID: "pay-456",
		OrderID:       f.order.ID,
		Status:        ProviderStatus{Kind: ProviderApproved, Raw: "approved"},
		Amount:        13600,
		Currency:      "ARS",
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.OrderStatusPaid, result.OrderStatus)

	var created model.Payment
	require.NoError(t, f.db.Where("provider_ref_id = ?", "pay-456").First(&created).Error)
	assert.Equal(t, f.order.ID, created.OrderID)
	assert.Equal(t, model.PaymentStatusSucceeded, created.Status)
}

func TestReconcile_TerminalOrderIsNoOp(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusCancelled, 5)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "order already terminal", result.Note)

	order, payment, variant := f.reload(t)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, model.PaymentStatusRequiresAction, payment.Status)
	assert.Equal(t, 5, variant.Stock)
}

func TestReconcile_StockShortParksOrder(t *testing.T) {
	// Order wants 2 units, only 1 left by confirmation time.
	f := setupReconcileTest(t, model.OrderStatusPending, 1)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderApproved))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusSucceeded, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusRequiresAction, result.OrderStatus)

	order, payment, variant := f.reload(t)
	assert.Equal(t, model.OrderStatusRequiresAction, order.Status)
	assert.Equal(t, model.PaymentStatusSucceeded, payment.Status)
	// The aborted decrement rolled back.
	assert.Equal(t, 1, variant.Stock)
}

func TestReconcile_UnknownStatusParksOrder(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	_, err := f.reconcile.ApplyNotification(f.notification(ProviderPending))
	require.NoError(t, err)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderUnknown))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusRequiresAction, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusRequiresAction, result.OrderStatus)
}

func TestReconcile_IllegalOrderTransitionUpdatesPaymentOnly(t *testing.T) {
	// A refund notification for an order still in DRAFT: no DRAFT->REFUNDED
	// edge exists, so only the payment record moves.
	f := setupReconcileTest(t, model.OrderStatusDraft, 5)

	result, err := f.reconcile.ApplyNotification(f.notification(ProviderRefunded))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, model.PaymentStatusRefunded, result.PaymentStatus)
	assert.Equal(t, model.OrderStatusDraft, result.OrderStatus)

	order, payment, _ := f.reload(t)
	assert.Equal(t, model.OrderStatusDraft, order.Status)
	assert.Equal(t, model.PaymentStatusRefunded, payment.Status)
}

func TestReconcile_SweepPollsKnownPayments(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)
	f.provider.statuses["pay-123"] = ProviderStatus{Kind: ProviderApproved, Raw: "approved"}

	// Age the order past the cutoff.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", f.order.ID).UpdateColumn("updated_at", past).Error)

	require.NoError(t, f.reconcile.SweepStaleOrders(context.Background(), 15*time.Minute))

	order, _, variant := f.reload(t)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, 3, variant.Stock)
}

func TestReconcile_SweepDiscoversProviderSidePayments(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)

	// Delete the local payment row; the provider still knows the attempt.
	require.NoError(t, f.db.Unscoped().Delete(&model.Payment{}, f.payment.ID).Error)
	f.provider.searches[f.order.ID] = []ProviderPayment{
		{ProviderRefID: "pay-789", Status: ProviderStatus{Kind: ProviderApproved, Raw: "approved"}, Amount: 13600, Currency: "ARS"},
	}

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", f.order.ID).UpdateColumn("updated_at", past).Error)

	require.NoError(t, f.reconcile.SweepStaleOrders(context.Background(), 15*time.Minute))

	order, _, _ := f.reload(t)
	assert.Equal(t, model.OrderStatusPaid, order.Status)

	var created model.Payment
	require.NoError(t, f.db.Where("provider_ref_id = ?", "pay-789").First(&created).Error)
	assert.Equal(t, model.PaymentStatusSucceeded, created.Status)
}

func TestReconcile_SweepSkipsFreshOrders(t *testing.T) {
	f := setupReconcileTest(t, model.OrderStatusPending, 5)
	f.provider.statuses["pay-123"] = ProviderStatus{Kind: ProviderApproved, Raw: "approved"}

	require.NoError(t, f.reconcile.SweepStaleOrders(context.Background(), 15*time.Minute))

	order, _, _ := f.reload(t)
	assert.Equal(t, model.OrderStatusPending, order.Status)
}
