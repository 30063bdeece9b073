package service

import (
	"testing"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	orderService OrderService
	cartService  CartService
	user         *model.User
	product      *model.Product
	variant      *model.Variant
	db           *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	pricing := NewPricingService(productRepo, variantRepo)
	stock := NewStockService(productRepo, variantRepo)
	policy := testPolicy()

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:     "Zapatilla Test",
		Brand:    "New Balance",
		Category: "Running",
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
		Stock:     10,
	}
	require.NoError(t, testDB.Create(variant).Error)

	return &orderServiceFixture{
		orderService: NewOrderService(orderRepo, cartRepo, pricing, stock, policy),
		cartService:  NewCartService(cartRepo, productRepo, variantRepo, pricing, stock, policy),
		user:         user,
		product:      product,
		variant:      variant,
		db:           testDB,
	}
}

func (f *orderServiceFixture) checkoutInput(quantity int) CheckoutInput {
	return CheckoutInput{
		Lines: []MergeLine{
			{ProductID: f.product.ID, Size: "42", Color: "Negro", Quantity: quantity},
		},
		ContactName:  "Juan Pérez",
		ContactEmail: "juan@example.com",
		ContactPhone: "+54 11 5555-0000",
		ShippingAddr: "Av. Corrientes 1234, CABA",
	}
}

func TestOrderService_Checkout_CreatesDraftWithFrozenPrices(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, _, err := f.orderService.Checkout(f.checkoutInput(3))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusDraft, order.Status)
	assert.Equal(t, 15000.0, order.Subtotal)
	assert.Equal(t, 3150.0, order.Tax)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, 18150.0, order.Total)
	assert.Nil(t, order.UserID)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 5000.0, order.OrderItems[0].UnitPrice)
	assert.Equal(t, f.variant.ID, order.OrderItems[0].VariantID)

	// Checkout does not touch stock; that happens at payment confirmation.
	var stored model.Variant
	require.NoError(t, f.db.First(&stored, f.variant.ID).Error)
	assert.Equal(t, 10, stored.Stock)
}

func TestOrderService_Checkout_LaterPriceChangeDoesNotAffectOrder(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, _, err := f.orderService.Checkout(f.checkoutInput(1))
	require.NoError(t, err)

	// Catalog price changes after checkout.
	require.NoError(t, f.db.Model(f.product).Update("price", 9000).Error)

	stored, err := f.orderService.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, stored.OrderItems[0].UnitPrice)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, _, err := f.orderService.Checkout(CheckoutInput{})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestOrderService_Checkout_InvalidLineAbortsEverything(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := f.checkoutInput(2)
	input.Lines = append(input.Lines, MergeLine{ProductID: 9999, Size: "42", Color: "Negro", Quantity: 1})

	_, _, err := f.orderService.Checkout(input)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var count int64
	f.db.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestOrderService_Checkout_InsufficientStock(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, _, err := f.orderService.Checkout(f.checkoutInput(15))
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 15, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)
}

func TestOrderService_Checkout_CollapsesDuplicateLines(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := f.checkoutInput(2)
	input.Lines = append(input.Lines, MergeLine{ProductID: f.product.ID, Size: "42", Color: "Negro", Quantity: 3})

	order, _, err := f.orderService.Checkout(input)
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 5, order.OrderItems[0].Quantity)
}

func TestOrderService_Checkout_DuplicateClampReturnsWarning(t *testing.T) {
	f := setupOrderServiceTest(t)
	require.NoError(t, f.db.Model(f.variant).Update("stock", 30).Error)

	input := f.checkoutInput(12)
	input.Lines = append(input.Lines, MergeLine{ProductID: f.product.ID, Size: "42", Color: "Negro", Quantity: 10})

	order, warnings, err := f.orderService.Checkout(input)
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, model.MaxQuantityPerLine, order.OrderItems[0].Quantity)

	require.Len(t, warnings, 1)
	assert.Equal(t, 22, warnings[0].Requested)
	assert.Equal(t, model.MaxQuantityPerLine, warnings[0].Applied)
}

func TestOrderService_CheckoutFromCart_ClearsCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, "42", "Negro", 2)
	require.NoError(t, err)

	order, _, err := f.orderService.CheckoutFromCart(f.user.ID, CheckoutInput{
		ContactName:  "Juan Pérez",
		ContactEmail: "juan@example.com",
		ShippingAddr: "Av. Corrientes 1234, CABA",
	})
	require.NoError(t, err)

	require.NotNil(t, order.UserID)
	assert.Equal(t, f.user.ID, *order.UserID)

	summary, err := f.cartService.GetUserCart(f.user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
}

func TestOrderService_CheckoutFromCart_EmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, _, err := f.orderService.CheckoutFromCart(f.user.ID, CheckoutInput{})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestOrderService_GetUserOrder_Ownership(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, "42", "Negro", 1)
	require.NoError(t, err)
	order, _, err := f.orderService.CheckoutFromCart(f.user.ID, CheckoutInput{ContactEmail: "juan@example.com"})
	require.NoError(t, err)

	_, err = f.orderService.GetUserOrder(f.user.ID, order.ID)
	assert.NoError(t, err)

	_, err = f.orderService.GetUserOrder(f.user.ID+1, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_Transitions(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, _, err := f.orderService.Checkout(f.checkoutInput(1))
	require.NoError(t, err)

	// DRAFT cannot ship.
	err = f.orderService.MarkShipped(order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A paid order ships, then delivers.
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", model.OrderStatusPaid).Error)
	require.NoError(t, f.orderService.MarkShipped(order.ID))
	require.NoError(t, f.orderService.MarkDelivered(order.ID))

	stored, err := f.orderService.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, stored.Status)

	// DELIVERED is terminal.
	err = f.orderService.Cancel(order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Cancel_Draft(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, _, err := f.orderService.Checkout(f.checkoutInput(1))
	require.NoError(t, err)

	require.NoError(t, f.orderService.Cancel(order.ID))

	stored, err := f.orderService.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, stored.Status)
}

func TestOrderService_Transition_SelfIsNoOp(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, _, err := f.orderService.Checkout(f.checkoutInput(1))
	require.NoError(t, err)

	require.NoError(t, f.orderService.Cancel(order.ID))
	// Cancelling again is idempotent, not an error.
	require.NoError(t, f.orderService.Cancel(order.ID))
}
