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

func setupCartServiceTest(t *testing.T) (CartService, *model.User, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	pricing := NewPricingService(productRepo, variantRepo)
	stock := NewStockService(productRepo, variantRepo)
	cartService := NewCartService(cartRepo, productRepo, variantRepo, pricing, stock, testPolicy())

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:     "Zapatilla Test",
		Brand:    "Puma",
		Category: "Running",
		Price:    5000,
		Currency: "ARS",
		Sizes:    []string{"41", "42"},
		Colors:   []string{"Negro", "Blanco"},
	}
	require.NoError(t, testDB.Create(product).Error)

	variants := []*model.Variant{
		{ProductID: product.ID, Size: "42", Color: "Negro", Stock: 10},
		{ProductID: product.ID, Size: "41", Color: "Blanco", Stock: 3},
	}
	for _, variant := range variants {
		require.NoError(t, testDB.Create(variant).Error)
	}

	return cartService, user, product, testDB
}

func TestCartService_GetUserCart_Empty(t *testing.T) {
	cartService, user, _, _ := setupCartServiceTest(t)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
	assert.Equal(t, 0.0, summary.Totals.Subtotal)
}

func TestCartService_AddItem_Success(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 10, item.AvailableStock)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 10000.0, summary.Totals.Subtotal)
}

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)
	item, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 3)
	require.NoError(t, err)

	assert.Equal(t, 5, item.Quantity)

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Len(t, summary.Items, 1)
}

func TestCartService_AddItem_DifferentVariantIsNewLine(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 1)
	require.NoError(t, err)
	_, err = cartService.AddItem(user.ID, product.ID, "41", "Blanco", 1)
	require.NoError(t, err)

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Len(t, summary.Items, 2)
}

func TestCartService_AddItem_InsufficientStock(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "41", "Blanco", 5)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Nothing was persisted.
	summary, _ := cartService.GetUserCart(user.ID)
	assert.Len(t, summary.Items, 0)
}

func TestCartService_AddItem_MergedQuantityValidatedAgainstStock(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "41", "Blanco", 2)
	require.NoError(t, err)

	// 2 already in the cart + 2 more = 4, above the 3 in stock.
	_, err = cartService.AddItem(user.ID, product.ID, "41", "Blanco", 2)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// The existing line keeps its quantity.
	summary, _ := cartService.GetUserCart(user.ID)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
}

func TestCartService_AddItem_InvalidSelection(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, 9999, "42", "Negro", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = cartService.AddItem(user.ID, product.ID, "45", "Negro", 1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = cartService.AddItem(user.ID, product.ID, "42", "Verde", 1)
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestCartService_UpdateQuantity_Success(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateQuantity(user.ID, item.ID, 7))

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Equal(t, 7, summary.Items[0].Quantity)
}

func TestCartService_UpdateQuantity_InsufficientStockKeepsLine(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, "41", "Blanco", 1)
	require.NoError(t, err)

	err = cartService.UpdateQuantity(user.ID, item.ID, 5)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Equal(t, 1, summary.Items[0].Quantity)
}

func TestCartService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateQuantity(user.ID, item.ID, 0))

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Len(t, summary.Items, 0)
}

func TestCartService_UpdateQuantity_NotFound(t *testing.T) {
	cartService, user, _, _ := setupCartServiceTest(t)

	err := cartService.UpdateQuantity(user.ID, 9999, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveItem_WrongUser(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)

	err = cartService.RemoveItem(user.ID+1, item.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_Clear_Idempotent(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 2)
	require.NoError(t, err)

	require.NoError(t, cartService.Clear(user.ID))
	require.NoError(t, cartService.Clear(user.ID))

	summary, _ := cartService.GetUserCart(user.ID)
	assert.Len(t, summary.Items, 0)
}

func TestCartService_MergeGuestCart_SumsAndClamps(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 4)
	require.NoError(t, err)

	summary, err := cartService.MergeGuestCart(user.ID, []MergeLine{
		{ProductID: product.ID, Size: "42", Color: "Negro", Quantity: 3},
	})
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 7, summary.Items[0].Quantity)
}

func TestCartService_MergeGuestCart_ClampsToAvailableStock(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	summary, err := cartService.MergeGuestCart(user.ID, []MergeLine{
		{ProductID: product.ID, Size: "41", Color: "Blanco", Quantity: 8},
	})
	require.NoError(t, err)

	// Only 3 in stock; the merge keeps what stock allows.
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
}

func TestCartService_MergeGuestCart_DropsInvalidLines(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	summary, err := cartService.MergeGuestCart(user.ID, []MergeLine{
		{ProductID: 9999, Size: "42", Color: "Negro", Quantity: 1},
		{ProductID: product.ID, Size: "42", Color: "Negro", Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, product.ID, summary.Items[0].ProductID)
}

func TestCartService_MergeGuestCart_ReportsClampWarnings(t *testing.T) {
	cartService, user, product, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, "42", "Negro", 8)
	require.NoError(t, err)

	summary, err := cartService.MergeGuestCart(user.ID, []MergeLine{
		{ProductID: product.ID, Size: "42", Color: "Negro", Quantity: 15},
	})
	require.NoError(t, err)

	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, 23, summary.Warnings[0].Requested)
	assert.Equal(t, model.MaxQuantityPerLine, summary.Warnings[0].Applied)
}

func TestCartService_PriceGuestCart(t *testing.T) {
	cartService, _, product, _ := setupCartServiceTest(t)

	batch, totals, err := cartService.PriceGuestCart([]MergeLine{
		{ProductID: product.ID, Size: "42", Color: "Negro", Quantity: 2},
		{ProductID: 9999, Size: "42", Color: "Negro", Quantity: 1},
	})
	require.NoError(t, err)

	assert.False(t, batch.Valid)
	// Only the valid line is priced: 2 x 5000 below the threshold.
	assert.Equal(t, 10000.0, totals.Subtotal)
	assert.Equal(t, 1500.0, totals.Shipping)
}
