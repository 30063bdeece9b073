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

func setupPricingServiceTest(t *testing.T) (PricingService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	return NewPricingService(productRepo, variantRepo), testDB
}

func createProductWithVariant(t *testing.T, testDB *gorm.DB, price float64, salePrice *float64, priceDiff float64) (*model.Product, *model.Variant) {
	t.Helper()

	product := &model.Product{
		Name:      "Zapatilla Test",
		Brand:     "Nike",
		Category:  "Running",
		Price:     price,
		SalePrice: salePrice,
		Currency:  "ARS",
		Sizes:     []string{"42"},
		Colors:    []string{"Negro"},
	}
	require.NoError(t, testDB.Create(product).Error)

	variant := &model.Variant{
		ProductID: product.ID,
		Size:      "42",
		Color:     "Negro",
		PriceDiff: priceDiff,
		Stock:     10,
	}
	require.NoError(t, testDB.Create(variant).Error)
	return product, variant
}

func TestPricingService_ResolvePrice_BasePrice(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	product, variant := createProductWithVariant(t, testDB, 100, nil, 0)

	price, err := pricing.ResolvePrice(product.ID, "42", "Negro")
	require.NoError(t, err)
	assert.Equal(t, 100.0, price.UnitPrice)
	assert.Equal(t, product.ID, price.ProductID)
	assert.Equal(t, variant.ID, price.VariantID)
	assert.Equal(t, "ARS", price.Currency)
}

func TestPricingService_ResolvePrice_SalePriceWins(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	sale := 80.0
	product, _ := createProductWithVariant(t, testDB, 100, &sale, 0)

	price, err := pricing.ResolvePrice(product.ID, "42", "Negro")
	require.NoError(t, err)
	assert.Equal(t, 80.0, price.UnitPrice)
}

func TestPricingService_ResolvePrice_VariantDelta(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	sale := 80.0
	product, _ := createProductWithVariant(t, testDB, 100, &sale, 15)

	// Delta applies on top of the effective (sale) price.
	price, err := pricing.ResolvePrice(product.ID, "42", "Negro")
	require.NoError(t, err)
	assert.Equal(t, 95.0, price.UnitPrice)
}

func TestPricingService_ResolvePrice_NegativeDeltaClampsAtZero(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	product, _ := createProductWithVariant(t, testDB, 100, nil, -150)

	price, err := pricing.ResolvePrice(product.ID, "42", "Negro")
	require.NoError(t, err)
	assert.Equal(t, 0.0, price.UnitPrice)
}

func TestPricingService_ResolvePrice_ProductNotFound(t *testing.T) {
	pricing, _ := setupPricingServiceTest(t)

	_, err := pricing.ResolvePrice(9999, "42", "Negro")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPricingService_ResolvePrice_VariantNotFound(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	product, _ := createProductWithVariant(t, testDB, 100, nil, 0)

	_, err := pricing.ResolvePrice(product.ID, "45", "Verde")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestPricingService_ResolvePriceByVariant(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	product, variant := createProductWithVariant(t, testDB, 100, nil, 20)

	price, err := pricing.ResolvePriceByVariant(product.ID, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, price.UnitPrice)
}

func TestPricingService_ResolvePriceByVariant_WrongProduct(t *testing.T) {
	pricing, testDB := setupPricingServiceTest(t)
	_, variant := createProductWithVariant(t, testDB, 100, nil, 0)

	other := &model.Product{
		Name:     "Otra Zapatilla",
		Price:    200,
		Currency: "ARS",
		Sizes:    []string{"40"},
		Colors:   []string{"Blanco"},
	}
	require.NoError(t, testDB.Create(other).Error)

	_, err := pricing.ResolvePriceByVariant(other.ID, variant.ID)
	assert.ErrorIs(t, err, ErrVariantNotFound)
}
