package service

import (
	"errors"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found for product")
)

// ResolvedPrice is the outcome of pricing one (product, size, color)
// selection: the unit price a cart or order line should carry.
type ResolvedPrice struct {
	ProductID uint    `json:"product_id"`
	VariantID uint    `json:"variant_id"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

type PricingService interface {
	// ResolvePrice computes the effective unit price for a selection:
	// (sale price if set, base price otherwise) plus the variant's
	// delta, clamped at zero. Read-only.
	ResolvePrice(productID uint, size, color string) (*ResolvedPrice, error)
	// ResolvePriceByVariant is the variant-id form of ResolvePrice. The
	// variant must belong to the given product.
	ResolvePriceByVariant(productID, variantID uint) (*ResolvedPrice, error)
}

type pricingService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

func NewPricingService(productRepo repository.ProductRepository, variantRepo repository.VariantRepository) PricingService {
	return &pricingService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

func (s *pricingService) ResolvePrice(productID uint, size, color string) (*ResolvedPrice, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for pricing", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	variant, err := s.variantRepo.FindByIdentity(productID, size, color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Variant not found for pricing", map[string]interface{}{
				"product_id": productID,
				"size":       size,
				"color":      color,
			})
			return nil, ErrVariantNotFound
		}
		return nil, err
	}

	return s.price(product, variant), nil
}

func (s *pricingService) ResolvePriceByVariant(productID, variantID uint) (*ResolvedPrice, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	variant, err := s.variantRepo.FindByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	if variant.ProductID != productID {
		logger.Warn("Variant does not belong to product", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
		})
		return nil, ErrVariantNotFound
	}

	return s.price(product, variant), nil
}

func (s *pricingService) price(product *model.Product, variant *model.Variant) *ResolvedPrice {
	unitPrice := product.EffectivePrice() + variant.PriceDiff
	// A large negative delta never produces a negative price.
	if unitPrice < 0 {
		unitPrice = 0
	}
	return &ResolvedPrice{
		ProductID: product.ID,
		VariantID: variant.ID,
		UnitPrice: unitPrice,
		Currency:  product.Currency,
	}
}
