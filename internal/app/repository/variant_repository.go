package repository

import (
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

// StockAdjustment is an admin inventory operation.
type StockAdjustment string

const (
	StockIncrement StockAdjustment = "increment"
	StockDecrement StockAdjustment = "decrement"
	StockSet       StockAdjustment = "set"
)

type VariantRepository interface {
	Create(variant *model.Variant) error
	FindByID(id uint) (*model.Variant, error)
	FindByProductID(productID uint) ([]model.Variant, error)
	FindByIdentity(productID uint, size, color string) (*model.Variant, error)
	FindAll() ([]model.Variant, error)
	Update(variant *model.Variant) error
	// DecrementStock performs the conditional atomic decrement
	// (stock = stock - qty only when stock >= qty). The boolean result
	// reports whether the decrement happened; false means insufficient
	// stock at commit time. Pass a transaction handle to make it part of
	// a larger atomic unit.
	DecrementStock(tx *gorm.DB, variantID uint, qty int) (bool, error)
	// AdjustStock applies an admin increment/decrement/set through the
	// same conditional primitive as checkout-time decrements.
	AdjustStock(variantID uint, op StockAdjustment, qty int) (bool, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(variant *model.Variant) error {
	if err := r.db.Create(variant).Error; err != nil {
		logger.Error("Failed to create variant in database", err, map[string]interface{}{
			"product_id": variant.ProductID,
			"size":       variant.Size,
			"color":      variant.Color,
		})
		return err
	}
	return nil
}

func (r *variantRepository) FindByID(id uint) (*model.Variant, error) {
	var variant model.Variant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByProductID(productID uint) ([]model.Variant, error) {
	var variants []model.Variant
	if err := r.db.Where("product_id = ?", productID).Order("size ASC, color ASC").Find(&variants).Error; err != nil {
		logger.Error("Failed to find variants by product in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) FindByIdentity(productID uint, size, color string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindAll() ([]model.Variant, error) {
	var variants []model.Variant
	if err := r.db.Preload("Product").Order("product_id ASC, size ASC, color ASC").Find(&variants).Error; err != nil {
		logger.Error("Failed to list variants in database", err, nil)
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) Update(variant *model.Variant) error {
	if err := r.db.Save(variant).Error; err != nil {
		logger.Error("Failed to update variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}
	return nil
}

func (r *variantRepository) DecrementStock(tx *gorm.DB, variantID uint, qty int) (bool, error) {
	if tx == nil {
		tx = r.db
	}

	// Decrement-if-available in one statement; an earlier validation read
	// is advisory only and is re-checked here at the point of commitment.
	result := tx.Model(&model.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		logger.Error("Failed to decrement variant stock", result.Error, map[string]interface{}{
			"variant_id": variantID,
			"quantity":   qty,
		})
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.Warn("Conditional stock decrement rejected", map[string]interface{}{
			"variant_id": variantID,
			"quantity":   qty,
		})
		return false, nil
	}
	return true, nil
}

func (r *variantRepository) AdjustStock(variantID uint, op StockAdjustment, qty int) (bool, error) {
	switch op {
	case StockIncrement:
		result := r.db.Model(&model.Variant{}).
			Where("id = ?", variantID).
			Update("stock", gorm.Expr("stock + ?", qty))
		if result.Error != nil {
			return false, result.Error
		}
		return result.RowsAffected > 0, nil
	case StockDecrement:
		return r.DecrementStock(nil, variantID, qty)
	case StockSet:
		result := r.db.Model(&model.Variant{}).
			Where("id = ?", variantID).
			Update("stock", qty)
		if result.Error != nil {
			return false, result.Error
		}
		return result.RowsAffected > 0, nil
	}
	return false, gorm.ErrInvalidData
}
