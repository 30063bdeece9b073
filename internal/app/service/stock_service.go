package service

import (
	"errors"
	"fmt"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidSize  = errors.New("size not offered by product")
	ErrInvalidColor = errors.New("color not offered by product")
)

// InsufficientStockError reports a requested quantity above what the
// variant can satisfy. Available is exposed so the UI can offer
// "add N instead".
type InsufficientStockError struct {
	ProductID uint
	Size      string
	Color     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Available <= 0 {
		return "producto sin stock disponible"
	}
	return fmt.Sprintf("solo quedan %d unidades disponibles", e.Available)
}

// LineValidation is the per-line outcome of stock validation. For a valid
// line, AvailableStock lets callers render "N left"; for an invalid one,
// Err carries the first failing check.
type LineValidation struct {
	Line           MergeLine
	VariantID      uint
	AvailableStock int
	Valid          bool
	Err            error
}

// BatchValidation aggregates per-line results; one bad line never aborts
// the rest of the batch.
type BatchValidation struct {
	Valid bool
	Lines []LineValidation
}

func (b *BatchValidation) Errors() []error {
	var errs []error
	for _, line := range b.Lines {
		if line.Err != nil {
			errs = append(errs, line.Err)
		}
	}
	return errs
}

type StockService interface {
	// Validate checks one line against the catalog and current stock:
	// product exists, size offered, color offered, variant exists,
	// stock covers the quantity. The first failing check wins. This is
	// an advisory read; nothing is reserved.
	Validate(line MergeLine) (*LineValidation, error)
	// ValidateAll validates each line independently and reports all
	// failures, not just the first.
	ValidateAll(lines []MergeLine) (*BatchValidation, error)
}

type stockService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

func NewStockService(productRepo repository.ProductRepository, variantRepo repository.VariantRepository) StockService {
	return &stockService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

func (s *stockService) Validate(line MergeLine) (*LineValidation, error) {
	result := &LineValidation{Line: line}

	product, err := s.productRepo.FindByID(line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Err = ErrProductNotFound
			return result, nil
		}
		logger.Error("Failed to fetch product for stock validation", err, map[string]interface{}{
			"product_id": line.ProductID,
		})
		return nil, err
	}

	if !product.HasSize(line.Size) {
		result.Err = ErrInvalidSize
		return result, nil
	}
	if !product.HasColor(line.Color) {
		result.Err = ErrInvalidColor
		return result, nil
	}

	variant, err := s.variantRepo.FindByIdentity(line.ProductID, line.Size, line.Color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("No variant for advertised size/color combination", map[string]interface{}{
				"product_id": line.ProductID,
				"size":       line.Size,
				"color":      line.Color,
			})
			result.Err = ErrVariantNotFound
			return result, nil
		}
		return nil, err
	}

	result.VariantID = variant.ID
	result.AvailableStock = variant.Stock

	if variant.Stock < line.Quantity {
		result.Err = &InsufficientStockError{
			ProductID: line.ProductID,
			Size:      line.Size,
			Color:     line.Color,
			Requested: line.Quantity,
			Available: variant.Stock,
		}
		return result, nil
	}

	result.Valid = true
	return result, nil
}

func (s *stockService) ValidateAll(lines []MergeLine) (*BatchValidation, error) {
	batch := &BatchValidation{Valid: true, Lines: make([]LineValidation, 0, len(lines))}
	for _, line := range lines {
		validation, err := s.Validate(line)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			batch.Valid = false
		}
		batch.Lines = append(batch.Lines, *validation)
	}
	return batch, nil
}

// MaxQuantity is a convenience for callers clamping an increment: the cap
// or the available stock, whichever is smaller.
func MaxQuantity(available int) int {
	if available > model.MaxQuantityPerLine {
		return model.MaxQuantityPerLine
	}
	if available < 0 {
		return 0
	}
	return available
}
