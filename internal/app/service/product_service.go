package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrInvalidStockAdjustment = errors.New("invalid stock adjustment")

type ProductService interface {
	GetProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductVariants(productID uint) ([]model.Variant, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	// AdjustStock applies an admin inventory operation through the same
	// conditional primitive checkout-time decrements use.
	AdjustStock(variantID uint, op repository.StockAdjustment, qty int) (*model.Variant, error)
	// ExportInventoryXLSX renders the full variant inventory as an xlsx
	// workbook for the back office.
	ExportInventoryXLSX() ([]byte, error)
}

type productService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

func NewProductService(productRepo repository.ProductRepository, variantRepo repository.VariantRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

func (s *productService) GetProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.FindAll(filter)
	if err != nil {
		logger.Error("Failed to fetch products", err, map[string]interface{}{
			"filter": fmt.Sprintf("%+v", filter),
		})
		return nil, 0, err
	}
	return products, total, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductVariants(productID uint) ([]model.Variant, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	return s.variantRepo.FindByProductID(productID)
}

func (s *productService) CreateProduct(product *model.Product) error {
	return s.productRepo.Create(product)
}

func (s *productService) UpdateProduct(product *model.Product) error {
	if _, err := s.GetProductByID(product.ID); err != nil {
		return err
	}
	return s.productRepo.Update(product)
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.GetProductByID(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

func (s *productService) AdjustStock(variantID uint, op repository.StockAdjustment, qty int) (*model.Variant, error) {
	if qty < 0 {
		return nil, ErrInvalidStockAdjustment
	}

	logger.Info("Adjusting variant stock", map[string]interface{}{
		"variant_id": variantID,
		"operation":  op,
		"quantity":   qty,
	})

	variant, err := s.variantRepo.FindByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}

	ok, err := s.variantRepo.AdjustStock(variantID, op, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrInvalidData) {
			return nil, ErrInvalidStockAdjustment
		}
		return nil, err
	}
	if !ok {
		return nil, &InsufficientStockError{
			ProductID: variant.ProductID,
			Size:      variant.Size,
			Color:     variant.Color,
			Requested: qty,
			Available: variant.Stock,
		}
	}

	return s.variantRepo.FindByID(variantID)
}

func (s *productService) ExportInventoryXLSX() ([]byte, error) {
	variants, err := s.variantRepo.FindAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Producto", "Marca", "Talle", "Color", "Precio base", "Dif. variante", "Stock"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, variant := range variants {
		values := []interface{}{
			variant.Product.Name,
			variant.Product.Brand,
			variant.Size,
			variant.Color,
			variant.Product.Price,
			variant.PriceDiff,
			variant.Stock,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to render inventory workbook", err, nil)
		return nil, err
	}

	logger.Info("Inventory exported", map[string]interface{}{
		"variants": len(variants),
	})
	return buf.Bytes(), nil
}
