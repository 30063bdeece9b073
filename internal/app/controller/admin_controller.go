package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	apperrors "github.com/gustavo180591/ecommerce-zapatillas/internal/errors"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
	"github.com/lib/pq"
)

// AdminController groups the back-office operations. Every route it serves
// sits behind the admin role check.
type AdminController struct {
	productService service.ProductService
	orderService   service.OrderService
}

func NewAdminController(productService service.ProductService, orderService service.OrderService) *AdminController {
	return &AdminController{
		productService: productService,
		orderService:   orderService,
	}
}

type AdjustStockRequest struct {
	Operation string `json:"operation" binding:"required,oneof=increment decrement set"`
	Quantity  int    `json:"quantity" binding:"required,gte=0"`
}

// AdjustStock applies an inventory operation to a variant. Decrements go
// through the same conditional primitive as checkout-time decrements, so
// an admin cannot push stock negative either.
// POST /api/v1/admin/variants/:id/stock
func (ctrl *AdminController) AdjustStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Operación de stock inválida")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	log.Info("Admin stock adjustment", map[string]interface{}{
		"admin_id":   adminID,
		"variant_id": variantID,
		"operation":  req.Operation,
		"quantity":   req.Quantity,
	})

	variant, err := ctrl.productService.AdjustStock(uint(variantID), repository.StockAdjustment(req.Operation), req.Quantity)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrVariantNotFound):
			apperrors.NotFound(c, apperrors.VariantNotFound, "La variante no existe")
		case errors.Is(err, service.ErrInvalidStockAdjustment):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Operación de stock inválida")
		case errors.As(err, &stockErr):
			apperrors.Conflict(c, apperrors.ProductStockConflict, "No hay stock suficiente para descontar")
		default:
			log.Error("Stock adjustment failed", err, map[string]interface{}{
				"variant_id": variantID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variant": variant,
	})
}

// ExportInventory streams the inventory as an xlsx workbook
// GET /api/v1/admin/inventory/export
func (ctrl *AdminController) ExportInventory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.productService.ExportInventoryXLSX()
	if err != nil {
		log.Error("Inventory export failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("inventario-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Brand       string   `json:"brand" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	SalePrice   *float64 `json:"sale_price"`
	Sizes       []string `json:"sizes" binding:"required,min=1"`
	Colors      []string `json:"colors" binding:"required,min=1"`
	ImageURL    string   `json:"image_url"`
}

// CreateProduct adds a catalog entry
// POST /api/v1/admin/products
func (ctrl *AdminController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos del producto no son válidos")
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Sizes:       pq.StringArray(req.Sizes),
		Colors:      pq.StringArray(req.Colors),
		ImageURL:    req.ImageURL,
	}
	if err := ctrl.productService.CreateProduct(product); err != nil {
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct edits a catalog entry
// PUT /api/v1/admin/products/:id
func (ctrl *AdminController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos del producto no son válidos")
		return
	}

	product := &model.Product{
		ID:          uint(id),
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Sizes:       pq.StringArray(req.Sizes),
		Colors:      pq.StringArray(req.Colors),
		ImageURL:    req.ImageURL,
	}
	if err := ctrl.productService.UpdateProduct(product); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a catalog entry
// DELETE /api/v1/admin/products/:id
func (ctrl *AdminController) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	if err := ctrl.productService.DeleteProduct(uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

// ShipOrder marks a paid order as dispatched
// PUT /api/v1/admin/orders/:id/ship
func (ctrl *AdminController) ShipOrder(c *gin.Context) {
	ctrl.transitionOrder(c, ctrl.orderService.MarkShipped)
}

// DeliverOrder marks a shipped order as delivered
// PUT /api/v1/admin/orders/:id/deliver
func (ctrl *AdminController) DeliverOrder(c *gin.Context) {
	ctrl.transitionOrder(c, ctrl.orderService.MarkDelivered)
}

// CancelOrder cancels a not-yet-paid order
// PUT /api/v1/admin/orders/:id/cancel
func (ctrl *AdminController) CancelOrder(c *gin.Context) {
	ctrl.transitionOrder(c, ctrl.orderService.Cancel)
}

func (ctrl *AdminController) transitionOrder(c *gin.Context, transition func(uint) error) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	if err := transition(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "El pedido no existe")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, "El pedido no admite ese cambio de estado")
		default:
			log.Error("Order transition failed", err, map[string]interface{}{
				"order_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	order, err := ctrl.orderService.GetOrder(uint(id))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
