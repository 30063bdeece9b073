package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	apperrors "github.com/gustavo180591/ecommerce-zapatillas/internal/errors"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/cartcookie"
)

// CartController serves both cart flavors behind the same routes: the
// durable cart when the request is authenticated, the cookie cart
// otherwise. Prices and stock for the cookie cart are always resolved
// server-side; the cookie only carries line identities.
type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the current cart with totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if userID, authed := middleware.GetUserID(c); authed {
		summary, err := ctrl.cartService.GetUserCart(userID)
		if err != nil {
			log.Error("Failed to fetch cart", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart_items": summary.Items,
			"count":      len(summary.Items),
			"totals":     summary.Totals,
		})
		return
	}

	cart := cartcookie.FromRequest(c)
	batch, totals, err := ctrl.cartService.PriceGuestCart(cookieLines(cart))
	if err != nil {
		log.Error("Failed to price guest cart", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_id":    cart.ID,
		"cart_items": batch.Lines,
		"count":      len(cart.Items),
		"totals":     totals,
	})
}

// AddToCart adds an item to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos enviados no son válidos")
		return
	}

	if userID, authed := middleware.GetUserID(c); authed {
		item, err := ctrl.cartService.AddItem(userID, req.ProductID, req.Size, req.Color, req.Quantity)
		if err != nil {
			respondCartError(c, err, req.ProductID)
			return
		}

		log.Info("Item added to cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
			"quantity":   item.Quantity,
		})
		c.JSON(http.StatusCreated, gin.H{
			"message":   "Producto agregado al carrito",
			"cart_item": item,
		})
		return
	}

	ctrl.addToGuestCart(c, req)
}

func (ctrl *CartController) addToGuestCart(c *gin.Context, req AddToCartRequest) {
	log := middleware.GetLoggerFromContext(c)

	cart := cartcookie.FromRequest(c)

	merged := service.MergeLines(cookieLines(cart), []service.MergeLine{{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	}}, model.MaxQuantityPerLine)

	// Validate the post-merge quantities so the stored cookie never
	// promises more than the shelf holds.
	batch, _, err := ctrl.cartService.PriceGuestCart(merged.Lines)
	if err != nil {
		log.Error("Failed to validate guest cart", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	for _, line := range batch.Lines {
		if line.Err != nil && line.Line.ProductID == req.ProductID &&
			line.Line.Size == req.Size && line.Line.Color == req.Color {
			respondCartError(c, line.Err, req.ProductID)
			return
		}
	}

	cart.Items = itemsFromLines(merged.Lines)
	if err := cartcookie.Write(c, cart); err != nil {
		log.Error("Failed to write cart cookie", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Producto agregado al carrito",
		"cart_id":  cart.ID,
		"items":    cart.Items,
		"warnings": merged.Warnings,
	})
}

// UpdateCartItem changes a line's quantity; zero or less removes it. For
// authenticated carts the line is addressed by its id, for guest carts by
// its (product_id, size, color) identity in query parameters.
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos enviados no son válidos")
		return
	}

	if userID, authed := middleware.GetUserID(c); authed {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
			return
		}

		if err := ctrl.cartService.UpdateQuantity(userID, uint(id), req.Quantity); err != nil {
			respondCartError(c, err, 0)
			return
		}

		log.Info("Cart item updated", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": id,
			"quantity":     req.Quantity,
		})
		c.JSON(http.StatusOK, gin.H{"message": "Carrito actualizado"})
		return
	}

	ctrl.updateGuestCartItem(c, req.Quantity)
}

func (ctrl *CartController) updateGuestCartItem(c *gin.Context, quantity int) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}
	size := c.Query("size")
	color := c.Query("color")

	cart := cartcookie.FromRequest(c)
	found := false
	items := make([]cartcookie.Item, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID == uint(productID) && item.Size == size && item.Color == color {
			found = true
			if quantity <= 0 {
				continue
			}
			if quantity > model.MaxQuantityPerLine {
				quantity = model.MaxQuantityPerLine
			}
			item.Quantity = quantity
		}
		items = append(items, item)
	}
	if !found {
		apperrors.NotFound(c, apperrors.CartItemNotFound, "El producto no está en el carrito")
		return
	}

	if quantity > 0 {
		batch, _, err := ctrl.cartService.PriceGuestCart([]service.MergeLine{{
			ProductID: uint(productID),
			Size:      size,
			Color:     color,
			Quantity:  quantity,
		}})
		if err != nil {
			apperrors.InternalError(c, "")
			return
		}
		if len(batch.Lines) == 1 && batch.Lines[0].Err != nil {
			respondCartError(c, batch.Lines[0].Err, uint(productID))
			return
		}
	}

	cart.Items = items
	if err := cartcookie.Write(c, cart); err != nil {
		log.Error("Failed to write cart cookie", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Carrito actualizado",
		"items":   cart.Items,
	})
}

// RemoveCartItem deletes one line
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	if userID, authed := middleware.GetUserID(c); authed {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
			return
		}

		if err := ctrl.cartService.RemoveItem(userID, uint(id)); err != nil {
			respondCartError(c, err, 0)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado del carrito"})
		return
	}

	ctrl.updateGuestCartItem(c, 0)
}

// ClearCart empties the cart; clearing an empty cart succeeds too
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if userID, authed := middleware.GetUserID(c); authed {
		if err := ctrl.cartService.Clear(userID); err != nil {
			log.Error("Failed to clear cart", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Carrito vaciado"})
		return
	}

	cartcookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Carrito vaciado"})
}

func cookieLines(cart *cartcookie.Cart) []service.MergeLine {
	lines := make([]service.MergeLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, service.MergeLine{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func itemsFromLines(lines []service.MergeLine) []cartcookie.Item {
	items := make([]cartcookie.Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartcookie.Item{
			ProductID: line.ProductID,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// respondCartError maps cart and stock errors onto the API error codes.
func respondCartError(c *gin.Context, err error, productID uint) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
	case errors.Is(err, service.ErrVariantNotFound):
		apperrors.BadRequest(c, apperrors.VariantNotFound, "Esa combinación de talle y color no está disponible")
	case errors.Is(err, service.ErrInvalidSize):
		apperrors.BadRequest(c, apperrors.ProductInvalidSize, "Ese talle no está disponible para el producto")
	case errors.Is(err, service.ErrInvalidColor):
		apperrors.BadRequest(c, apperrors.ProductInvalidColor, "Ese color no está disponible para el producto")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.CartItemNotFound, "El producto no está en el carrito")
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     apperrors.ProductOutOfStock,
			"message":   stockMessage(stockErr),
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	default:
		log.Error("Cart operation failed", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
	}
}

func stockMessage(err *service.InsufficientStockError) string {
	if err.Available <= 0 {
		return "El producto está agotado"
	}
	if err.Available == 1 {
		return "Solo queda 1 unidad disponible"
	}
	return "Solo quedan " + strconv.Itoa(err.Available) + " unidades disponibles"
}
