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

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CheckoutRequest struct {
	ContactName  string `json:"contact_name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	ContactPhone string `json:"contact_phone"`
	ShippingAddr string `json:"shipping_address" binding:"required"`
}

// Checkout turns the current cart into an order with frozen prices.
// Authenticated users check out their durable cart; guests the cookie
// cart, which is cleared once the order exists.
// POST /api/v1/orders
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Faltan datos de contacto o envío")
		return
	}

	input := service.CheckoutInput{
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		ShippingAddr: req.ShippingAddr,
	}

	var (
		order    *model.Order
		warnings []service.ClampWarning
		err      error
	)
	if userID, authed := middleware.GetUserID(c); authed {
		order, warnings, err = ctrl.orderService.CheckoutFromCart(userID, input)
	} else {
		cart := cartcookie.FromRequest(c)
		input.Lines = cookieLines(cart)
		order, warnings, err = ctrl.orderService.Checkout(input)
		if err == nil {
			cartcookie.Clear(c)
		}
	}

	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			apperrors.BadRequest(c, apperrors.CartEmpty, "El carrito está vacío")
			return
		}
		respondCartError(c, err, 0)
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})
	response := gin.H{
		"order": order,
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}
	c.JSON(http.StatusCreated, response)
}

// GetOrder returns one order for status polling. Polling is read-only: an
// order stuck waiting on its provider stays PENDING until a notification
// or admin action moves it.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	var order *model.Order
	if userID, authed := middleware.GetUserID(c); authed {
		order, err = ctrl.orderService.GetUserOrder(userID, uint(id))
	} else {
		// Guest orders are only addressable with the contact email they
		// were placed under.
		order, err = ctrl.orderService.GetOrder(uint(id))
		if err == nil && (order.UserID != nil || order.ContactEmail != c.Query("email")) {
			err = service.ErrOrderNotFound
		}
	}
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "El pedido no existe")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// ListMyOrders returns the authenticated user's orders
// GET /api/v1/orders
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.ListUserOrders(userID)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}
