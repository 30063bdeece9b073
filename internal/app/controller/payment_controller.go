package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	apperrors "github.com/gustavo180591/ecommerce-zapatillas/internal/errors"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/mercadopago"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/payment/stripe"
)

type PaymentController struct {
	paymentService   service.PaymentService
	reconcileService service.ReconcileService
	mercadoPago      *service.MercadoPagoProvider
}

func NewPaymentController(
	paymentService service.PaymentService,
	reconcileService service.ReconcileService,
	mercadoPago *service.MercadoPagoProvider,
) *PaymentController {
	return &PaymentController{
		paymentService:   paymentService,
		reconcileService: reconcileService,
		mercadoPago:      mercadoPago,
	}
}

type CreatePaymentRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// CreatePayment starts a payment attempt for an order
// POST /api/v1/orders/:id/payments
func (ctrl *PaymentController) CreatePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Debés indicar el medio de pago")
		return
	}

	intent, err := ctrl.paymentService.CreateIntent(c.Request.Context(), uint(orderID), req.Provider)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			apperrors.BadRequest(c, apperrors.PaymentInvalidProvider, "Medio de pago desconocido")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "El pedido no existe")
		case errors.Is(err, service.ErrOrderNotPayable):
			apperrors.Conflict(c, apperrors.PaymentAlreadyProcessed, "El pedido no admite un nuevo pago")
		default:
			// Provider payloads never reach the client.
			log.Error("Payment intent creation failed", err, map[string]interface{}{
				"order_id": orderID,
				"provider": req.Provider,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentProviderError, "No pudimos iniciar el pago. Intentá de nuevo")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment": intent,
	})
}

// ListOrderPayments returns the payment attempts of an order
// GET /api/v1/orders/:id/payments
func (ctrl *PaymentController) ListOrderPayments(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	payments, err := ctrl.paymentService.ListOrderPayments(uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "El pedido no existe")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
	})
}

// MercadoPagoWebhook receives Mercado Pago payment notifications. The
// handler always answers 200 for notifications it understood, including
// duplicates and references it does not know, because the provider retries
// anything else.
// POST /api/v1/webhooks/mercadopago
func (ctrl *PaymentController) MercadoPagoWebhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var notification mercadopago.WebhookNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		log.Warn("Malformed Mercado Pago webhook", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored"})
		return
	}

	if notification.Type != "payment" || notification.Data.ID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	resolved, err := ctrl.mercadoPago.ResolveNotification(c.Request.Context(), notification.Data.ID)
	if err != nil {
		log.Error("Failed to resolve Mercado Pago notification", err, map[string]interface{}{
			"payment_id": notification.Data.ID,
		})
		// Non-200 so the provider retries once the API is reachable.
		c.JSON(http.StatusBadGateway, gin.H{"status": "retry"})
		return
	}

	result, err := ctrl.reconcileService.ApplyNotification(resolved)
	if err != nil {
		log.Error("Failed to apply Mercado Pago notification", err, map[string]interface{}{
			"provider_ref_id": resolved.ProviderRefID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"status": "retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"applied": result.Applied,
	})
}

// StripeWebhook receives Stripe payment intent events
// POST /api/v1/webhooks/stripe
func (ctrl *PaymentController) StripeWebhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var event stripe.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Warn("Malformed Stripe webhook", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored"})
		return
	}

	if event.Data.Object.ID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	result, err := ctrl.reconcileService.ApplyNotification(service.NotificationFromStripeEvent(event))
	if err != nil {
		log.Error("Failed to apply Stripe event", err, map[string]interface{}{
			"event_id": event.ID,
			"type":     event.Type,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"status": "retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"applied": result.Applied,
	})
}
