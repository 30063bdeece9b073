package service

import (
	"context"
	"errors"
	"time"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

// errStockShort aborts the reconcile transaction when a conditional
// decrement finds less stock than the order needs.
var errStockShort = errors.New("insufficient stock at payment confirmation")

// ReconcileResult reports what one notification actually changed.
// Applied is false for the no-op cases: duplicate delivery, unknown
// payment reference, terminal order.
type ReconcileResult struct {
	Applied       bool
	PaymentStatus model.PaymentStatus
	OrderStatus   model.OrderStatus
	Note          string
}

type ReconcileService interface {
	// ApplyNotification applies one normalized provider notification to
	// payment and order state. Duplicate deliveries, unknown references
	// and terminal orders are logged no-ops, never errors, because
	// provider retries are routine. The order transition and its stock
	// decrement commit atomically or not at all.
	ApplyNotification(n *ProviderNotification) (*ReconcileResult, error)
	// SweepStaleOrders polls providers for orders stuck in a non-final
	// payment state longer than maxAge, recovering from missed webhooks.
	SweepStaleOrders(ctx context.Context, maxAge time.Duration) error
}

type reconcileService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	variantRepo repository.VariantRepository
	providers   map[string]PaymentProvider
}

func NewReconcileService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	variantRepo repository.VariantRepository,
	providers ...PaymentProvider,
) ReconcileService {
	byName := make(map[string]PaymentProvider, len(providers))
	for _, provider := range providers {
		byName[provider.Name()] = provider
	}
	return &reconcileService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		variantRepo: variantRepo,
		providers:   byName,
	}
}

func paymentStatusFor(kind ProviderStatusKind) model.PaymentStatus {
	switch kind {
	case ProviderApproved:
		return model.PaymentStatusSucceeded
	case ProviderPending:
		return model.PaymentStatusProcessing
	case ProviderRejected:
		return model.PaymentStatusFailed
	case ProviderCancelled:
		return model.PaymentStatusCancelled
	case ProviderRefunded:
		return model.PaymentStatusRefunded
	case ProviderDisputed:
		return model.PaymentStatusDisputed
	}
	return model.PaymentStatusRequiresAction
}

func orderStatusFor(kind ProviderStatusKind) model.OrderStatus {
	switch kind {
	case ProviderApproved:
		return model.OrderStatusPaid
	case ProviderPending:
		return model.OrderStatusProcessing
	case ProviderRejected:
		return model.OrderStatusFailed
	case ProviderCancelled:
		return model.OrderStatusCancelled
	case ProviderRefunded:
		return model.OrderStatusRefunded
	case ProviderDisputed:
		return model.OrderStatusDisputed
	}
	// Unknown provider statuses park the order rather than guessing.
	return model.OrderStatusRequiresAction
}

func (s *reconcileService) ApplyNotification(n *ProviderNotification) (*ReconcileResult, error) {
	logger.Info("Applying payment notification", map[string]interface{}{
		"provider":        n.Provider,
		"provider_ref_id": n.ProviderRefID,
		"status":          n.Status.Kind,
		"raw_status":      n.Status.Raw,
	})

	payment, err := s.findOrCreatePayment(n)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		// Unknown reference with no resolvable order: a provider retry
		// for something we never created. Not an error.
		logger.Warn("Ignoring notification for unknown payment", map[string]interface{}{
			"provider":        n.Provider,
			"provider_ref_id": n.ProviderRefID,
		})
		return &ReconcileResult{Note: "unknown payment reference"}, nil
	}

	targetPayment := paymentStatusFor(n.Status.Kind)
	if payment.Status == targetPayment {
		// Duplicate delivery. The first application already ran the side
		// effects; this one must not.
		return &ReconcileResult{
			PaymentStatus: payment.Status,
			Note:          "duplicate notification",
		}, nil
	}

	order, err := s.orderRepo.FindByID(payment.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Ignoring notification for missing order", map[string]interface{}{
				"provider_ref_id": n.ProviderRefID,
				"order_id":        payment.OrderID,
			})
			return &ReconcileResult{Note: "order not found"}, nil
		}
		return nil, err
	}

	if order.Status.IsTerminal() {
		logger.Warn("Ignoring notification for terminal order", map[string]interface{}{
			"order_id":        order.ID,
			"order_status":    order.Status,
			"provider_ref_id": n.ProviderRefID,
		})
		return &ReconcileResult{
			PaymentStatus: payment.Status,
			OrderStatus:   order.Status,
			Note:          "order already terminal",
		}, nil
	}

	targetOrder := orderStatusFor(n.Status.Kind)
	transitionOrder := order.Status != targetOrder && order.Status.CanTransition(targetOrder)
	if order.Status != targetOrder && !transitionOrder {
		logger.Warn("Notification implies illegal order transition, updating payment only", map[string]interface{}{
			"order_id": order.ID,
			"from":     order.Status,
			"to":       targetOrder,
		})
	}

	becomesPaid := transitionOrder && targetOrder == model.OrderStatusPaid

	err = s.apply(order, payment, targetPayment, targetOrder, transitionOrder, becomesPaid)
	if errors.Is(err, errStockShort) {
		// Funds collected but the shelf is empty: park the order for a
		// human instead of overselling.
		logger.Error("Stock insufficient at payment confirmation", err, map[string]interface{}{
			"order_id":        order.ID,
			"provider_ref_id": n.ProviderRefID,
		})
		parkTarget := model.OrderStatusRequiresAction
		park := order.Status != parkTarget && order.Status.CanTransition(parkTarget)
		if err := s.apply(order, payment, targetPayment, parkTarget, park, false); err != nil {
			return nil, err
		}
		return &ReconcileResult{
			Applied:       true,
			PaymentStatus: targetPayment,
			OrderStatus:   parkTarget,
			Note:          "stock short, order parked",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		Applied:       true,
		PaymentStatus: targetPayment,
		OrderStatus:   order.Status,
	}
	if transitionOrder {
		result.OrderStatus = targetOrder
	}

	logger.Info("Payment notification applied", map[string]interface{}{
		"order_id":        order.ID,
		"provider_ref_id": n.ProviderRefID,
		"payment_status":  result.PaymentStatus,
		"order_status":    result.OrderStatus,
	})
	return result, nil
}

// findOrCreatePayment resolves the notification's payment row. Redirect
// providers have no row until the first notification arrives, so one is
// created then, bound to the order the notification names.
func (s *reconcileService) findOrCreatePayment(n *ProviderNotification) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByProviderRef(n.ProviderRefID)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if n.OrderID == 0 {
		return nil, nil
	}
	if _, err := s.orderRepo.FindByID(n.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	payment = &model.Payment{
		OrderID:       n.OrderID,
		Provider:      n.Provider,
		ProviderRefID: n.ProviderRefID,
		Amount:        n.Amount,
		Currency:      n.Currency,
		Status:        model.PaymentStatusRequiresAction,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// apply commits the payment update, the order transition and, on a PAID
// transition, the stock decrement as one transaction.
func (s *reconcileService) apply(
	order *model.Order,
	payment *model.Payment,
	targetPayment model.PaymentStatus,
	targetOrder model.OrderStatus,
	transitionOrder bool,
	decrementStock bool,
) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		paymentUpdates := map[string]interface{}{"status": targetPayment}
		switch targetPayment {
		case model.PaymentStatusSucceeded:
			paymentUpdates["paid_at"] = now
		case model.PaymentStatusFailed:
			paymentUpdates["failed_at"] = now
		}
		if err := tx.Model(&model.Payment{}).
			Where("id = ?", payment.ID).
			Updates(paymentUpdates).Error; err != nil {
			return err
		}

		if transitionOrder {
			orderUpdates := map[string]interface{}{"status": targetOrder}
			if targetOrder == model.OrderStatusPaid {
				orderUpdates["paid_at"] = now
			}
			if err := tx.Model(&model.Order{}).
				Where("id = ?", order.ID).
				Updates(orderUpdates).Error; err != nil {
				return err
			}
		}

		if decrementStock {
			for _, item := range order.OrderItems {
				ok, err := s.variantRepo.DecrementStock(tx, item.VariantID, item.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return errStockShort
				}
			}
		}

		return nil
	})
}

func (s *reconcileService) SweepStaleOrders(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	orders, err := s.orderRepo.FindStaleByStatus([]model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusProcessing,
		model.OrderStatusRequiresAction,
	}, cutoff)
	if err != nil {
		return err
	}

	logger.Info("Sweeping stale orders", map[string]interface{}{
		"count":  len(orders),
		"cutoff": cutoff,
	})

	for i := range orders {
		order := &orders[i]
		seen := make(map[string]bool)

		// Poll the payment attempts we already know about.
		for _, payment := range order.Payments {
			provider, ok := s.providers[payment.Provider]
			if !ok {
				continue
			}
			seen[payment.ProviderRefID] = true

			status, err := provider.GetPaymentStatus(ctx, payment.ProviderRefID)
			if err != nil {
				logger.Error("Failed to poll payment status", err, map[string]interface{}{
					"order_id":        order.ID,
					"provider_ref_id": payment.ProviderRefID,
				})
				continue
			}

			if _, err := s.ApplyNotification(&ProviderNotification{
				Provider:      payment.Provider,
				ProviderRefID: payment.ProviderRefID,
				OrderID:       order.ID,
				Status:        status,
				Amount:        payment.Amount,
				Currency:      payment.Currency,
			}); err != nil {
				logger.Error("Failed to reconcile polled payment", err, map[string]interface{}{
					"order_id":        order.ID,
					"provider_ref_id": payment.ProviderRefID,
				})
			}
		}

		// Ask providers for attempts we never saw a webhook for.
		for _, provider := range s.providers {
			payments, err := provider.FindPaymentsForOrder(ctx, order.ID)
			if err != nil {
				logger.Error("Failed to search provider payments", err, map[string]interface{}{
					"order_id": order.ID,
					"provider": provider.Name(),
				})
				continue
			}
			for _, payment := range payments {
				if seen[payment.ProviderRefID] {
					continue
				}
				if _, err := s.ApplyNotification(&ProviderNotification{
					Provider:      provider.Name(),
					ProviderRefID: payment.ProviderRefID,
					OrderID:       order.ID,
					Status:        payment.Status,
					Amount:        payment.Amount,
					Currency:      payment.Currency,
				}); err != nil {
					logger.Error("Failed to reconcile discovered payment", err, map[string]interface{}{
						"order_id":        order.ID,
						"provider_ref_id": payment.ProviderRefID,
					})
				}
			}
		}
	}

	return nil
}
