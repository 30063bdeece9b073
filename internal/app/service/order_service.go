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
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// CheckoutInput is everything order creation needs beyond the lines
// themselves. UserID is nil for guest checkout.
type CheckoutInput struct {
	UserID       *uint
	Lines        []MergeLine
	ContactName  string
	ContactEmail string
	ContactPhone string
	ShippingAddr string
}

type OrderService interface {
	// Checkout materializes a line set into a DRAFT order with frozen
	// unit prices and computed totals. Every line is validated first;
	// any invalid line aborts the checkout and nothing is persisted.
	// For an authenticated user the durable cart is cleared afterwards.
	// Returned warnings report lines whose quantity was clamped while
	// collapsing duplicates.
	Checkout(input CheckoutInput) (*model.Order, []ClampWarning, error)
	// CheckoutFromCart runs Checkout over the user's durable cart.
	CheckoutFromCart(userID uint, input CheckoutInput) (*model.Order, []ClampWarning, error)
	GetOrder(orderID uint) (*model.Order, error)
	// GetUserOrder fetches an order and verifies ownership.
	GetUserOrder(userID, orderID uint) (*model.Order, error)
	ListUserOrders(userID uint) ([]model.Order, error)
	// MarkShipped and MarkDelivered are the fulfillment transitions.
	MarkShipped(orderID uint) error
	MarkDelivered(orderID uint) error
	// Cancel is the administrative cancellation of a not-yet-paid order.
	Cancel(orderID uint) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	pricing   PricingService
	stock     StockService
	policy    TotalsPolicy
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	pricing PricingService,
	stock StockService,
	policy TotalsPolicy,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		pricing:   pricing,
		stock:     stock,
		policy:    policy,
	}
}

func (s *orderService) Checkout(input CheckoutInput) (*model.Order, []ClampWarning, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": input.UserID,
		"lines":   len(input.Lines),
	})

	if len(input.Lines) == 0 {
		return nil, nil, ErrCartEmpty
	}

	// Collapse duplicate identities before validating so the order ledger
	// carries at most one line per (product, size, color).
	merged := MergeLines(nil, input.Lines, model.MaxQuantityPerLine)

	batch, err := s.stock.ValidateAll(merged.Lines)
	if err != nil {
		return nil, nil, err
	}
	if !batch.Valid {
		for _, line := range batch.Lines {
			if line.Err != nil {
				logger.Warn("Checkout rejected by stock validation", map[string]interface{}{
					"product_id": line.Line.ProductID,
					"size":       line.Line.Size,
					"color":      line.Line.Color,
				})
				return nil, nil, line.Err
			}
		}
	}

	items := make([]model.OrderItem, 0, len(batch.Lines))
	priced := make([]PricedLine, 0, len(batch.Lines))
	for _, validation := range batch.Lines {
		price, err := s.pricing.ResolvePrice(validation.Line.ProductID, validation.Line.Size, validation.Line.Color)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, model.OrderItem{
			ProductID: validation.Line.ProductID,
			VariantID: validation.VariantID,
			Size:      validation.Line.Size,
			Color:     validation.Line.Color,
			Quantity:  validation.Line.Quantity,
			UnitPrice: price.UnitPrice,
		})
		priced = append(priced, PricedLine{UnitPrice: price.UnitPrice, Quantity: validation.Line.Quantity})
	}

	totals := s.policy.ComputeTotals(priced)

	order := &model.Order{
		UserID:       input.UserID,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		ShippingCost: totals.Shipping,
		Total:        totals.Total,
		Currency:     totals.Currency,
		Status:       model.OrderStatusDraft,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		ShippingAddr: input.ShippingAddr,
		OrderItems:   items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, nil, err
	}

	if input.UserID != nil {
		if err := s.cartRepo.DeleteByUserID(*input.UserID); err != nil {
			// The order exists; a leftover cart is recoverable, so log
			// instead of failing the checkout.
			logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
				"user_id":  *input.UserID,
				"order_id": order.ID,
			})
		}
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"currency": order.Currency,
	})
	return order, merged.Warnings, nil
}

func (s *orderService) CheckoutFromCart(userID uint, input CheckoutInput) (*model.Order, []ClampWarning, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]MergeLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, MergeLine{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}

	input.UserID = &userID
	input.Lines = lines
	return s.Checkout(input)
}

func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetUserOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) MarkShipped(orderID uint) error {
	return s.transition(orderID, model.OrderStatusShipped)
}

func (s *orderService) MarkDelivered(orderID uint) error {
	return s.transition(orderID, model.OrderStatusDelivered)
}

func (s *orderService) Cancel(orderID uint) error {
	return s.transition(orderID, model.OrderStatusCancelled)
}

func (s *orderService) transition(orderID uint, target model.OrderStatus) error {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}

	if order.Status == target {
		return nil
	}
	if !order.Status.CanTransition(target) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       target,
		})
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	if err := s.orderRepo.UpdateStatus(orderID, target); err != nil {
		return err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       target,
	})
	return nil
}
