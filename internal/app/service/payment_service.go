package service

import (
	"context"
	"errors"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUnknownProvider     = errors.New("unknown payment provider")
	ErrOrderNotPayable     = errors.New("order is not in a payable state")
	ErrPaymentAlreadyFinal = errors.New("payment already reached a final state")
)

type PaymentService interface {
	// CreateIntent starts a payment attempt for an order with the named
	// provider. A DRAFT order moves to PENDING; FAILED orders retry
	// without a new order. Providers that assign a reference at intent
	// time get a Payment row immediately; redirect providers get theirs
	// when the first notification arrives.
	CreateIntent(ctx context.Context, orderID uint, providerName string) (*PaymentIntentResult, error)
	ListOrderPayments(orderID uint) ([]model.Payment, error)
	Provider(name string) (PaymentProvider, bool)
	Providers() []PaymentProvider
}

type paymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	providers   map[string]PaymentProvider
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	providers ...PaymentProvider,
) PaymentService {
	byName := make(map[string]PaymentProvider, len(providers))
	for _, provider := range providers {
		byName[provider.Name()] = provider
	}
	return &paymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		providers:   byName,
	}
}

func (s *paymentService) Provider(name string) (PaymentProvider, bool) {
	provider, ok := s.providers[name]
	return provider, ok
}

func (s *paymentService) Providers() []PaymentProvider {
	list := make([]PaymentProvider, 0, len(s.providers))
	for _, provider := range s.providers {
		list = append(list, provider)
	}
	return list
}

func (s *paymentService) CreateIntent(ctx context.Context, orderID uint, providerName string) (*PaymentIntentResult, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, ErrUnknownProvider
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	switch order.Status {
	case model.OrderStatusDraft, model.OrderStatusPending, model.OrderStatusFailed:
		// payable, possibly a retry
	default:
		logger.Warn("Payment intent rejected for order status", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotPayable
	}

	logger.Info("Creating payment intent", map[string]interface{}{
		"order_id": orderID,
		"provider": providerName,
		"amount":   order.Total,
	})

	intent, err := provider.CreateIntent(ctx, order)
	if err != nil {
		logger.Error("Payment provider rejected intent creation", err, map[string]interface{}{
			"order_id": orderID,
			"provider": providerName,
		})
		return nil, err
	}

	if order.Status == model.OrderStatusDraft {
		if err := s.orderRepo.UpdateStatus(orderID, model.OrderStatusPending); err != nil {
			return nil, err
		}
	}

	if intent.ProviderRefID != "" {
		payment := &model.Payment{
			OrderID:       orderID,
			Provider:      providerName,
			ProviderRefID: intent.ProviderRefID,
			Amount:        order.Total,
			Currency:      order.Currency,
			Status:        model.PaymentStatusRequiresAction,
		}
		if err := s.paymentRepo.Create(payment); err != nil {
			return nil, err
		}
	}

	return intent, nil
}

func (s *paymentService) ListOrderPayments(orderID uint) ([]model.Payment, error) {
	if _, err := s.orderRepo.FindByID(orderID); err != nil {
		return nil, ErrOrderNotFound
	}
	return s.paymentRepo.FindByOrderID(orderID)
}
