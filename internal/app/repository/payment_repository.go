package repository

import (
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindByProviderRef(providerRefID string) (*model.Payment, error)
	FindByOrderID(orderID uint) ([]model.Payment, error)
	Update(payment *model.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *model.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		logger.Error("Failed to create payment in database", err, map[string]interface{}{
			"order_id":        payment.OrderID,
			"provider":        payment.Provider,
			"provider_ref_id": payment.ProviderRefID,
		})
		return err
	}

	logger.Debug("Payment created in database", map[string]interface{}{
		"payment_id":      payment.ID,
		"provider_ref_id": payment.ProviderRefID,
	})
	return nil
}

func (r *paymentRepository) FindByProviderRef(providerRefID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("provider_ref_id = ?", providerRefID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByOrderID(orderID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		logger.Error("Failed to find payments by order ID in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Update(payment *model.Payment) error {
	if err := r.db.Save(payment).Error; err != nil {
		logger.Error("Failed to update payment in database", err, map[string]interface{}{
			"payment_id": payment.ID,
		})
		return err
	}
	return nil
}
