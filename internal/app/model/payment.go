package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusRequiresAction    PaymentStatus = "REQUIRES_ACTION"
	PaymentStatusProcessing        PaymentStatus = "PROCESSING"
	PaymentStatusSucceeded         PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusCancelled         PaymentStatus = "CANCELLED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusDisputed          PaymentStatus = "DISPUTED"
)

// Payment records one attempt to collect funds for an order. An order may
// carry several attempts (retry after failure); ProviderRefID is the
// provider's identifier for the attempt and doubles as the idempotency key
// for webhook reconciliation.
type Payment struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OrderID       uint           `gorm:"not null;index" json:"order_id"`
	Provider      string         `gorm:"type:varchar(50);not null" json:"provider"`
	ProviderRefID string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"provider_ref_id"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Currency      string         `gorm:"type:varchar(3);default:'ARS'" json:"currency"`
	Status        PaymentStatus  `gorm:"type:varchar(20);default:'REQUIRES_ACTION'" json:"status"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	FailedAt      *time.Time     `json:"failed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
