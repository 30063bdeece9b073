package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusDraft             OrderStatus = "DRAFT"              // created at checkout, no payment attempt yet
	OrderStatusPending           OrderStatus = "PENDING"            // payment initiated, waiting on provider
	OrderStatusProcessing        OrderStatus = "PROCESSING"         // provider reported an in-flight payment
	OrderStatusPaid              OrderStatus = "PAID"               // payment confirmed, stock committed
	OrderStatusFailed            OrderStatus = "FAILED"             // provider rejected the payment
	OrderStatusShipped           OrderStatus = "SHIPPED"            // fulfillment dispatched
	OrderStatusDelivered         OrderStatus = "DELIVERED"          // terminal
	OrderStatusCancelled         OrderStatus = "CANCELLED"          // terminal
	OrderStatusRefunded          OrderStatus = "REFUNDED"           // terminal
	OrderStatusPartiallyRefunded OrderStatus = "PARTIALLY_REFUNDED" // partial refund processed
	OrderStatusDisputed          OrderStatus = "DISPUTED"           // terminal (resolution handled externally)
	OrderStatusRequiresAction    OrderStatus = "REQUIRES_ACTION"    // conservative parking state
)

// orderTransitions encodes every legal status edge. Anything not listed is
// rejected, which is what keeps duplicate webhook deliveries harmless.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:             {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:           {OrderStatusProcessing, OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled, OrderStatusRequiresAction},
	OrderStatusProcessing:        {OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled, OrderStatusRequiresAction},
	OrderStatusPaid:              {OrderStatusShipped, OrderStatusRefunded, OrderStatusPartiallyRefunded, OrderStatusDisputed},
	OrderStatusFailed:            {OrderStatusProcessing, OrderStatusPaid, OrderStatusCancelled, OrderStatusRequiresAction},
	OrderStatusShipped:           {OrderStatusDelivered, OrderStatusRefunded, OrderStatusPartiallyRefunded, OrderStatusDisputed},
	OrderStatusPartiallyRefunded: {OrderStatusRefunded, OrderStatusShipped, OrderStatusDelivered, OrderStatusDisputed},
	OrderStatusRequiresAction:    {OrderStatusProcessing, OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded, OrderStatusDisputed},
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded, OrderStatusDisputed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to target is a legal edge of
// the order state machine. A self transition is never legal; callers treat
// it as an idempotent no-op instead.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type Order struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       *uint          `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	Subtotal     float64        `gorm:"not null" json:"subtotal"`
	Tax          float64        `gorm:"not null" json:"tax"`
	ShippingCost float64        `gorm:"not null" json:"shipping_cost"`
	Total        float64        `gorm:"not null" json:"total"`
	Currency     string         `gorm:"type:varchar(3);default:'ARS'" json:"currency"`
	Status       OrderStatus    `gorm:"type:varchar(20);default:'DRAFT';index" json:"status"`
	ContactName  string         `gorm:"type:varchar(120)" json:"contact_name"`
	ContactEmail string         `gorm:"type:varchar(120)" json:"contact_email"`
	ContactPhone string         `gorm:"type:varchar(40)" json:"contact_phone"`
	ShippingAddr string         `gorm:"type:text" json:"shipping_address"`
	PaidAt       *time.Time     `json:"paid_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	VariantID uint   `gorm:"not null;index" json:"variant_id"`
	Size      string `gorm:"type:varchar(20);not null" json:"size"`
	Color     string `gorm:"type:varchar(50);not null" json:"color"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	// UnitPrice is frozen at order-creation time; later catalog price
	// changes never touch it.
	UnitPrice float64        `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant Variant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
