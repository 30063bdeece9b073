package model

import (
	"time"

	"gorm.io/gorm"
)

// MaxQuantityPerLine caps how many units of a single (product, size, color)
// identity a cart may hold. Merges clamp to this instead of failing.
const MaxQuantityPerLine = 20

type CartItem struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    uint   `gorm:"not null;index;uniqueIndex:idx_cart_identity" json:"user_id"`
	ProductID uint   `gorm:"not null;index;uniqueIndex:idx_cart_identity" json:"product_id"`
	Size      string `gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_identity" json:"size"`
	Color     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_cart_identity" json:"color"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	// AvailableStock is the variant stock observed at last validation,
	// kept so the UI can render "N left" without another lookup.
	AvailableStock int            `gorm:"default:0" json:"available_stock"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
