package model

import (
	"time"

	"gorm.io/gorm"
)

// Variant is one (product, size, color) SKU with its own stock count and
// price delta against the product's base price. The delta may be zero or
// negative.
type Variant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"not null;index;uniqueIndex:idx_variant_identity" json:"product_id"`
	Size      string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_variant_identity" json:"size"`
	Color     string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_identity" json:"color"`
	PriceDiff float64        `gorm:"default:0" json:"price_diff"`
	Stock     int            `gorm:"default:0" json:"stock"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Variant) TableName() string {
	return "variants"
}
