package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Brand       string         `gorm:"type:varchar(100);index" json:"brand"`
	Category    string         `gorm:"type:varchar(100);index" json:"category"`
	Price       float64        `gorm:"not null" json:"price"`
	SalePrice   *float64       `json:"sale_price,omitempty"`
	Currency    string         `gorm:"type:varchar(3);default:'ARS'" json:"currency"`
	Sizes       pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Colors      pq.StringArray `gorm:"type:text[]" json:"colors"`
	ImageURL    string         `json:"image_url"`
	// Rating and ReviewCount are denormalized from approved reviews and
	// refreshed whenever a review's approval state changes.
	Rating      float64        `gorm:"default:0" json:"rating"`
	ReviewCount int            `gorm:"default:0" json:"review_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants   []Variant   `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the base the cart prices against: the sale price when
// one is set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
