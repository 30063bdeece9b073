package model

import (
	"time"

	"gorm.io/gorm"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// Review is a customer's rating of a product. Only APPROVED reviews are
// public and only they feed the product's rating aggregate.
type Review struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	ProductID uint         `gorm:"not null;index;uniqueIndex:idx_review_author" json:"product_id"`
	UserID    uint         `gorm:"not null;index;uniqueIndex:idx_review_author" json:"user_id"`
	Rating    int          `gorm:"not null" json:"rating"` // 1-5
	Title     string       `gorm:"type:varchar(120)" json:"title"`
	Comment   string       `gorm:"type:text;not null" json:"comment"`
	Status    ReviewStatus `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	// HelpfulCount is kept in step with the helpful_votes rows so listing
	// does not need a join.
	HelpfulCount int            `gorm:"default:0" json:"helpful_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewHelpful records one user's helpful vote on a review; the unique
// pair makes the vote a toggle.
type ReviewHelpful struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_review_helpful_vote" json:"review_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_helpful_vote" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Review *Review `gorm:"foreignKey:ReviewID" json:"-"`
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
}

func (ReviewHelpful) TableName() string {
	return "review_helpful_votes"
}
