package repository

import (
	"errors"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

// ReviewFilter narrows review listings. A zero field means "any".
type ReviewFilter struct {
	ProductID uint
	UserID    uint
	Status    model.ReviewStatus
	Limit     int
	Offset    int
}

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindByAuthor(productID, userID uint) (*model.Review, error)
	Find(filter ReviewFilter) ([]model.Review, int64, error)
	Update(review *model.Review) error
	Delete(id uint) error
	// CountByRating returns, for each rating value 1-5, how many APPROVED
	// reviews the product has. One grouped query feeds the whole rating
	// aggregate.
	CountByRating(productID uint) (map[int]int64, error)
	// ToggleHelpful flips the caller's helpful vote on a review and keeps
	// the denormalized counter in step. Returns whether the vote exists
	// after the call.
	ToggleHelpful(reviewID, userID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByAuthor(productID, userID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Find(filter ReviewFilter) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{})

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var reviews []model.Review
	err := query.Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to list reviews in database", err, map[string]interface{}{
			"product_id": filter.ProductID,
		})
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	return r.db.Save(review).Error
}

func (r *reviewRepository) Delete(id uint) error {
	return r.db.Delete(&model.Review{}, id).Error
}

func (r *reviewRepository) CountByRating(productID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.Model(&model.Review{}).
		Select("rating, COUNT(*) as count").
		Where("product_id = ? AND status = ?", productID, model.ReviewStatusApproved).
		Group("rating").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}

func (r *reviewRepository) ToggleHelpful(reviewID, userID uint) (bool, error) {
	var vote model.ReviewHelpful
	err := r.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		vote = model.ReviewHelpful{ReviewID: reviewID, UserID: userID}
		if err := r.db.Create(&vote).Error; err != nil {
			return false, err
		}
		if err := r.db.Model(&model.Review{}).
			Where("id = ?", reviewID).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1)).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if err := r.db.Delete(&vote).Error; err != nil {
		return false, err
	}
	if err := r.db.Model(&model.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count - ?", 1)).Error; err != nil {
		return false, err
	}
	return false, nil
}
