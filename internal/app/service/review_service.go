package service

import (
	"errors"
	"math"
	"strings"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrDuplicateReview     = errors.New("user already reviewed this product")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReviewCommentEmpty  = errors.New("review comment is required")
	ErrNotReviewAuthor     = errors.New("review belongs to another user")
	ErrInvalidReviewStatus = errors.New("invalid review status")
)

// RatingSummary is the aggregate a product page shows: the APPROVED-review
// average, the total, and the per-star distribution.
type RatingSummary struct {
	Average      float64       `json:"average"`
	Total        int64         `json:"total"`
	Distribution map[int]int64 `json:"distribution"`
}

type ReviewService interface {
	CreateReview(productID, userID uint, rating int, title, comment string) (*model.Review, error)
	UpdateReview(reviewID, userID uint, rating int, title, comment string) (*model.Review, error)
	DeleteReview(reviewID, userID uint) error
	// GetProductReviews lists the APPROVED reviews of a product alongside
	// its rating summary.
	GetProductReviews(productID uint, limit, offset int) ([]model.Review, int64, *RatingSummary, error)
	GetRatingSummary(productID uint) (*RatingSummary, error)
	// ToggleHelpful flips the caller's "helpful" vote and returns whether
	// the vote exists after the call.
	ToggleHelpful(reviewID, userID uint) (bool, error)
	// ListReviews is the moderation listing; it accepts any status filter.
	ListReviews(filter repository.ReviewFilter) ([]model.Review, int64, error)
	// Moderate approves or rejects a review and refreshes the product's
	// denormalized rating.
	Moderate(reviewID uint, status model.ReviewStatus) (*model.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) CreateReview(productID, userID uint, rating int, title, comment string) (*model.Review, error) {
	if err := validateReviewInput(rating, comment); err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if _, err := s.reviewRepo.FindByAuthor(productID, userID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     strings.TrimSpace(title),
		Comment:   strings.TrimSpace(comment),
		Status:    model.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"rating":     rating,
	})
	return review, nil
}

func (s *reviewService) UpdateReview(reviewID, userID uint, rating int, title, comment string) (*model.Review, error) {
	if err := validateReviewInput(rating, comment); err != nil {
		return nil, err
	}

	review, err := s.findReview(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	wasApproved := review.Status == model.ReviewStatusApproved

	review.Rating = rating
	review.Title = strings.TrimSpace(title)
	review.Comment = strings.TrimSpace(comment)
	// An edited review goes back through moderation.
	review.Status = model.ReviewStatusPending

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	if wasApproved {
		if err := s.refreshProductRating(review.ProductID); err != nil {
			return nil, err
		}
	}
	return review, nil
}

func (s *reviewService) DeleteReview(reviewID, userID uint) error {
	review, err := s.findReview(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}
	if review.Status == model.ReviewStatusApproved {
		return s.refreshProductRating(review.ProductID)
	}
	return nil
}

func (s *reviewService) GetProductReviews(productID uint, limit, offset int) ([]model.Review, int64, *RatingSummary, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil, ErrProductNotFound
		}
		return nil, 0, nil, err
	}

	reviews, total, err := s.reviewRepo.Find(repository.ReviewFilter{
		ProductID: productID,
		Status:    model.ReviewStatusApproved,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, nil, err
	}

	summary, err := s.GetRatingSummary(productID)
	if err != nil {
		return nil, 0, nil, err
	}
	return reviews, total, summary, nil
}

func (s *reviewService) GetRatingSummary(productID uint) (*RatingSummary, error) {
	counts, err := s.reviewRepo.CountByRating(productID)
	if err != nil {
		return nil, err
	}
	summary := summarizeRatings(counts)
	return &summary, nil
}

func (s *reviewService) ToggleHelpful(reviewID, userID uint) (bool, error) {
	if _, err := s.findReview(reviewID); err != nil {
		return false, err
	}
	return s.reviewRepo.ToggleHelpful(reviewID, userID)
}

func (s *reviewService) ListReviews(filter repository.ReviewFilter) ([]model.Review, int64, error) {
	return s.reviewRepo.Find(filter)
}

func (s *reviewService) Moderate(reviewID uint, status model.ReviewStatus) (*model.Review, error) {
	if status != model.ReviewStatusApproved && status != model.ReviewStatusRejected {
		return nil, ErrInvalidReviewStatus
	}

	review, err := s.findReview(reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status == status {
		return review, nil
	}

	review.Status = status
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	if err := s.refreshProductRating(review.ProductID); err != nil {
		return nil, err
	}

	logger.Info("Review moderated", map[string]interface{}{
		"review_id": reviewID,
		"status":    status,
	})
	return review, nil
}

func (s *reviewService) findReview(reviewID uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// refreshProductRating recomputes the product's denormalized rating and
// review count from the same summary the product page serves.
func (s *reviewService) refreshProductRating(productID uint) error {
	counts, err := s.reviewRepo.CountByRating(productID)
	if err != nil {
		return err
	}
	summary := summarizeRatings(counts)
	return s.productRepo.UpdateRating(productID, summary.Average, int(summary.Total))
}

// summarizeRatings turns per-star counts into the rating aggregate. Every
// consumer of the average, the total, or the distribution goes through this
// one function.
func summarizeRatings(counts map[int]int64) RatingSummary {
	summary := RatingSummary{Distribution: make(map[int]int64, 5)}

	var weighted int64
	for star := 1; star <= 5; star++ {
		n := counts[star]
		summary.Distribution[star] = n
		summary.Total += n
		weighted += int64(star) * n
	}
	if summary.Total > 0 {
		average := float64(weighted) / float64(summary.Total)
		summary.Average = math.Round(average*10) / 10
	}
	return summary
}

func validateReviewInput(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(comment) == "" {
		return ErrReviewCommentEmpty
	}
	return nil
}
