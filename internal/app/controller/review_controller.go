package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	apperrors "github.com/gustavo180591/ecommerce-zapatillas/internal/errors"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=120"`
	Comment string `json:"comment" binding:"required"`
}

type moderateReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// GetProductReviews lists a product's approved reviews with its rating summary
// GET /api/v1/products/:id/reviews?page=&limit=
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	reviews, total, summary, err := ctrl.reviewService.GetProductReviews(uint(productID), limit, (page-1)*limit)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
			return
		}
		log.Error("Failed to list product reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"summary": summary,
		"page":    page,
		"limit":   limit,
	})
}

// CreateReview submits a review for moderation
// POST /api/v1/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos de la reseña no son válidos")
		return
	}

	review, err := ctrl.reviewService.CreateReview(uint(productID), userID, req.Rating, req.Title, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
		case errors.Is(err, service.ErrDuplicateReview):
			apperrors.Conflict(c, apperrors.ReviewDuplicate, "Ya escribiste una reseña para este producto")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "La calificación debe estar entre 1 y 5")
		case errors.Is(err, service.ErrReviewCommentEmpty):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "El comentario es obligatorio")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"product_id": productID,
				"user_id":    userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reseña enviada para moderación",
		"review":  review,
	})
}

// UpdateReview edits the caller's own review and sends it back to moderation
// PUT /api/v1/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos de la reseña no son válidos")
		return
	}

	review, err := ctrl.reviewService.UpdateReview(uint(reviewID), userID, req.Rating, req.Title, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "La reseña no existe")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.Forbidden(c, "La reseña pertenece a otro usuario")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "La calificación debe estar entre 1 y 5")
		case errors.Is(err, service.ErrReviewCommentEmpty):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "El comentario es obligatorio")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reseña actualizada",
		"review":  review,
	})
}

// DeleteReview removes the caller's own review
// DELETE /api/v1/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.reviewService.DeleteReview(uint(reviewID), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "La reseña no existe")
		case errors.Is(err, service.ErrNotReviewAuthor):
			apperrors.Forbidden(c, "La reseña pertenece a otro usuario")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reseña eliminada",
	})
}

// ToggleHelpful flips the caller's "helpful" vote on a review
// POST /api/v1/reviews/:id/helpful
func (ctrl *ReviewController) ToggleHelpful(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	voted, err := ctrl.reviewService.ToggleHelpful(uint(reviewID), userID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "La reseña no existe")
			return
		}
		log.Error("Failed to toggle helpful vote", err, map[string]interface{}{
			"review_id": reviewID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"voted": voted,
	})
}

// ListReviews is the moderation queue
// GET /api/v1/admin/reviews?status=&product_id=&page=&limit=
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.ReviewFilter{
		Status: model.ReviewStatus(c.Query("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v, err := strconv.ParseUint(c.Query("product_id"), 10, 32); err == nil {
		filter.ProductID = uint(v)
	}

	reviews, total, err := ctrl.reviewService.ListReviews(filter)
	if err != nil {
		log.Error("Failed to list reviews", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// ModerateReview approves or rejects a review
// PUT /api/v1/admin/reviews/:id/status
func (ctrl *ReviewController) ModerateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return
	}

	var req moderateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ReviewInvalidStatus, "El estado de moderación no es válido")
		return
	}

	review, err := ctrl.reviewService.Moderate(uint(reviewID), model.ReviewStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "La reseña no existe")
		case errors.Is(err, service.ErrInvalidReviewStatus):
			apperrors.BadRequest(c, apperrors.ReviewInvalidStatus, "El estado de moderación no es válido")
		default:
			log.Error("Failed to moderate review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reseña moderada",
		"review":  review,
	})
}
