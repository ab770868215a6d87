package server

import (
	"errors"

	"booklink/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetBookReviews handles GET /api/reviews/:bookId (public).
func (s *Server) GetBookReviews(c *fiber.Ctx) error {
	bookID, err := s.parseID(c, "bookId")
	if err != nil {
		return nil
	}

	var reviews []models.Review
	if err := s.db.WithContext(c.UserContext()).
		Where("book_id = ?", bookID).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(reviews),
		"data":    reviews,
	})
}

// CreateReview handles POST /api/reviews/:bookId.
func (s *Server) CreateReview(c *fiber.Ctx) error {
	bookID, err := s.parseID(c, "bookId")
	if err != nil {
		return nil
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.bookRepo.GetByID(c.UserContext(), bookID); err != nil {
		return models.RespondError(c, err)
	}

	review := &models.Review{
		BookID:     bookID,
		ReviewerID: s.currentReaderID(c),
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := review.Validate(); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.db.WithContext(c.UserContext()).Create(review).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    review,
	})
}

// DeleteReview handles DELETE /api/reviews/:id. The reviewer may remove
// their own review; moderators and admins may remove any review.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var review models.Review
	if err := s.db.WithContext(c.UserContext()).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondError(c, models.NewNotFoundError("Review", id))
		}
		return models.RespondError(c, models.NewInternalError(err))
	}

	identity := s.identity(c)
	isModerator := identity != nil &&
		(identity.Role == models.RoleAdmin || identity.Role == models.RoleModerator)
	if review.ReviewerID != s.currentReaderID(c) && !isModerator {
		return models.RespondError(c,
			models.NewForbiddenError("You can only delete your own reviews"))
	}

	if err := s.db.WithContext(c.UserContext()).Delete(&models.Review{}, id).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review deleted",
	})
}
