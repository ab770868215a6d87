package server

import (
	"booklink/internal/models"
	"booklink/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const featuredBooksLimit = 12

// GetBooks handles GET /api/books. Only approved, available listings are
// returned; pending and rejected books stay invisible to the public.
func (s *Server) GetBooks(c *fiber.Ctx) error {
	p := parsePagination(c)
	filter := repository.BookFilter{
		Category: models.BookCategory(c.Query("category")),
		Mode:     models.BookMode(c.Query("mode")),
		Search:   c.Query("search"),
	}

	books, total, err := s.bookRepo.ListPublic(c.UserContext(), filter, p.Limit, (p.Page-1)*p.Limit)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(models.NewPage(books, len(books), p.Page, p.Limit, total))
}

// GetFeaturedBooks handles GET /api/books/featured.
func (s *Server) GetFeaturedBooks(c *fiber.Ctx) error {
	books, err := s.bookRepo.ListFeatured(c.UserContext(), featuredBooksLimit)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(books),
		"data":    books,
	})
}

// GetBook handles GET /api/books/:id and increments the view counter.
func (s *Server) GetBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.bookRepo.IncrementViews(c.UserContext(), id); err == nil {
		book.Views++
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    book,
	})
}

// CreateBook handles POST /api/books. New listings start pending and only
// become publicly visible once a moderator approves them.
func (s *Server) CreateBook(c *fiber.Ctx) error {
	var req struct {
		Title       string  `json:"title"`
		Author      string  `json:"author"`
		Category    string  `json:"category"`
		Condition   string  `json:"condition"`
		Price       float64 `json:"price"`
		Mode        string  `json:"mode"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Image       string  `json:"image"`
		Description string  `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book := &models.Book{
		Title:          req.Title,
		Author:         req.Author,
		Category:       models.BookCategory(req.Category),
		Condition:      models.BookCondition(req.Condition),
		Price:          req.Price,
		Mode:           models.BookMode(req.Mode),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Image:          req.Image,
		Description:    req.Description,
		OwnerID:        s.currentReaderID(c),
		Available:      true,
		ApprovalStatus: models.ApprovalStatusPending,
	}
	if err := book.Validate(); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.bookRepo.Create(c.UserContext(), book); err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    book,
	})
}

// DeleteOwnBook handles DELETE /api/books/:id for the listing's owner.
func (s *Server) DeleteOwnBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.bookRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if book.OwnerID != s.currentReaderID(c) {
		return models.RespondError(c,
			models.NewForbiddenError("You can only delete your own listings"))
	}

	if err := s.bookRepo.Delete(c.UserContext(), id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Book deleted",
	})
}
