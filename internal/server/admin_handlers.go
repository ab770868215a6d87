package server

import (
	"booklink/internal/models"
	"booklink/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDashboardStats handles GET /api/admin/dashboard/stats.
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.admin.DashboardStats(c.UserContext())
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// GetReaders handles GET /api/admin/users.
func (s *Server) GetReaders(c *fiber.Ctx) error {
	p := parsePagination(c)
	filter := service.ReaderFilter{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("search"),
	}
	if v := c.Query("isApproved"); v != "" {
		approved := v == "true"
		filter.IsApproved = &approved
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	page, err := s.admin.ListReaders(c.UserContext(), filter, p.Page, p.Limit)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(page)
}

// GetPendingReaders handles GET /api/admin/users/pending.
func (s *Server) GetPendingReaders(c *fiber.Ctx) error {
	readers, err := s.moderation.PendingReaders(c.UserContext())
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(readers),
		"data":    readers,
	})
}

// ApproveReader handles PUT /api/admin/users/:id/approve.
func (s *Server) ApproveReader(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reader, err := s.moderation.ApproveReader(c.UserContext(), id, s.currentReaderID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reader approved",
		"data":    reader,
	})
}

// ToggleReaderStatus handles PUT /api/admin/users/:id/toggle-status.
func (s *Server) ToggleReaderStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reader, err := s.moderation.ToggleReaderActive(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    reader,
	})
}

// DeleteReader handles DELETE /api/admin/users/:id.
func (s *Server) DeleteReader(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.DeleteReader(c.UserContext(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reader deleted",
	})
}

// GetAdminBooks handles GET /api/admin/books.
func (s *Server) GetAdminBooks(c *fiber.Ctx) error {
	p := parsePagination(c)
	filter := service.AdminBookFilter{
		ApprovalStatus: models.ApprovalStatus(c.Query("approvalStatus")),
		Search:         c.Query("search"),
	}

	page, err := s.admin.ListBooks(c.UserContext(), filter, p.Page, p.Limit)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(page)
}

// GetPendingBooks handles GET /api/admin/books/pending.
func (s *Server) GetPendingBooks(c *fiber.Ctx) error {
	books, err := s.moderation.PendingBooks(c.UserContext())
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(books),
		"data":    books,
	})
}

// ApproveBook handles PUT /api/admin/books/:id/approve.
func (s *Server) ApproveBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.moderation.ApproveBook(c.UserContext(), id, s.currentReaderID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Book approved",
		"data":    book,
	})
}

// RejectBook handles PUT /api/admin/books/:id/reject.
func (s *Server) RejectBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty or missing body means the default rejection reason.
	_ = c.BodyParser(&req)

	book, err := s.moderation.RejectBook(c.UserContext(), id, req.Reason)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Book rejected",
		"data":    book,
	})
}

// ToggleBookFeatured handles PUT /api/admin/books/:id/toggle-featured.
func (s *Server) ToggleBookFeatured(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.moderation.ToggleBookFeatured(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    book,
	})
}

// DeleteBook handles DELETE /api/admin/books/:id.
func (s *Server) DeleteBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderation.DeleteBook(c.UserContext(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Book deleted",
	})
}

// GetAdminTransactions handles GET /api/admin/transactions.
func (s *Server) GetAdminTransactions(c *fiber.Ctx) error {
	p := parsePagination(c)
	filter := service.TransactionFilter{
		Status: models.TransactionStatus(c.Query("status")),
	}

	page, err := s.admin.ListTransactions(c.UserContext(), filter, p.Page, p.Limit)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(page)
}

// GetAdminReviews handles GET /api/admin/reviews.
func (s *Server) GetAdminReviews(c *fiber.Ctx) error {
	p := parsePagination(c)

	page, err := s.admin.ListReviews(c.UserContext(), p.Page, p.Limit)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(page)
}

// DeleteAdminReview handles DELETE /api/admin/reviews/:id.
func (s *Server) DeleteAdminReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.admin.DeleteReview(c.UserContext(), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Review deleted",
	})
}
