package server

import (
	"context"
	"fmt"
	"time"

	"booklink/internal/mailer"
	"booklink/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateTransaction handles POST /api/transactions. The seller is derived
// from the book's owner; buying your own listing is rejected.
func (s *Server) CreateTransaction(c *fiber.Ctx) error {
	var req struct {
		BookID           uint   `json:"book_id"`
		Type             string `json:"type"`
		RentDurationDays *int   `json:"rent_duration_days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookRepo.GetByID(c.UserContext(), req.BookID)
	if err != nil {
		return models.RespondError(c, err)
	}

	buyerID := s.currentReaderID(c)
	if book.OwnerID == buyerID {
		return models.RespondError(c,
			models.NewValidationError("You cannot buy or rent your own listing"))
	}
	if book.ApprovalStatus != models.ApprovalStatusApproved || !book.Available {
		return models.RespondError(c,
			models.NewInvalidStateError("Book is not available for transactions"))
	}

	txn := &models.Transaction{
		Reference:        uuid.NewString(),
		BookID:           book.ID,
		BuyerID:          buyerID,
		SellerID:         book.OwnerID,
		Type:             models.TransactionType(req.Type),
		RentDurationDays: req.RentDurationDays,
		Price:            book.Price,
		Status:           models.TransactionPending,
	}
	if err := txn.Validate(); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.db.WithContext(c.UserContext()).Create(txn).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	if book.Owner != nil {
		seller := book.Owner
		buyerName := ""
		if buyer, err := s.readerRepo.GetByID(c.UserContext(), buyerID); err == nil {
			buyerName = buyer.Name
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = s.mail.Send(ctx, seller.Email, mailer.TemplateTransactionCreated,
				mailer.Data{
					"name":  seller.Name,
					"title": book.Title,
					"buyer": buyerName,
					"type":  string(txn.Type),
					"price": fmt.Sprintf("%.2f", txn.Price),
				})
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    txn,
	})
}

// GetMyTransactions handles GET /api/transactions, returning transactions
// the caller participates in as buyer or seller.
func (s *Server) GetMyTransactions(c *fiber.Ctx) error {
	p := parsePagination(c)
	readerID := s.currentReaderID(c)

	q := s.db.WithContext(c.UserContext()).Model(&models.Transaction{}).
		Where("buyer_id = ? OR seller_id = ?", readerID, readerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	var txns []models.Transaction
	if err := q.Preload("Book").
		Order("created_at DESC").
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&txns).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(models.NewPage(txns, len(txns), p.Page, p.Limit, total))
}

// UpdateTransactionStatus handles PUT /api/transactions/:id/status. Only
// participants may move a transaction, and only out of the pending state.
func (s *Server) UpdateTransactionStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var txn models.Transaction
	if err := s.db.WithContext(c.UserContext()).First(&txn, id).Error; err != nil {
		return models.RespondError(c, models.NewNotFoundError("Transaction", id))
	}

	readerID := s.currentReaderID(c)
	if txn.BuyerID != readerID && txn.SellerID != readerID {
		return models.RespondError(c,
			models.NewForbiddenError("Only transaction participants can change its status"))
	}

	if err := txn.Transition(models.TransactionStatus(req.Status)); err != nil {
		return models.RespondError(c, err)
	}

	if err := s.db.WithContext(c.UserContext()).Save(&txn).Error; err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txn,
	})
}
