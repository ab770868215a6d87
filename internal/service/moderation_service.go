// Package service implements the moderation workflows and admin reporting.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booklink/internal/cache"
	"booklink/internal/mailer"
	"booklink/internal/middleware"
	"booklink/internal/models"
)

// ModerationService owns the reader and book approval state machines. Every
// operation is a read-modify-write against the store; approval paths take a
// row lock so two concurrent approvals cannot both pass the state check.
type ModerationService struct {
	db   *gorm.DB
	mail mailer.Sender
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB, mail mailer.Sender) *ModerationService {
	if mail == nil {
		mail = mailer.Noop{}
	}
	return &ModerationService{db: db, mail: mail}
}

// notify dispatches an email without blocking the caller. The state change
// that triggered it is already durable; delivery failures are logged and
// never propagated or retried.
func (s *ModerationService) notify(to string, tpl mailer.Template, data mailer.Data) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mail.Send(ctx, to, tpl, data); err != nil {
			middleware.Logger.Warn("notification dispatch failed",
				slog.String("template", string(tpl)),
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// ApproveReader marks the reader approved by approverID. Approval is one-way;
// re-approving fails with INVALID_STATE and leaves the record unchanged.
func (s *ModerationService) ApproveReader(ctx context.Context, id, approverID uint) (*models.Reader, error) {
	var reader models.Reader
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reader, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Reader", id)
			}
			return models.NewInternalError(err)
		}
		if err := reader.Approve(approverID, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Save(&reader).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateReader(ctx, reader.ID)
	middleware.ModerationActions.WithLabelValues("reader", "approve").Inc()
	s.notify(reader.Email, mailer.TemplateAccountApproved, mailer.Data{"name": reader.Name})
	return &reader, nil
}

// ToggleReaderActive flips the active flag. Admin accounts cannot be
// deactivated.
func (s *ModerationService) ToggleReaderActive(ctx context.Context, id uint) (*models.Reader, error) {
	var reader models.Reader
	if err := s.db.WithContext(ctx).First(&reader, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reader", id)
		}
		return nil, models.NewInternalError(err)
	}

	if reader.Role == models.RoleAdmin {
		return nil, models.NewForbiddenError("Cannot deactivate admin users")
	}

	reader.IsActive = !reader.IsActive
	if err := s.db.WithContext(ctx).Save(&reader).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateReader(ctx, reader.ID)
	middleware.ModerationActions.WithLabelValues("reader", "toggle_active").Inc()
	return &reader, nil
}

// DeleteReader removes the account permanently. Admin accounts cannot be
// deleted.
func (s *ModerationService) DeleteReader(ctx context.Context, id uint) error {
	var reader models.Reader
	if err := s.db.WithContext(ctx).First(&reader, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Reader", id)
		}
		return models.NewInternalError(err)
	}

	if reader.Role == models.RoleAdmin {
		return models.NewForbiddenError("Cannot delete admin users")
	}

	if err := s.db.WithContext(ctx).Delete(&models.Reader{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateReader(ctx, id)
	middleware.ModerationActions.WithLabelValues("reader", "delete").Inc()
	return nil
}

// PendingReaders returns unapproved user accounts, newest first.
func (s *ModerationService) PendingReaders(ctx context.Context) ([]models.Reader, error) {
	var readers []models.Reader
	if err := s.db.WithContext(ctx).
		Where("is_approved = ? AND role = ?", false, models.RoleUser).
		Order("created_at DESC").
		Find(&readers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return readers, nil
}

// ApproveBook transitions the listing to approved. Approving an
// already-approved listing fails with INVALID_STATE; a pending or rejected
// listing succeeds.
func (s *ModerationService) ApproveBook(ctx context.Context, id, approverID uint) (*models.Book, error) {
	var book models.Book
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Owner").First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Book", id)
			}
			return models.NewInternalError(err)
		}
		if err := book.Approve(approverID, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Save(&book).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateBook(ctx, book.ID)
	middleware.ModerationActions.WithLabelValues("book", "approve").Inc()
	if book.Owner != nil {
		s.notify(book.Owner.Email, mailer.TemplateBookApproved, mailer.Data{
			"name":  book.Owner.Name,
			"title": book.Title,
		})
	}
	return &book, nil
}

// RejectBook forces the listing into the rejected state regardless of its
// current state. An empty reason falls back to the default message.
func (s *ModerationService) RejectBook(ctx context.Context, id uint, reason string) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).Preload("Owner").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Book", id)
		}
		return nil, models.NewInternalError(err)
	}

	book.Reject(reason)
	if err := s.db.WithContext(ctx).Save(&book).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateBook(ctx, book.ID)
	middleware.ModerationActions.WithLabelValues("book", "reject").Inc()
	if book.Owner != nil {
		s.notify(book.Owner.Email, mailer.TemplateBookRejected, mailer.Data{
			"name":   book.Owner.Name,
			"title":  book.Title,
			"reason": book.RejectionReason,
		})
	}
	return &book, nil
}

// ToggleBookFeatured flips the featured flag, independent of approval state.
func (s *ModerationService) ToggleBookFeatured(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Book", id)
		}
		return nil, models.NewInternalError(err)
	}

	book.IsFeatured = !book.IsFeatured
	if err := s.db.WithContext(ctx).Save(&book).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateBook(ctx, book.ID)
	middleware.ModerationActions.WithLabelValues("book", "toggle_featured").Inc()
	return &book, nil
}

// DeleteBook removes the listing permanently. There is no owner-role
// protection: any listing may be deleted.
func (s *ModerationService) DeleteBook(ctx context.Context, id uint) error {
	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Book", id)
		}
		return models.NewInternalError(err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateBook(ctx, id)
	middleware.ModerationActions.WithLabelValues("book", "delete").Inc()
	return nil
}

// PendingBooks returns listings awaiting review, newest first.
func (s *ModerationService) PendingBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := s.db.WithContext(ctx).
		Where("approval_status = ?", models.ApprovalStatusPending).
		Preload("Owner").
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}
