// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"booklink/internal/cache"
	"booklink/internal/models"

	"gorm.io/gorm"
)

// ReaderRepository defines persistence operations for reader accounts.
type ReaderRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Reader, error)
	GetByEmail(ctx context.Context, email string) (*models.Reader, error)
	Create(ctx context.Context, reader *models.Reader) error
	Update(ctx context.Context, reader *models.Reader) error
	Delete(ctx context.Context, id uint) error
}

type readerRepository struct {
	db *gorm.DB
}

// NewReaderRepository returns a new ReaderRepository implementation.
func NewReaderRepository(db *gorm.DB) ReaderRepository {
	return &readerRepository{db: db}
}

func (r *readerRepository) GetByID(ctx context.Context, id uint) (*models.Reader, error) {
	var reader models.Reader
	key := cache.ReaderKey(id)

	err := cache.Aside(ctx, key, &reader, cache.ReaderTTL, func() error {
		if err := r.db.WithContext(ctx).First(&reader, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Reader", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &reader, nil
}

func (r *readerRepository) GetByEmail(ctx context.Context, email string) (*models.Reader, error) {
	var reader models.Reader
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&reader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &reader, nil
}

func (r *readerRepository) Create(ctx context.Context, reader *models.Reader) error {
	if err := r.db.WithContext(ctx).Create(reader).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("An account with this email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *readerRepository) Update(ctx context.Context, reader *models.Reader) error {
	if err := r.db.WithContext(ctx).Save(reader).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateReader(ctx, reader.ID)
	return nil
}

func (r *readerRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Reader{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateReader(ctx, id)
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
