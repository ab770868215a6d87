package repository

import (
	"context"
	"errors"
	"strings"

	"booklink/internal/cache"
	"booklink/internal/models"

	"gorm.io/gorm"
)

// BookFilter narrows the public book listing.
type BookFilter struct {
	Category models.BookCategory
	Mode     models.BookMode
	Search   string
}

// BookRepository defines persistence operations for book listings.
type BookRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	ListPublic(ctx context.Context, filter BookFilter, limit, offset int) ([]models.Book, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Book, error)
	IncrementViews(ctx context.Context, id uint) error
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository returns a new BookRepository implementation.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Preload("Owner").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Book", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &book, nil
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBook(ctx, book.ID)
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBook(ctx, id)
	return nil
}

// ListPublic returns approved, available listings only, newest first, with
// the filtered total for pagination.
func (r *bookRepository) ListPublic(ctx context.Context, filter BookFilter, limit, offset int) ([]models.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("approval_status = ? AND available = ?", models.ApprovalStatusApproved, true)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Mode != "" {
		q = q.Where("mode = ?", filter.Mode)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var books []models.Book
	if err := q.Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return books, total, nil
}

func (r *bookRepository) ListFeatured(ctx context.Context, limit int) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("is_featured = ? AND approval_status = ? AND available = ?",
			true, models.ApprovalStatusApproved, true).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

// IncrementViews bumps the view counter without racing concurrent readers.
func (r *bookRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Book", id)
	}
	cache.InvalidateBook(ctx, id)
	return nil
}
