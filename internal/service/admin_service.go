package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"booklink/internal/models"
)

// DashboardStats is the aggregate snapshot shown on the admin dashboard.
// The counts are independent reads, not a consistent snapshot.
type DashboardStats struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalBooks        int64   `json:"totalBooks"`
	TotalTransactions int64   `json:"totalTransactions"`
	TotalRevenue      float64 `json:"totalRevenue"`
	PendingApprovals  int64   `json:"pendingApprovals"`
	ActiveUsers       int64   `json:"activeUsers"`
}

// ReaderFilter narrows admin reader listings.
type ReaderFilter struct {
	Role       models.Role
	IsApproved *bool
	IsActive   *bool
	Search     string
}

// AdminBookFilter narrows admin book listings.
type AdminBookFilter struct {
	ApprovalStatus models.ApprovalStatus
	Search         string
}

// TransactionFilter narrows admin transaction listings.
type TransactionFilter struct {
	Status models.TransactionStatus
}

// AdminService serves read-mostly reporting endpoints.
type AdminService struct {
	db *gorm.DB
}

// NewAdminService returns a new AdminService.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// DashboardStats computes the six dashboard aggregates concurrently. Any
// failed read fails the whole call.
func (s *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Reader{}).Count(&stats.TotalUsers).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Book{}).Count(&stats.TotalBooks).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error
	})
	g.Go(func() error {
		// COALESCE keeps revenue at zero when no transactions completed yet.
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Where("status = ?", models.TransactionCompleted).
			Select("COALESCE(SUM(price), 0)").
			Scan(&stats.TotalRevenue).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Reader{}).
			Where("is_approved = ? AND role = ?", false, models.RoleUser).
			Count(&stats.PendingApprovals).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Reader{}).
			Where("is_active = ?", true).
			Count(&stats.ActiveUsers).Error
	})

	if err := g.Wait(); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

// ListReaders returns a page of readers matching the filter, newest first.
func (s *AdminService) ListReaders(ctx context.Context, f ReaderFilter, page, limit int) (*models.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Reader{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsApproved != nil {
		q = q.Where("is_approved = ?", *f.IsApproved)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var readers []models.Reader
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&readers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	p := models.NewPage(readers, len(readers), page, limit, total)
	return &p, nil
}

// ListBooks returns a page of books matching the filter, newest first.
func (s *AdminService) ListBooks(ctx context.Context, f AdminBookFilter, page, limit int) (*models.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Book{})
	if f.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", f.ApprovalStatus)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var books []models.Book
	if err := q.Preload("Owner").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	p := models.NewPage(books, len(books), page, limit, total)
	return &p, nil
}

// ListTransactions returns a page of transactions, newest first.
func (s *AdminService) ListTransactions(ctx context.Context, f TransactionFilter, page, limit int) (*models.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var txns []models.Transaction
	if err := q.Preload("Book").Preload("Buyer").Preload("Seller").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	p := models.NewPage(txns, len(txns), page, limit, total)
	return &p, nil
}

// ListReviews returns a page of reviews, newest first.
func (s *AdminService) ListReviews(ctx context.Context, page, limit int) (*models.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Review{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var reviews []models.Review
	if err := q.Preload("Book").Preload("Reviewer").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	p := models.NewPage(reviews, len(reviews), page, limit, total)
	return &p, nil
}

// DeleteReview removes a review permanently.
func (s *AdminService) DeleteReview(ctx context.Context, id uint) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Review", id)
		}
		return models.NewInternalError(err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
