package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"booklink/internal/models"
)

func createTransaction(t *testing.T, db *gorm.DB, book *models.Book, buyer *models.Reader, price float64, status models.TransactionStatus) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		Reference: uuid.NewString(),
		BookID:    book.ID,
		BuyerID:   buyer.ID,
		SellerID:  book.OwnerID,
		Type:      models.TransactionBuy,
		Price:     price,
		Status:    status,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func TestAdminService_DashboardStats(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)

	admin := createReader(t, db, models.RoleAdmin, true)
	buyer := createReader(t, db, models.RoleUser, true)
	pending := createReader(t, db, models.RoleUser, false)
	pending.IsActive = false
	require.NoError(t, db.Save(pending).Error)

	book := createBook(t, db, admin, models.ApprovalStatusApproved)
	createTransaction(t, db, book, buyer, 10, models.TransactionCompleted)
	createTransaction(t, db, book, buyer, 7.5, models.TransactionCompleted)
	createTransaction(t, db, book, buyer, 100, models.TransactionPending)
	createTransaction(t, db, book, buyer, 50, models.TransactionCancelled)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalBooks)
	assert.EqualValues(t, 4, stats.TotalTransactions)
	assert.InDelta(t, 17.5, stats.TotalRevenue, 0.001)
	assert.EqualValues(t, 1, stats.PendingApprovals)
	assert.EqualValues(t, 2, stats.ActiveUsers)
}

func TestAdminService_DashboardStats_EmptyDatabase(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalRevenue, "revenue must be zero when nothing completed")
	assert.Zero(t, stats.PendingApprovals)
}

func TestAdminService_ListReaders(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)

	createReader(t, db, models.RoleAdmin, true)
	for i := 0; i < 5; i++ {
		createReader(t, db, models.RoleUser, i%2 == 0)
	}
	special := createReader(t, db, models.RoleUser, true)
	special.Name = "Margaret Atwood"
	require.NoError(t, db.Save(special).Error)

	t.Run("role filter", func(t *testing.T) {
		page, err := svc.ListReaders(context.Background(), ReaderFilter{Role: models.RoleAdmin}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("approved filter", func(t *testing.T) {
		unapproved := false
		page, err := svc.ListReaders(context.Background(), ReaderFilter{IsApproved: &unapproved}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		page, err := svc.ListReaders(context.Background(), ReaderFilter{Search: "ATWOOD"}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("total independent of page size", func(t *testing.T) {
		page, err := svc.ListReaders(context.Background(), ReaderFilter{}, 1, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 7, page.Total)
		assert.Equal(t, 2, page.Count)
		assert.Equal(t, 4, page.TotalPages)
	})
}

func TestAdminService_ListReaders_PagesPartitionResults(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)
	for i := 0; i < 7; i++ {
		createReader(t, db, models.RoleUser, true)
	}

	seen := make(map[uint]bool)
	var fetched int
	for p := 1; p <= 3; p++ {
		page, err := svc.ListReaders(context.Background(), ReaderFilter{}, p, 3)
		require.NoError(t, err)
		readers, ok := page.Data.([]models.Reader)
		require.True(t, ok)
		for _, r := range readers {
			assert.False(t, seen[r.ID], "reader %d appeared on two pages", r.ID)
			seen[r.ID] = true
		}
		fetched += len(readers)
	}
	assert.Equal(t, 7, fetched, "pages must partition the result set")
}

func TestAdminService_ListBooks(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)
	owner := createReader(t, db, models.RoleUser, true)

	createBook(t, db, owner, models.ApprovalStatusPending)
	createBook(t, db, owner, models.ApprovalStatusApproved)
	rejected := createBook(t, db, owner, models.ApprovalStatusRejected)
	rejected.Title = "Parable of the Sower"
	rejected.Author = "Octavia Butler"
	require.NoError(t, db.Save(rejected).Error)

	page, err := svc.ListBooks(context.Background(), AdminBookFilter{ApprovalStatus: models.ApprovalStatusRejected}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListBooks(context.Background(), AdminBookFilter{Search: "octavia"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListBooks(context.Background(), AdminBookFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	books, ok := page.Data.([]models.Book)
	require.True(t, ok)
	require.NotEmpty(t, books)
	assert.NotNil(t, books[0].Owner)
}

func TestAdminService_ListTransactions(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)
	owner := createReader(t, db, models.RoleUser, true)
	buyer := createReader(t, db, models.RoleUser, true)
	book := createBook(t, db, owner, models.ApprovalStatusApproved)

	createTransaction(t, db, book, buyer, 10, models.TransactionPending)
	createTransaction(t, db, book, buyer, 20, models.TransactionCompleted)

	page, err := svc.ListTransactions(context.Background(), TransactionFilter{Status: models.TransactionCompleted}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListTransactions(context.Background(), TransactionFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestAdminService_ReviewsListAndDelete(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdminService(db)
	owner := createReader(t, db, models.RoleUser, true)
	reviewer := createReader(t, db, models.RoleUser, true)
	book := createBook(t, db, owner, models.ApprovalStatusApproved)

	review := &models.Review{
		BookID:     book.ID,
		ReviewerID: reviewer.ID,
		Rating:     4,
		Comment:    "Arrived in good shape",
	}
	require.NoError(t, db.Create(review).Error)

	page, err := svc.ListReviews(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, svc.DeleteReview(context.Background(), review.ID))
	err = svc.DeleteReview(context.Background(), review.ID)
	assertErrCode(t, err, models.CodeNotFound)

	page, err = svc.ListReviews(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}
