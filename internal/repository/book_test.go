package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"booklink/internal/database"
	"booklink/internal/models"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func createOwner(t *testing.T, db *gorm.DB, email string) models.Reader {
	t.Helper()
	owner := models.Reader{Name: "owner", Email: email, Password: "pw", Role: models.RoleUser, IsApproved: true, IsActive: true}
	require.NoError(t, db.Create(&owner).Error)
	return owner
}

func TestBookRepository_ListPublic(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	owner := createOwner(t, db, "owner1@example.com")

	mk := func(title string, status models.ApprovalStatus, category models.BookCategory, available bool) {
		b := models.Book{
			Title: title, Author: "someone", Price: 5, Mode: models.ModeSell,
			Category: category, Condition: models.ConditionUsed, OwnerID: owner.ID,
			Available: available, ApprovalStatus: status,
			IsApproved: status == models.ApprovalStatusApproved,
		}
		require.NoError(t, db.Create(&b).Error)
	}

	mk("Dune", models.ApprovalStatusApproved, models.CategoryFiction, true)
	mk("Calculus", models.ApprovalStatusApproved, models.CategoryEducation, true)
	mk("Hidden Pending", models.ApprovalStatusPending, models.CategoryFiction, true)
	mk("Hidden Rejected", models.ApprovalStatusRejected, models.CategoryFiction, true)
	mk("Hidden Unavailable", models.ApprovalStatusApproved, models.CategoryFiction, false)

	t.Run("only approved available books", func(t *testing.T) {
		books, total, err := repo.ListPublic(ctx, BookFilter{}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, books, 2)
	})

	t.Run("category filter", func(t *testing.T) {
		books, total, err := repo.ListPublic(ctx, BookFilter{Category: models.CategoryEducation}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "Calculus", books[0].Title)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		books, total, err := repo.ListPublic(ctx, BookFilter{Search: "dUnE"}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	})

	t.Run("total independent of limit", func(t *testing.T) {
		books, total, err := repo.ListPublic(ctx, BookFilter{}, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, books, 1)
	})
}

func TestBookRepository_IncrementViews(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()
	owner := createOwner(t, db, "owner2@example.com")

	book := models.Book{Title: "Dune", Author: "Herbert", Price: 8, Mode: models.ModeSell, OwnerID: owner.ID}
	require.NoError(t, db.Create(&book).Error)

	require.NoError(t, repo.IncrementViews(ctx, book.ID))
	require.NoError(t, repo.IncrementViews(ctx, book.ID))

	var loaded models.Book
	require.NoError(t, db.First(&loaded, book.ID).Error)
	assert.Equal(t, 2, loaded.Views)

	err := repo.IncrementViews(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestReaderRepository_CRUD(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewReaderRepository(db)
	ctx := context.Background()

	reader := &models.Reader{Name: "alice", Email: "alice@example.com", Password: "pw", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, reader))

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := &models.Reader{Name: "other", Email: "alice@example.com", Password: "pw", Role: models.RoleUser}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Name)
	})

	t.Run("get by email miss returns nil, nil", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 424242)
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, reader.ID))
		_, err := repo.GetByID(ctx, reader.ID)
		assert.Error(t, err)
	})
}
