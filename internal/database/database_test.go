package database

import (
	"testing"

	"booklink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "expected table for %T", m)
	}

	// Explicit false flags must round-trip as stored instead of being
	// replaced by a column default on insert.
	reader := models.Reader{Name: "a", Email: "a@example.com", Password: "hashed", IsActive: false}
	require.NoError(t, db.Create(&reader).Error)

	var loaded models.Reader
	require.NoError(t, db.First(&loaded, reader.ID).Error)
	assert.False(t, loaded.IsApproved)
	assert.False(t, loaded.IsActive)
	assert.Equal(t, models.RoleUser, loaded.Role)

	book := models.Book{Title: "b", Author: "c", Mode: models.ModeSell, OwnerID: reader.ID, Available: false}
	require.NoError(t, db.Create(&book).Error)

	var loadedBook models.Book
	require.NoError(t, db.First(&loadedBook, book.ID).Error)
	assert.False(t, loadedBook.Available)
}
