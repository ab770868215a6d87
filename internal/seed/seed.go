// Package seed provides helpers to create demo data for development and
// testing. It is never invoked from the server itself.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"booklink/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumReaders  int
	NumBooks    int
	ShouldClean bool
}

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "password123"

var bookCategories = []models.BookCategory{
	models.CategoryFiction,
	models.CategoryNonFiction,
	models.CategoryEducation,
	models.CategoryComics,
	models.CategoryOther,
}

var bookConditions = []models.BookCondition{
	models.ConditionNew,
	models.ConditionGood,
	models.ConditionUsed,
}

// Seed populates the database with demo readers, books, transactions, and
// reviews, plus fixed admin and moderator accounts for manual testing.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Seeding %d readers and %d books...", opts.NumReaders, opts.NumBooks)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	admin := &models.Reader{
		Name:       "BookLink Admin",
		Email:      "admin@booklink.local",
		Password:   string(hashed),
		Role:       models.RoleAdmin,
		IsApproved: true,
		IsActive:   true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	moderator := &models.Reader{
		Name:       "BookLink Moderator",
		Email:      "moderator@booklink.local",
		Password:   string(hashed),
		Role:       models.RoleModerator,
		IsApproved: true,
		IsActive:   true,
	}
	if err := db.Create(moderator).Error; err != nil {
		return fmt.Errorf("create moderator: %w", err)
	}

	now := time.Now().UTC()
	readers := make([]*models.Reader, 0, opts.NumReaders)
	for i := 0; i < opts.NumReaders; i++ {
		// Roughly a quarter of accounts stay in the pending queue.
		approved := r.Intn(4) != 0
		reader := &models.Reader{
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("reader%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
			Role:     models.RoleUser,
			IsActive: r.Intn(10) != 0,
		}
		if approved {
			reader.IsApproved = true
			reader.ApprovedBy = &admin.ID
			at := now.Add(-time.Duration(r.Intn(60*24)) * time.Hour)
			reader.ApprovedAt = &at
		}
		if err := db.Create(reader).Error; err != nil {
			return fmt.Errorf("create reader: %w", err)
		}
		readers = append(readers, reader)
	}
	if len(readers) == 0 {
		log.Println("No readers requested; skipping books and transactions")
		return nil
	}

	books := make([]*models.Book, 0, opts.NumBooks)
	for i := 0; i < opts.NumBooks; i++ {
		owner := readers[r.Intn(len(readers))]
		book := &models.Book{
			Title:       gofakeit.BookTitle(),
			Author:      gofakeit.BookAuthor(),
			Category:    bookCategories[r.Intn(len(bookCategories))],
			Condition:   bookConditions[r.Intn(len(bookConditions))],
			Price:       float64(r.Intn(4000)+100) / 100,
			Mode:        models.ModeSell,
			Latitude:    gofakeit.Latitude(),
			Longitude:   gofakeit.Longitude(),
			Description: gofakeit.Paragraph(1, 2, 8, " "),
			OwnerID:     owner.ID,
			Available:   true,
		}
		if r.Intn(3) == 0 {
			book.Mode = models.ModeRent
		}

		switch r.Intn(4) {
		case 0:
			book.ApprovalStatus = models.ApprovalStatusPending
		case 1:
			book.Reject(gofakeit.Sentence(6))
		default:
			_ = book.Approve(admin.ID, now.Add(-time.Duration(r.Intn(30*24))*time.Hour))
			book.IsFeatured = r.Intn(8) == 0
			book.Views = r.Intn(500)
		}

		if err := db.Create(book).Error; err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		books = append(books, book)
	}

	if err := seedTransactions(db, r, books, readers); err != nil {
		return err
	}
	if err := seedReviews(db, r, books, readers); err != nil {
		return err
	}

	log.Printf("Seeding complete: %d readers, %d books", len(readers)+2, len(books))
	log.Printf("Admin login: admin@booklink.local / %s", DefaultPassword)
	return nil
}

func seedTransactions(db *gorm.DB, r *rand.Rand, books []*models.Book, readers []*models.Reader) error {
	statuses := []models.TransactionStatus{
		models.TransactionPending,
		models.TransactionCompleted,
		models.TransactionCancelled,
	}

	for _, book := range books {
		if book.ApprovalStatus != models.ApprovalStatusApproved || r.Intn(3) != 0 {
			continue
		}
		buyer := readers[r.Intn(len(readers))]
		if buyer.ID == book.OwnerID {
			continue
		}

		txn := &models.Transaction{
			Reference: uuid.NewString(),
			BookID:    book.ID,
			BuyerID:   buyer.ID,
			SellerID:  book.OwnerID,
			Type:      models.TransactionBuy,
			Price:     book.Price,
			Status:    statuses[r.Intn(len(statuses))],
		}
		if book.Mode == models.ModeRent {
			days := r.Intn(30) + 1
			txn.Type = models.TransactionRent
			txn.RentDurationDays = &days
		}
		if err := db.Create(txn).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
	}
	return nil
}

func seedReviews(db *gorm.DB, r *rand.Rand, books []*models.Book, readers []*models.Reader) error {
	for _, book := range books {
		if book.ApprovalStatus != models.ApprovalStatusApproved || r.Intn(2) != 0 {
			continue
		}
		reviewer := readers[r.Intn(len(readers))]
		if reviewer.ID == book.OwnerID {
			continue
		}

		review := &models.Review{
			BookID:     book.ID,
			ReviewerID: reviewer.ID,
			Rating:     r.Intn(5) + 1,
			Comment:    gofakeit.Sentence(10),
		}
		if err := db.Create(review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}
	}
	return nil
}

// clearData removes all rows in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Review{},
		&models.Transaction{},
		&models.Book{},
		&models.Reader{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
