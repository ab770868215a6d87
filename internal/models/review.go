package models

import (
	"time"
)

// Review is a reader's rating of a book listing.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"not null;index" json:"book_id"`
	Book       *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	ReviewerID uint      `gorm:"not null;index" json:"reviewer_id"`
	Reviewer   *Reader   `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Rating     int       `gorm:"not null" json:"rating" validate:"gte=1,lte=5"`
	Comment    string    `gorm:"type:text" json:"comment" validate:"max=2000"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks the rating range and comment length.
func (r *Review) Validate() error {
	return validateStruct(r)
}
