package models

import (
	"time"
)

// ApprovalStatus defines lifecycle states for book listings.
type ApprovalStatus string

const (
	// ApprovalStatusPending indicates the listing is awaiting review.
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusApproved indicates the listing is publicly visible.
	ApprovalStatusApproved ApprovalStatus = "approved"
	// ApprovalStatusRejected indicates the listing was denied. Rejected
	// listings may be re-approved later.
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// BookCategory enumerates the listing categories.
type BookCategory string

const (
	CategoryFiction    BookCategory = "Fiction"
	CategoryNonFiction BookCategory = "Non-fiction"
	CategoryEducation  BookCategory = "Education"
	CategoryComics     BookCategory = "Comics"
	CategoryOther      BookCategory = "Other"
)

// Valid reports whether the category is a known enum member.
func (c BookCategory) Valid() bool {
	switch c {
	case CategoryFiction, CategoryNonFiction, CategoryEducation, CategoryComics, CategoryOther:
		return true
	}
	return false
}

// BookCondition enumerates the physical condition of a listed book.
type BookCondition string

const (
	ConditionNew  BookCondition = "New"
	ConditionGood BookCondition = "Good"
	ConditionUsed BookCondition = "Used"
)

// Valid reports whether the condition is a known enum member.
func (c BookCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionUsed:
		return true
	}
	return false
}

// BookMode enumerates how the owner offers the book.
type BookMode string

const (
	ModeSell BookMode = "Sell"
	ModeRent BookMode = "Rent"
)

// Valid reports whether the mode is a known enum member.
func (m BookMode) Valid() bool {
	return m == ModeSell || m == ModeRent
}

// DefaultRejectionReason is used when a moderator rejects a book without
// providing a reason.
const DefaultRejectionReason = "Does not meet quality standards"

// Book is a listing offered for sale or rent by a reader. Listings are
// created pending and become visible once approved.
//
// Invariant: IsApproved is true exactly when ApprovalStatus is "approved".
// The two fields are only mutated together through Approve and Reject.
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Author          string         `gorm:"size:120;not null" json:"author" validate:"required,max=120"`
	Category        BookCategory   `gorm:"type:varchar(20);not null;default:'Other'" json:"category"`
	Condition       BookCondition  `gorm:"type:varchar(10);not null;default:'Used'" json:"condition"`
	Price           float64        `gorm:"not null" json:"price" validate:"gte=0"`
	Mode            BookMode       `gorm:"type:varchar(10);not null" json:"mode"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	OwnerID         uint           `gorm:"not null;index" json:"owner_id"`
	Owner           *Reader        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Image           string         `json:"image"`
	Description     string         `gorm:"type:text" json:"description"`
	// No column default: gorm skips zero-value fields that carry one on
	// Create, so Available=false would silently persist as true. Creation
	// paths set the flag explicitly.
	Available       bool           `gorm:"not null" json:"available"`
	IsApproved      bool           `gorm:"not null;default:false;index" json:"is_approved"`
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	ApprovedBy      *uint          `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	IsFeatured      bool           `gorm:"not null;default:false;index" json:"is_featured"`
	Views           int            `gorm:"not null;default:0" json:"views"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate checks required fields and enum membership, applying defaults for
// optional enums. It returns a VALIDATION_ERROR AppError on failure.
func (b *Book) Validate() error {
	if b.Category == "" {
		b.Category = CategoryOther
	}
	if !b.Category.Valid() {
		return NewValidationError("category must be one of: Fiction, Non-fiction, Education, Comics, Other")
	}
	if b.Condition == "" {
		b.Condition = ConditionUsed
	}
	if !b.Condition.Valid() {
		return NewValidationError("condition must be one of: New, Good, Used")
	}
	if !b.Mode.Valid() {
		return NewValidationError("mode must be one of: Sell, Rent")
	}
	return validateStruct(b)
}

// Approve transitions the listing to the approved state. Approving an
// already-approved listing fails with an INVALID_STATE error; approving a
// pending or rejected listing succeeds. A stale rejection reason from an
// earlier rejection is left in place.
func (b *Book) Approve(approverID uint, at time.Time) error {
	if b.ApprovalStatus == ApprovalStatusApproved {
		return NewInvalidStateError("Book is already approved")
	}
	b.IsApproved = true
	b.ApprovalStatus = ApprovalStatusApproved
	b.ApprovedBy = &approverID
	b.ApprovedAt = &at
	return nil
}

// Reject forces the listing into the rejected state regardless of its current
// state. An empty reason falls back to DefaultRejectionReason.
func (b *Book) Reject(reason string) {
	if reason == "" {
		reason = DefaultRejectionReason
	}
	b.IsApproved = false
	b.ApprovalStatus = ApprovalStatusRejected
	b.RejectionReason = reason
}
