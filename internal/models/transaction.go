package models

import (
	"time"
)

// TransactionType distinguishes purchases from rentals.
type TransactionType string

const (
	TransactionBuy  TransactionType = "Buy"
	TransactionRent TransactionType = "Rent"
)

// Valid reports whether the type is a known enum member.
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionRent
}

// TransactionStatus defines lifecycle states for transactions.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "Pending"
	TransactionCompleted TransactionStatus = "Completed"
	TransactionCancelled TransactionStatus = "Cancelled"
)

// Valid reports whether the status is a known enum member.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionCancelled:
		return true
	}
	return false
}

// Transaction records a buy or rent agreement between two readers over a book.
type Transaction struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Reference        string            `gorm:"size:36;unique;not null" json:"reference"`
	BookID           uint              `gorm:"not null;index" json:"book_id"`
	Book             *Book             `gorm:"foreignKey:BookID" json:"book,omitempty"`
	BuyerID          uint              `gorm:"not null;index" json:"buyer_id"`
	Buyer            *Reader           `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	SellerID         uint              `gorm:"not null;index" json:"seller_id"`
	Seller           *Reader           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Type             TransactionType   `gorm:"type:varchar(10);not null" json:"type"`
	RentDurationDays *int              `json:"rent_duration_days,omitempty"`
	Price            float64           `gorm:"not null" json:"price" validate:"gte=0"`
	Status           TransactionStatus `gorm:"type:varchar(10);not null;default:'Pending';index" json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Validate checks enum membership and field constraints.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return NewValidationError("type must be one of: Buy, Rent")
	}
	if t.Status == "" {
		t.Status = TransactionPending
	}
	if !t.Status.Valid() {
		return NewValidationError("status must be one of: Pending, Completed, Cancelled")
	}
	if t.Type == TransactionRent && (t.RentDurationDays == nil || *t.RentDurationDays <= 0) {
		return NewValidationError("rent_duration_days must be positive for rentals")
	}
	return validateStruct(t)
}

// Transition moves the transaction to the target status. Only pending
// transactions may move, and only to Completed or Cancelled.
func (t *Transaction) Transition(to TransactionStatus) error {
	if !to.Valid() || to == TransactionPending {
		return NewValidationError("status must be Completed or Cancelled")
	}
	if t.Status != TransactionPending {
		return NewInvalidStateError("only pending transactions can change status")
	}
	t.Status = to
	return nil
}
