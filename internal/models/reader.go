// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role defines the access level of a reader account.
type Role string

const (
	// RoleUser is the default role for registered readers.
	RoleUser Role = "user"
	// RoleModerator can approve readers and books but cannot deactivate or
	// delete accounts or feature books.
	RoleModerator Role = "moderator"
	// RoleAdmin has full moderation privileges.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is a known enum member.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Reader represents a registered account on the marketplace. Accounts start
// unapproved and become usable once a moderator or admin approves them.
type Reader struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:120;not null" json:"name" validate:"required,max=120"`
	Email      string     `gorm:"size:254;unique;not null" json:"email" validate:"required,email"`
	Password   string     `gorm:"not null" json:"-" validate:"required,min=8"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	IsApproved bool       `gorm:"not null;default:false;index" json:"is_approved"`
	// No column default: gorm skips zero-value fields that carry one on
	// Create, so IsActive=false would silently persist as true. Creation
	// paths set the flag explicitly.
	IsActive   bool       `gorm:"not null;index" json:"is_active"`
	ApprovedBy *uint      `json:"approved_by,omitempty"`
	Approver   *Reader    `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Validate checks required fields and enum membership. It returns a
// VALIDATION_ERROR AppError rather than panicking or relying on DB constraints.
func (r *Reader) Validate() error {
	if r.Role == "" {
		r.Role = RoleUser
	}
	if !r.Role.Valid() {
		return NewValidationError("role must be one of: user, moderator, admin")
	}
	return validateStruct(r)
}

// Approve marks the reader approved by the given account. It fails with an
// INVALID_STATE error when the reader is already approved; approval is one-way.
func (r *Reader) Approve(approverID uint, at time.Time) error {
	if r.IsApproved {
		return NewInvalidStateError("Reader is already approved")
	}
	r.IsApproved = true
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	return nil
}
