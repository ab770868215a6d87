package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Book {
		return &Book{
			Title:   "The Pragmatic Programmer",
			Author:  "Andrew Hunt",
			Price:   12.50,
			Mode:    ModeSell,
			OwnerID: 1,
		}
	}

	t.Run("defaults applied", func(t *testing.T) {
		b := valid()
		require.NoError(t, b.Validate())
		assert.Equal(t, CategoryOther, b.Category)
		assert.Equal(t, ConditionUsed, b.Condition)
	})

	tests := []struct {
		name   string
		mutate func(*Book)
	}{
		{"missing title", func(b *Book) { b.Title = "" }},
		{"missing author", func(b *Book) { b.Author = "" }},
		{"negative price", func(b *Book) { b.Price = -1 }},
		{"missing mode", func(b *Book) { b.Mode = "" }},
		{"unknown mode", func(b *Book) { b.Mode = "Lease" }},
		{"unknown category", func(b *Book) { b.Category = "Poetry" }},
		{"unknown condition", func(b *Book) { b.Condition = "Mint" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			err := b.Validate()
			require.Error(t, err)
			appErr, ok := err.(*AppError)
			require.True(t, ok, "expected AppError, got %T", err)
			assert.Equal(t, CodeValidation, appErr.Code)
		})
	}
}

func TestBook_ApproveRejectInvariant(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("approve pending", func(t *testing.T) {
		b := &Book{ApprovalStatus: ApprovalStatusPending}
		require.NoError(t, b.Approve(7, now))
		assert.True(t, b.IsApproved)
		assert.Equal(t, ApprovalStatusApproved, b.ApprovalStatus)
		require.NotNil(t, b.ApprovedBy)
		assert.Equal(t, uint(7), *b.ApprovedBy)
	})

	t.Run("approve rejected succeeds", func(t *testing.T) {
		b := &Book{ApprovalStatus: ApprovalStatusRejected, RejectionReason: "blurry photos"}
		require.NoError(t, b.Approve(7, now))
		assert.True(t, b.IsApproved)
		assert.Equal(t, ApprovalStatusApproved, b.ApprovalStatus)
		// Approval keeps the stale rejection reason in place.
		assert.Equal(t, "blurry photos", b.RejectionReason)
	})

	t.Run("approve already approved fails", func(t *testing.T) {
		b := &Book{ApprovalStatus: ApprovalStatusApproved, IsApproved: true}
		err := b.Approve(7, now)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidState, err.(*AppError).Code)
		assert.True(t, b.IsApproved)
	})

	t.Run("reject from any state", func(t *testing.T) {
		for _, from := range []ApprovalStatus{ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected} {
			b := &Book{ApprovalStatus: from, IsApproved: from == ApprovalStatusApproved}
			b.Reject("duplicate listing")
			assert.False(t, b.IsApproved)
			assert.Equal(t, ApprovalStatusRejected, b.ApprovalStatus)
			assert.Equal(t, "duplicate listing", b.RejectionReason)
		}
	})

	t.Run("reject with empty reason uses default", func(t *testing.T) {
		b := &Book{ApprovalStatus: ApprovalStatusPending}
		b.Reject("")
		assert.Equal(t, DefaultRejectionReason, b.RejectionReason)
	})
}

func TestReader_Approve(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("approve unapproved", func(t *testing.T) {
		r := &Reader{Role: RoleUser}
		require.NoError(t, r.Approve(3, now))
		assert.True(t, r.IsApproved)
		require.NotNil(t, r.ApprovedBy)
		assert.Equal(t, uint(3), *r.ApprovedBy)
		require.NotNil(t, r.ApprovedAt)
	})

	t.Run("re-approval fails", func(t *testing.T) {
		r := &Reader{Role: RoleUser, IsApproved: true}
		err := r.Approve(3, now)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidState, err.(*AppError).Code)
	})
}

func TestTransaction_Transition(t *testing.T) {
	t.Parallel()

	t.Run("pending to completed", func(t *testing.T) {
		tx := &Transaction{Status: TransactionPending}
		require.NoError(t, tx.Transition(TransactionCompleted))
		assert.Equal(t, TransactionCompleted, tx.Status)
	})

	t.Run("pending to cancelled", func(t *testing.T) {
		tx := &Transaction{Status: TransactionPending}
		require.NoError(t, tx.Transition(TransactionCancelled))
	})

	t.Run("completed is terminal", func(t *testing.T) {
		tx := &Transaction{Status: TransactionCompleted}
		err := tx.Transition(TransactionCancelled)
		require.Error(t, err)
		assert.Equal(t, CodeInvalidState, err.(*AppError).Code)
	})

	t.Run("cannot transition to pending", func(t *testing.T) {
		tx := &Transaction{Status: TransactionPending}
		err := tx.Transition(TransactionPending)
		require.Error(t, err)
		assert.Equal(t, CodeValidation, err.(*AppError).Code)
	})
}
