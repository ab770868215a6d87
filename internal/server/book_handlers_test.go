package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"booklink/internal/models"
)

func TestGetBooks_OnlyApprovedVisible(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	owner := seedReader(t, db, "public-owner", models.RoleUser, true, true)
	seedBook(t, db, owner, "Visible Book", models.ApprovalStatusApproved)
	seedBook(t, db, owner, "Pending Book", models.ApprovalStatusPending)
	seedBook(t, db, owner, "Rejected Book", models.ApprovalStatusRejected)

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Total int64         `json:"total"`
		Data  []models.Book `json:"data"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 1 {
		t.Errorf("expected 1 visible book, got %d", page.Total)
	}
	for _, b := range page.Data {
		if b.ApprovalStatus != models.ApprovalStatusApproved {
			t.Errorf("unapproved book %q leaked into public listing", b.Title)
		}
	}
}

func TestGetBook_IncrementsViews(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	owner := seedReader(t, db, "views-owner", models.RoleUser, true, true)
	book := seedBook(t, db, owner, "Counted Book", models.ApprovalStatusApproved)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/books/%d", book.ID), nil)
		resp, _ := app.Test(req)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}

	var reloaded models.Book
	if err := db.First(&reloaded, book.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Views != 3 {
		t.Errorf("expected 3 views, got %d", reloaded.Views)
	}
}

func TestGetFeaturedBooks(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	owner := seedReader(t, db, "featured-owner", models.RoleUser, true, true)
	featured := seedBook(t, db, owner, "Featured Book", models.ApprovalStatusApproved)
	featured.IsFeatured = true
	if err := db.Save(featured).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	seedBook(t, db, owner, "Ordinary Book", models.ApprovalStatusApproved)
	// Featured but unapproved books stay hidden.
	hidden := seedBook(t, db, owner, "Hidden Featured", models.ApprovalStatusPending)
	hidden.IsFeatured = true
	if err := db.Save(hidden).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/books/featured", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Count int           `json:"count"`
		Data  []models.Book `json:"data"`
	}
	decodeBody(t, resp, &body)
	if body.Count != 1 {
		t.Errorf("expected 1 featured book, got %d", body.Count)
	}
	if len(body.Data) == 1 && body.Data[0].Title != "Featured Book" {
		t.Errorf("unexpected featured book %q", body.Data[0].Title)
	}
}

func TestDeleteOwnBook_OwnershipEnforced(t *testing.T) {
	t.Parallel()
	s, app, db := setupTestServer(t)

	owner := seedReader(t, db, "del-owner", models.RoleUser, true, true)
	stranger := seedReader(t, db, "del-stranger", models.RoleUser, true, true)
	book := seedBook(t, db, owner, "Owned Book", models.ApprovalStatusApproved)

	resp, _ := app.Test(authedRequest(t, s, http.MethodDelete,
		fmt.Sprintf("/api/books/%d", book.ID), stranger.ID, nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(authedRequest(t, s, http.MethodDelete,
		fmt.Sprintf("/api/books/%d", book.ID), owner.ID, nil))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for owner, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.Book{}).Where("id = ?", book.ID).Count(&count)
	if count != 0 {
		t.Error("book should be deleted")
	}
}

func TestCreateTransaction_Rules(t *testing.T) {
	t.Parallel()
	s, app, db := setupTestServer(t)

	owner := seedReader(t, db, "txn-owner", models.RoleUser, true, true)
	buyer := seedReader(t, db, "txn-buyer", models.RoleUser, true, true)
	book := seedBook(t, db, owner, "Traded Book", models.ApprovalStatusApproved)
	pendingBook := seedBook(t, db, owner, "Untraded Book", models.ApprovalStatusPending)

	t.Run("owner cannot buy own listing", func(t *testing.T) {
		resp, _ := app.Test(authedRequest(t, s, http.MethodPost, "/api/transactions", owner.ID,
			map[string]any{"book_id": book.ID, "type": "Buy"}))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unapproved book not transactable", func(t *testing.T) {
		resp, _ := app.Test(authedRequest(t, s, http.MethodPost, "/api/transactions", buyer.ID,
			map[string]any{"book_id": pendingBook.ID, "type": "Buy"}))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("rent requires duration", func(t *testing.T) {
		resp, _ := app.Test(authedRequest(t, s, http.MethodPost, "/api/transactions", buyer.ID,
			map[string]any{"book_id": book.ID, "type": "Rent"}))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("successful buy then status transition", func(t *testing.T) {
		resp, _ := app.Test(authedRequest(t, s, http.MethodPost, "/api/transactions", buyer.ID,
			map[string]any{"book_id": book.ID, "type": "Buy"}))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var body struct {
			Data models.Transaction `json:"data"`
		}
		decodeBody(t, resp, &body)
		if body.Data.Reference == "" {
			t.Error("expected a transaction reference")
		}
		if body.Data.SellerID != owner.ID {
			t.Errorf("seller must derive from book owner, got %d", body.Data.SellerID)
		}
		if body.Data.Price != book.Price {
			t.Errorf("price must come from the listing, got %v", body.Data.Price)
		}

		// A stranger cannot move the transaction.
		stranger := seedReader(t, db, "txn-stranger", models.RoleUser, true, true)
		sResp, _ := app.Test(authedRequest(t, s, http.MethodPut,
			fmt.Sprintf("/api/transactions/%d/status", body.Data.ID), stranger.ID,
			map[string]any{"status": "Completed"}))
		defer func() { _ = sResp.Body.Close() }()
		if sResp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403 for non-participant, got %d", sResp.StatusCode)
		}

		// The buyer completes it; a second transition fails.
		cResp, _ := app.Test(authedRequest(t, s, http.MethodPut,
			fmt.Sprintf("/api/transactions/%d/status", body.Data.ID), buyer.ID,
			map[string]any{"status": "Completed"}))
		defer func() { _ = cResp.Body.Close() }()
		if cResp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 on completion, got %d", cResp.StatusCode)
		}
		rResp, _ := app.Test(authedRequest(t, s, http.MethodPut,
			fmt.Sprintf("/api/transactions/%d/status", body.Data.ID), buyer.ID,
			map[string]any{"status": "Cancelled"}))
		defer func() { _ = rResp.Body.Close() }()
		if rResp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 on double transition, got %d", rResp.StatusCode)
		}
	})
}
