package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"booklink/internal/mailer"
	"booklink/internal/models"
)

type sentMail struct {
	to   string
	tpl  mailer.Template
	data mailer.Data
}

// captureMailer records dispatched mail on a channel so tests can wait for
// the fire-and-forget goroutine.
type captureMailer struct {
	ch chan sentMail
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{ch: make(chan sentMail, 16)}
}

func (m *captureMailer) Send(_ context.Context, to string, tpl mailer.Template, data mailer.Data) error {
	m.ch <- sentMail{to: to, tpl: tpl, data: data}
	return nil
}

func (m *captureMailer) waitForSend(t *testing.T) sentMail {
	t.Helper()
	select {
	case sent := <-m.ch:
		return sent
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail dispatch")
		return sentMail{}
	}
}

func TestCreateTransaction_NotifiesSeller(t *testing.T) {
	t.Parallel()
	rec := newCaptureMailer()
	s, app, db := setupTestServerWithMailer(t, rec)

	owner := seedReader(t, db, "notify-owner", models.RoleUser, true, true)
	buyer := seedReader(t, db, "notify-buyer", models.RoleUser, true, true)
	book := seedBook(t, db, owner, "Notified Book", models.ApprovalStatusApproved)

	resp, _ := app.Test(authedRequest(t, s, http.MethodPost, "/api/transactions", buyer.ID,
		map[string]any{"book_id": book.ID, "type": "Buy"}))
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	sent := rec.waitForSend(t)
	if sent.to != owner.Email {
		t.Errorf("expected mail to %q, got %q", owner.Email, sent.to)
	}
	if sent.tpl != mailer.TemplateTransactionCreated {
		t.Errorf("expected transaction-created template, got %q", sent.tpl)
	}

	// The template renders name, title, buyer, type and price; a missing
	// key would leave a blank in the seller's email.
	want := map[string]string{
		"name":  owner.Name,
		"title": book.Title,
		"buyer": buyer.Name,
		"type":  "Buy",
		"price": "9.99",
	}
	for key, value := range want {
		if sent.data[key] != value {
			t.Errorf("data[%q] = %q, want %q", key, sent.data[key], value)
		}
	}
}
