// Package mailer sends templated transactional email over SMTP. Dispatch is
// keyed by template name; callers treat delivery as best-effort.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"booklink/internal/config"
	"booklink/internal/middleware"
)

// Template names the transactional email templates.
type Template string

const (
	TemplateAccountApproved    Template = "accountApproved"
	TemplateBookApproved       Template = "bookApproved"
	TemplateBookRejected       Template = "bookRejected"
	TemplateTransactionCreated Template = "transactionCreated"
	TemplateWelcome            Template = "welcome"
)

// Data carries template parameters by name.
type Data map[string]string

// Sender dispatches a templated email to a single recipient.
type Sender interface {
	Send(ctx context.Context, to string, tpl Template, data Data) error
}

// SMTP sends email through a gomail dialer.
type SMTP struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// New builds an SMTP sender from config. It returns a Noop sender when no
// SMTP host is configured so callers never need a nil check.
func New(cfg *config.Config) Sender {
	if cfg.SMTPHost == "" {
		return Noop{}
	}
	return &SMTP{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:        cfg.EmailFrom,
		frontendURL: cfg.FrontendURL,
	}
}

// Send renders the template and delivers it. Both an HTML body and a plain
// text alternative are attached.
func (m *SMTP) Send(ctx context.Context, to string, tpl Template, data Data) error {
	subject, html, text, err := m.render(tpl, data)
	if err != nil {
		middleware.EmailDispatches.WithLabelValues(string(tpl), "render_error").Inc()
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		middleware.EmailDispatches.WithLabelValues(string(tpl), "error").Inc()
		middleware.Logger.WarnContext(ctx, "email delivery failed",
			slog.String("template", string(tpl)),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return err
	}

	middleware.EmailDispatches.WithLabelValues(string(tpl), "sent").Inc()
	middleware.Logger.InfoContext(ctx, "email sent",
		slog.String("template", string(tpl)),
		slog.String("to", to),
	)
	return nil
}

func (m *SMTP) render(tpl Template, data Data) (subject, html, text string, err error) {
	name := data["name"]
	title := data["title"]
	year := time.Now().Year()

	switch tpl {
	case TemplateAccountApproved:
		subject = "Your BookLink Account Has Been Approved!"
		text = fmt.Sprintf(
			"Hello %s!\n\nGreat news! Your BookLink account has been approved.\n\n"+
				"You can now list your books for sale or rent, browse and purchase books, "+
				"and leave reviews.\n\nLogin at: %s/login\n\nHappy reading!\nThe BookLink Team\n",
			name, m.frontendURL)
		html = wrapHTML(fmt.Sprintf(
			"<h2>Hello %s!</h2><p>Great news! Your BookLink account has been approved by our admin team.</p>"+
				"<p>You can now list books for sale or rent, browse and purchase books, and leave reviews.</p>"+
				`<p><a href="%s/login">Start exploring books</a></p>`,
			name, m.frontendURL), year)

	case TemplateBookApproved:
		subject = "Your Book Listing Is Live!"
		text = fmt.Sprintf(
			"Hello %s,\n\nYour listing \"%s\" has been approved and is now visible to other readers.\n\n"+
				"The BookLink Team\n", name, title)
		html = wrapHTML(fmt.Sprintf(
			"<h2>Hello %s,</h2><p>Your listing <strong>%s</strong> has been approved and is now visible to other readers.</p>",
			name, title), year)

	case TemplateBookRejected:
		reason := data["reason"]
		subject = "Your Book Listing Was Not Approved"
		text = fmt.Sprintf(
			"Hello %s,\n\nUnfortunately your listing \"%s\" was not approved.\n\nReason: %s\n\n"+
				"You can update the listing and it will be reviewed again.\n\nThe BookLink Team\n",
			name, title, reason)
		html = wrapHTML(fmt.Sprintf(
			"<h2>Hello %s,</h2><p>Unfortunately your listing <strong>%s</strong> was not approved.</p>"+
				"<p><em>Reason: %s</em></p><p>You can update the listing and it will be reviewed again.</p>",
			name, title, reason), year)

	case TemplateTransactionCreated:
		buyer := data["buyer"]
		price := data["price"]
		txType := data["type"]
		subject = "New Transaction on Your Listing"
		text = fmt.Sprintf(
			"Hello %s,\n\n%s wants to %s \"%s\" for %s.\n\nLog in to confirm or decline.\n\nThe BookLink Team\n",
			name, buyer, txType, title, price)
		html = wrapHTML(fmt.Sprintf(
			"<h2>Hello %s,</h2><p><strong>%s</strong> wants to %s <strong>%s</strong> for %s.</p>"+
				"<p>Log in to confirm or decline.</p>",
			name, buyer, txType, title, price), year)

	case TemplateWelcome:
		subject = "Welcome to BookLink!"
		text = fmt.Sprintf(
			"Hello %s!\n\nThanks for registering with BookLink. Your account is pending approval; "+
				"we will email you as soon as an admin verifies it.\n\nThe BookLink Team\n", name)
		html = wrapHTML(fmt.Sprintf(
			"<h2>Hello %s!</h2><p>Thanks for registering with BookLink. Your account is pending approval; "+
				"we will email you as soon as an admin verifies it.</p>", name), year)

	default:
		return "", "", "", fmt.Errorf("unknown email template %q", tpl)
	}

	return subject, html, text, nil
}

func wrapHTML(body string, year int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <hr>
    <p style="font-size: 12px; color: #666;">This is an automated email from BookLink. Please do not reply.<br>
    &copy; %d BookLink. All rights reserved.</p>
  </div>
</body>
</html>`, body, year)
}

// Noop drops all email. It is used when SMTP is not configured, e.g. in
// development and tests.
type Noop struct{}

// Send logs the dropped message and succeeds.
func (Noop) Send(ctx context.Context, to string, tpl Template, _ Data) error {
	middleware.EmailDispatches.WithLabelValues(string(tpl), "dropped").Inc()
	middleware.Logger.InfoContext(ctx, "email dropped (SMTP not configured)",
		slog.String("template", string(tpl)),
		slog.String("to", to),
	)
	return nil
}
