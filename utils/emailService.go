package utils

import (
	"context"
	"fmt"
	"lms/config"
	"lms/services/learning"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer implements learning.Mailer on top of SendGrid
type Mailer struct {
	client     *sendgrid.Client
	from       *mail.Email
	brandTitle string
}

// NewMailer builds a mailer from configuration. Without an API key the mailer
// only logs what it would have sent.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from:       mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
		brandTitle: cfg.EmailSenderName,
	}
	if cfg.SendGridAPIKey != "" {
		m.client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return m
}

// SendEmail wraps the body in the branded template and delivers it
func (m *Mailer) SendEmail(ctx context.Context, e learning.EmailPayload) error {
	html := getEmailTemplate(m.brandTitle, e.Subject, e.Body)

	// Debug Logs
	log.Printf("[EMAIL] To: %s Subject: %s", e.To, e.Subject)
	if m.client == nil {
		return nil
	}

	message := mail.NewSingleEmail(m.from, e.Subject, mail.NewEmail("", e.To), e.Subject, html)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// HTML wrapper shared by every outgoing email
func getEmailTemplate(brand, title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A57; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A57; line-height: 1.6; }
			.content h2 { color: #1B3A57; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2E8B57; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #2E8B57; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You are receiving this email because you are enrolled on %s.
			</div>
		</div>
	</body>
	</html>
	`, brand, title, bodyContent, brand)
}
