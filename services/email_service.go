package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"prompteria-api/config"
	"prompteria-api/logger"
)

// Mailer sends account mail.
type Mailer interface {
	SendWelcomeEmail(email, name string) error
}

// EmailService delivers mail over SMTP. It is a no-op when no SMTP host
// is configured.
type EmailService struct {
	config *config.Config
	send   func(m ...*gomail.Message) error
	log    logger.Logger
}

func NewEmailService(cfg *config.Config, log logger.Logger) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		send:   dialer.DialAndSend,
		log:    log,
	}
}

// NewEmailServiceWithSender delivers through sender instead of dialing SMTP.
func NewEmailServiceWithSender(cfg *config.Config, sender gomail.Sender, log logger.Logger) *EmailService {
	return &EmailService{
		config: cfg,
		send: func(m ...*gomail.Message) error {
			return gomail.Send(sender, m...)
		},
		log: log,
	}
}

func (es *EmailService) Enabled() bool {
	return es.config.SMTPHost != ""
}

// SendWelcomeEmail greets a newly created account.
func (es *EmailService) SendWelcomeEmail(email, name string) error {
	if !es.Enabled() {
		es.log.Debug("SMTP disabled, skipping welcome email", logger.String("email", email))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s", es.config.FromName))

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to %[1]s</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #ff5722; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to %[1]s!</h1>
        </div>
        <div class="content">
            <h2>Hello %[2]s!</h2>
            <p>Your account is ready. Discover prompts shared by the community, like the ones you find useful, and publish your own.</p>
            <p><strong>The %[1]s Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, es.config.FromName, name)

	textBody := fmt.Sprintf(`
Hello %[2]s!

Your account is ready. Discover prompts shared by the community, like the ones you find useful, and publish your own.

The %[1]s Team

This is an automated email, please do not reply.
`, es.config.FromName, name)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.send(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	es.log.Info("Welcome email sent", logger.String("email", email))
	return nil
}
