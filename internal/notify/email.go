package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"focusflow/backend/internal/config"
	"focusflow/backend/internal/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg    *config.MailConfig
	logger *slog.Logger
}

func NewMailer(cfg *config.MailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) configured() bool {
	return m.cfg != nil && m.cfg.SMTPHost != "" && m.cfg.From != ""
}

// SendVerificationEmail mails the confirm link to a freshly registered
// address. Missing SMTP config is treated as "delivery disabled" rather
// than an error so local development works without a mail server.
func (m *Mailer) SendVerificationEmail(toEmail, confirmURL string) error {
	if !m.configured() {
		m.logger.Warn("mail config missing, skip verification email",
			slog.String("to", toEmail),
			slog.String("confirm_url", confirmURL))
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Please verify your email - FocusFlow")
	msg.SetBody("text/html", fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome to FocusFlow!</h2>
    <p>Please confirm your email address by clicking the link below:</p>
    <p><a href="%s">Verify my email</a></p>
    <p>If you did not create this account, you can ignore this message.</p>
  </div>
</body>
</html>`, confirmURL))

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	m.logger.Info("verification email sent", slog.String("to", toEmail))
	return nil
}

// SendTaskReminder mails a due-task reminder to the task owner.
func (m *Mailer) SendTaskReminder(toEmail string, task *models.Task) error {
	if !m.configured() {
		m.logger.Warn("mail config missing, skip reminder email", slog.String("to", toEmail))
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	due := ""
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02 15:04")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Reminder: %s", task.Content))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your task %q was due at %s. Don't forget to complete it!", task.Content, due))

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}

	m.logger.Info("reminder email sent",
		slog.String("to", toEmail),
		slog.String("task_id", task.ID.String()))
	return nil
}
