package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"hotel-booking/config"

	"go.uber.org/zap"
)

const mailBoundary = "----=_HOTEL_BOOKING_BOUNDARY"

type MailMessage struct {
	To        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Mailer sends multipart (plain + html) mail over SMTP. Without SMTP settings
// it only logs the message.
type Mailer struct {
	cfg config.SMTPConfig
	l   *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, l *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, l: l}
}

func (m *Mailer) Send(msg MailMessage) error {
	to := sanitizeHeader(msg.To)
	if to == "" {
		return fmt.Errorf("mail recipient is empty")
	}

	if !m.cfg.Configured() {
		m.l.Info("[MOCK EMAIL]", zap.String("to", to), zap.String("subject", msg.Subject))
		return nil
	}

	from := fmt.Sprintf("%s <%s>", sanitizeHeader(m.cfg.FromName), m.cfg.Username)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	body := BuildMIMEMessage(from, to, msg.Subject, msg.PlainBody, msg.HTMLBody)
	if err := smtp.SendMail(addr, auth, m.cfg.Username, []string{to}, body); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.l.Info("email sent", zap.String("to", to), zap.String("subject", msg.Subject))
	return nil
}

func BuildMIMEMessage(from, to, subject, plain, html string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", sanitizeHeader(subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mailBoundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", mailBoundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plain + "\r\n")

	if html != "" {
		sb.WriteString(fmt.Sprintf("--%s\r\n", mailBoundary))
		sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		sb.WriteString(html + "\r\n")
	}

	sb.WriteString(fmt.Sprintf("--%s--\r\n", mailBoundary))
	return []byte(sb.String())
}

// header values must not smuggle extra header lines
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// HTMLEscape is enough for the short strings we put into mail templates.
func HTMLEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
