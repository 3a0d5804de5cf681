// Package mailer delivers verification codes by email.
package mailer

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// Mailer sends a plain-text message
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through an SMTP relay with PLAIN auth
type SMTPMailer struct {
	addr     string
	host     string
	from     string
	username string
	password string
	logger   *logger.Logger
}

// NewSMTPMailer creates a mailer for host:port
func NewSMTPMailer(host string, port int, username, password, from string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		host:     host,
		from:     from,
		username: username,
		password: password,
		logger:   log.WithComponent("mailer"),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := buildMessage(m.from, to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	// smtp.SendMail has no context; run it aside so callers can stop waiting
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, auth, m.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Error("Failed to send mail", "to", to, "error", err)
			return fmt.Errorf("failed to send mail: %w", err)
		}
		m.logger.Info("Mail sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *logger.Logger
}

// NewLogMailer creates a mailer for environments without SMTP
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{logger: log.WithComponent("mailer")}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("Mail not sent, no SMTP host configured", "to", to, "subject", subject, "body", body)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// GenerateCode returns a random numeric code of the given length
func GenerateCode(length int) (string, error) {
	const digits = "0123456789"
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}

// VerificationBody is the text of a verification code mail
func VerificationBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Hello,\n\nYour verification code is: %s\nThis code will expire in %d minutes.\n", code, int(ttl.Minutes()))
}
