package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/sahilchouksey/devcamper-api/config"
	"go.uber.org/zap"
)

// ErrEmailNotConfigured is returned when no SMTP host is set
var ErrEmailNotConfigured = errors.New("SMTP not configured")

// Mailer sends the transactional mails of the API
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, userName, resetURL string) error
}

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	logger   *zap.Logger
}

var _ Mailer = (*EmailService)(nil)

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnviornmentVariable, logger *zap.Logger) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     env.FROM_EMAIL,
		fromName: env.FROM_NAME,
		logger:   logger,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.host != ""
}

// SendPasswordResetEmail mails the reset link to the user
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, userName, resetURL string) error {
	if !e.IsConfigured() {
		return ErrEmailNotConfigured
	}

	body := PasswordResetBody(userName, resetURL)
	if err := e.sendEmail(ctx, toEmail, "Password reset token", body); err != nil {
		return err
	}

	e.logger.Info("password reset email sent", zap.String("to", toEmail))
	return nil
}

// PasswordResetBody is the plain text body of the reset mail
func PasswordResetBody(userName, resetURL string) string {
	if userName == "" {
		userName = "there"
	}
	return fmt.Sprintf("Hi %s,\r\n\r\n"+
		"You are receiving this email because you (or someone else) has requested the reset of a password. "+
		"Please make a PUT request to:\r\n\r\n%s\r\n\r\n"+
		"The link expires in 10 minutes. If you did not request this, ignore this email.\r\n", userName, resetURL)
}

// buildMessage renders headers in a fixed order followed by the body
func (e *EmailService) buildMessage(to, subject, body string) string {
	var message strings.Builder
	for _, h := range [][2]string{
		{"From", fmt.Sprintf("%s <%s>", e.fromName, e.from)},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	} {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)
	return message.String()
}

// sendEmail sends an email over SMTP, upgrading to TLS when the server offers it
func (e *EmailService) sendEmail(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var dialer net.Dialer
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	conn, err := smtp.NewClient(netConn, e.host)
	if err != nil {
		netConn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer conn.Close()

	if ok, _ := conn.Extension("STARTTLS"); ok {
		if err := conn.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if e.username != "" {
		if err := conn.Auth(smtp.PlainAuth("", e.username, e.password, e.host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(e.buildMessage(to, subject, body))); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}
