package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService sends the portal's account and approval notifications
type EmailService interface {
	SendAccountCreated(toEmail, toName, password string) error
	SendProfileApproved(toEmail, toName string) error
	SendProfileDeclined(toEmail, toName, reason string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendAccountCreated delivers the initial password of a provisioned account
func (s *EmailServiceImpl) SendAccountCreated(toEmail, toName, password string) error {
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>An account has been created for you on the placement portal.</p>
		<p>Sign in at <a href="%s">%s</a> with this email address and the temporary password <strong>%s</strong>.</p>
		<p>Please change the password after your first sign-in and complete your academic profile.</p>`,
		html.EscapeString(toName), s.config.BaseURL, s.config.BaseURL, html.EscapeString(password))

	return s.send(toEmail, "Your placement portal account", body)
}

// SendProfileApproved tells a student their profile was verified
func (s *EmailServiceImpl) SendProfileApproved(toEmail, toName string) error {
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your profile has been verified. You can now register for placement drives you are eligible for.</p>`,
		html.EscapeString(toName))

	return s.send(toEmail, "Profile verified", body)
}

// SendProfileDeclined tells a student why their profile was sent back
func (s *EmailServiceImpl) SendProfileDeclined(toEmail, toName, reason string) error {
	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your profile was returned for correction.</p>
		<p>Reason: %s</p>
		<p>Please update your details and submit the profile again.</p>`,
		html.EscapeString(toName), html.EscapeString(reason))

	return s.send(toEmail, "Profile needs changes", body)
}

func (s *EmailServiceImpl) send(toEmail, subject, content string) error {
	// Without credentials the mail is only logged, for local development
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}
	return s.sendHTMLEmail(toEmail, subject, wrapHTML(content))
}

func wrapHTML(content string) string {
	return `<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">` +
		content +
		`<p>Regards,<br>Placement Cell</p></div></body></html>`
}

// buildMessage renders the headers in a fixed order followed by the body
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	message := buildMessage(from, toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
