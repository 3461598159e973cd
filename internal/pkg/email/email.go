package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Purpose selects the wording of an OTP email
type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposePasswordReset Purpose = "password_reset"
)

// EmailService defines the interface for outbound email
type EmailService interface {
	SendOTP(ctx context.Context, toEmail, toName, code string, purpose Purpose, ttl time.Duration) error
}

// Config selects and configures the email provider
type Config struct {
	Provider  string // smtp, ses or log
	FromName  string
	FromEmail string
	SMTP      SMTPConfig
	SESRegion string
}

// NewEmailService builds the configured provider. SMTP without credentials
// degrades to the log provider so local setups keep working.
func NewEmailService(ctx context.Context, cfg Config, logger zerolog.Logger) (EmailService, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ses":
		return NewSESService(ctx, cfg.SESRegion, cfg.FromEmail, cfg.FromName, logger)
	case "smtp":
		if cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
			logger.Warn().Msg("SMTP credentials not configured, falling back to log email provider")
			return NewLogService(logger), nil
		}
		cfg.SMTP.FromName = cfg.FromName
		cfg.SMTP.FromEmail = cfg.FromEmail
		return NewSMTPService(cfg.SMTP, logger), nil
	case "", "log":
		return NewLogService(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// renderOTP returns subject, html and text bodies for an OTP email
func renderOTP(toName, code string, purpose Purpose, ttl time.Duration) (string, string, string) {
	minutes := int(ttl.Minutes())
	subject := "Your verification code"
	intro := "Use the code below to verify your email address."
	if purpose == PurposePasswordReset {
		subject = "Your password reset code"
		intro = "Use the code below to reset your password."
	}

	html := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>%s</p>
				<p style="font-size: 24px; letter-spacing: 4px;"><strong>%s</strong></p>
				<p>This code expires in %d minutes.</p>
				<p>If you did not request it, you can ignore this email.</p>
			</div>
		</body>
		</html>
	`, toName, intro, code, minutes)

	text := fmt.Sprintf("Hello %s,\n\n%s\n\n%s\n\nThis code expires in %d minutes.\n", toName, intro, code, minutes)
	return subject, html, text
}

// LogService writes codes to the log instead of sending them
type LogService struct {
	logger zerolog.Logger
}

// NewLogService creates a LogService
func NewLogService(logger zerolog.Logger) *LogService {
	return &LogService{logger: logger}
}

// SendOTP logs the code
func (s *LogService) SendOTP(_ context.Context, toEmail, toName, code string, purpose Purpose, ttl time.Duration) error {
	s.logger.Warn().
		Str("toEmail", toEmail).
		Str("toName", toName).
		Str("purpose", string(purpose)).
		Str("code", code).
		Dur("ttl", ttl).
		Msg("Email delivery disabled - OTP not sent. Use the code above for testing.")
	return nil
}
