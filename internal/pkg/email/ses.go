package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

// sesAPI is the subset of the SES client used here
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESService sends email via AWS SES
type SESService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	logger    zerolog.Logger
}

// NewSESService creates a new email service using AWS SES
func NewSESService(ctx context.Context, region, fromEmail, fromName string, logger zerolog.Logger) (*SESService, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}, nil
}

// SendOTP sends a one-time code
func (e *SESService) SendOTP(ctx context.Context, toEmail, toName, code string, purpose Purpose, ttl time.Duration) error {
	subject, htmlBody, textBody := renderOTP(toName, code, purpose, ttl)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	out, err := e.client.SendEmail(ctx, input)
	if err != nil {
		e.logger.Error().Err(err).Str("toEmail", toEmail).Msg("SES send failed")
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	e.logger.Debug().Str("messageId", aws.ToString(out.MessageId)).Str("purpose", string(purpose)).Msg("OTP email sent")
	return nil
}
