package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type resendClient struct {
	emails resend.EmailsSvc
	config Config
}

// NewResendClient creates a Resend-backed email sender.
func NewResendClient(cfg Config) (EmailSender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("%w: ResendAPIKey is required", ErrInvalidConfig)
	}
	if err := validateSender("SenderEmail", cfg.SenderEmail, true); err != nil {
		return nil, err
	}
	if err := validateSender("SupportEmail", cfg.SupportEmail, false); err != nil {
		return nil, err
	}

	return &resendClient{
		emails: resend.NewClient(cfg.ResendAPIKey).Emails,
		config: cfg,
	}, nil
}

func (c *resendClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    c.config.SenderEmail,
		To:      []string{params.SendTo},
		Subject: params.Subject,
		Html:    params.BodyHTML,
		ReplyTo: c.config.SupportEmail,
	}
	if params.Tag != "" {
		req.Tags = []resend.Tag{{Name: "category", Value: params.Tag}}
	}

	if _, err := c.emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}
