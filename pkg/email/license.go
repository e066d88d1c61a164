package email

import (
	"context"
	"errors"

	"github.com/linksphinx/licensekit/pkg/email/templates"
)

const (
	LicenseSubject = "Your LinkSphinx Pro License"
	LicenseTag     = "license"
)

// LicenseMessage renders the license delivery email for to.
func LicenseMessage(ctx context.Context, to, key, supportEmail string) (SendEmailParams, error) {
	body, err := templates.Render(ctx, templates.LicenseEmail(templates.LicenseData{
		ProductName:  "LinkSphinx",
		Key:          key,
		SupportEmail: supportEmail,
	}))
	if err != nil {
		return SendEmailParams{}, errors.Join(ErrFailedToSendEmail, err)
	}

	params := SendEmailParams{
		SendTo:   to,
		Subject:  LicenseSubject,
		BodyHTML: body,
		Tag:      LicenseTag,
	}
	return params, params.Validate()
}
