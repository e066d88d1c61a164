// Package email delivers license keys to buyers.
//
// EmailSender abstracts the transport. NewSender picks one from Config:
//
//   - "postmark": github.com/mrz1836/postmark
//   - "resend": github.com/resend/resend-go/v2
//   - "dev" (default): DevSender, writing .html and .json files to disk
//
// Every sender validates SendEmailParams before sending and wraps transport
// failures in ErrFailedToSendEmail:
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//	    return err // wraps ErrInvalidConfig
//	}
//
//	msg, err := email.LicenseMessage(ctx, "buyer@example.com", key, cfg.SupportEmail)
//	if err != nil {
//	    return err
//	}
//	if err := sender.SendEmail(ctx, msg); err != nil {
//	    log.Warn("license email not delivered", logger.Error(err))
//	}
//
// HTML bodies are templ components from the templates subpackage.
package email
