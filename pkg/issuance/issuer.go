package issuance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/logger"
)

// Issued is a freshly minted license together with the facts it certifies.
type Issued struct {
	Token  string
	Claims license.Claims
	Email  string

	// Deterministic is false when the record had no creation timestamp and
	// the issue time fell back to the clock. Such keys will not converge
	// across trigger paths.
	Deterministic bool
}

// Issuer derives claims from payment records and applies verification policy.
// It holds no mutable state and is safe for concurrent use.
type Issuer struct {
	codec *license.Codec
	now   func() time.Time
	log   *slog.Logger
}

// NewIssuer creates an Issuer around codec.
// Panics if codec is nil to fail fast during initialization.
func NewIssuer(codec *license.Codec, opts ...Option) *Issuer {
	if codec == nil {
		panic("issuance: license codec is required")
	}
	i := &Issuer{
		codec: codec,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Codec returns the underlying license codec.
func (i *Issuer) Codec() *license.Codec {
	return i.codec
}

// MintFromPayment mints the license for a confirmed payment record.
// Calling it repeatedly with the same record yields byte-identical tokens.
func (i *Issuer) MintFromPayment(ctx context.Context, rec PaymentRecord) (Issued, error) {
	if !rec.Paid {
		return Issued{}, i.rejectMint(ctx, rec, ErrPaymentNotConfirmed)
	}

	email := rec.ResolveEmail()
	if email == "" {
		return Issued{}, i.rejectMint(ctx, rec, ErrMissingEmail)
	}

	switch i.codec.CheckScope(rec.PaymentLinkID, rec.PriceID) {
	case license.ReasonPaymentLink:
		return Issued{}, i.rejectMint(ctx, rec, ErrPaymentLinkMismatch)
	case license.ReasonPrice:
		return Issued{}, i.rejectMint(ctx, rec, ErrPriceMismatch)
	}

	issuedAt, deterministic := i.issuedAt(rec)
	if !deterministic {
		i.log.WarnContext(ctx, "payment record has no creation time, issue time taken from clock",
			logger.Provider(rec.Provider),
			logger.SessionID(rec.SessionID),
			logger.Component("issuance"),
		)
	}

	claims := license.Claims{
		Product:       i.codec.Product(),
		Email:         email,
		IssuedAt:      issuedAt,
		Version:       license.SchemaVersion,
		PaymentLinkID: rec.PaymentLinkID,
		PriceID:       rec.PriceID,
	}

	token, err := i.codec.Mint(claims)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Token:         token,
		Claims:        claims,
		Email:         email,
		Deterministic: deterministic,
	}, nil
}

func (i *Issuer) issuedAt(rec PaymentRecord) (int64, bool) {
	if rec.CreatedAt > 0 {
		return rec.CreatedAt * 1000, true
	}
	return i.now().UnixMilli(), false
}

func (i *Issuer) rejectMint(ctx context.Context, rec PaymentRecord, err error) error {
	i.log.InfoContext(ctx, "license mint rejected",
		logger.Provider(rec.Provider),
		logger.SessionID(rec.SessionID),
		slog.String("payment_status", rec.PaymentStatus),
		logger.Error(err),
		logger.Component("issuance"),
	)
	return err
}

// VerifyFromClient verifies a client-supplied key.
// The error is non-nil only for server misconfiguration; every client-side
// problem is expressed as an invalid Outcome. hintEmail is optional and only
// used to annotate logs when it disagrees with the licensed email.
func (i *Issuer) VerifyFromClient(ctx context.Context, key string, hintEmail string) (Outcome, error) {
	res, err := i.codec.Verify(strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, license.ErrMissingSigningSecret) {
			i.log.ErrorContext(ctx, "license verification unavailable",
				logger.Error(err),
				logger.Component("issuance"),
			)
			return Outcome{}, err
		}
		return Outcome{Reason: license.ReasonFormat, Message: MessageInvalid}, nil
	}

	if !res.Valid {
		i.log.InfoContext(ctx, "license rejected",
			logger.Reason(string(res.Reason)),
			logger.Component("issuance"),
		)
		return Outcome{Reason: res.Reason, Message: Humanize(res.Reason)}, nil
	}

	if hint := strings.TrimSpace(hintEmail); hint != "" && res.Claims.Email != "" &&
		!strings.EqualFold(hint, res.Claims.Email) {
		i.log.DebugContext(ctx, "license email differs from client hint",
			logger.Component("issuance"),
		)
	}

	return Outcome{Valid: true, Claims: res.Claims}, nil
}
