package issuance_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
)

const testSecret = "test-secret"

func newIssuer(t *testing.T, cfg license.Config, opts ...issuance.Option) *issuance.Issuer {
	t.Helper()
	if cfg.SigningSecret == "" {
		cfg.SigningSecret = testSecret
	}
	return issuance.NewIssuer(license.New(cfg), opts...)
}

func paidRecord() issuance.PaymentRecord {
	return issuance.PaymentRecord{
		Provider:             "stripe",
		SessionID:            "cs_test_123",
		PaymentStatus:        "paid",
		Paid:                 true,
		CustomerDetailsEmail: "buyer@example.com",
		PriceID:              "price_123",
		PaymentLinkID:        "plink_123",
		CreatedAt:            1700000000,
	}
}

func TestNewIssuer_PanicsWithoutCodec(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		issuance.NewIssuer(nil)
	})
}

func TestMintFromPayment(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, license.Config{})

	issued, err := issuer.MintFromPayment(context.Background(), paidRecord())
	require.NoError(t, err)

	assert.True(t, issued.Deterministic)
	assert.Equal(t, "buyer@example.com", issued.Email)
	assert.Equal(t, license.Claims{
		Product:       license.DefaultProduct,
		Email:         "buyer@example.com",
		IssuedAt:      1700000000000,
		Version:       license.SchemaVersion,
		PaymentLinkID: "plink_123",
		PriceID:       "price_123",
	}, issued.Claims)

	res, err := issuer.Codec().Verify(issued.Token)
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, issued.Claims, *res.Claims)
}

func TestMintFromPayment_Idempotent(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, license.Config{})
	rec := paidRecord()

	first, err := issuer.MintFromPayment(context.Background(), rec)
	require.NoError(t, err)
	second, err := issuer.MintFromPayment(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
}

func TestMintFromPayment_CrossPathConvergence(t *testing.T) {
	t.Parallel()

	cfg := license.Config{SigningSecret: testSecret}

	// Two independent issuers with clocks far apart model the webhook and
	// redirect handlers running on different instances.
	webhook := issuance.NewIssuer(license.New(cfg), issuance.WithClock(func() time.Time {
		return time.Unix(1800000000, 0)
	}))
	redirect := issuance.NewIssuer(license.New(cfg), issuance.WithClock(func() time.Time {
		return time.Unix(1900000000, 0)
	}))

	rec := paidRecord()
	a, err := webhook.MintFromPayment(context.Background(), rec)
	require.NoError(t, err)
	b, err := redirect.MintFromPayment(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, a.Token, b.Token)
	assert.Equal(t, int64(1700000000000), a.Claims.IssuedAt)
}

func TestMintFromPayment_EmailPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		details string
		flat    string
		want    string
		wantErr error
	}{
		{name: "structured details win", details: "details@example.com", flat: "flat@example.com", want: "details@example.com"},
		{name: "flat used when details empty", flat: "flat@example.com", want: "flat@example.com"},
		{name: "blank details fall through", details: "   ", flat: "flat@example.com", want: "flat@example.com"},
		{name: "surrounding whitespace trimmed", details: " buyer@example.com ", want: "buyer@example.com"},
		{name: "neither present", wantErr: issuance.ErrMissingEmail},
	}

	issuer := newIssuer(t, license.Config{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := paidRecord()
			rec.CustomerDetailsEmail = tt.details
			rec.CustomerEmail = tt.flat

			issued, err := issuer.MintFromPayment(context.Background(), rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, issued.Token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, issued.Email)
			assert.Equal(t, tt.want, issued.Claims.Email)
		})
	}
}

func TestMintFromPayment_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     license.Config
		mutate  func(*issuance.PaymentRecord)
		wantErr error
	}{
		{
			name:    "unpaid",
			mutate:  func(r *issuance.PaymentRecord) { r.Paid = false; r.PaymentStatus = "unpaid" },
			wantErr: issuance.ErrPaymentNotConfirmed,
		},
		{
			name:    "unpaid checked before email",
			mutate:  func(r *issuance.PaymentRecord) { r.Paid = false; r.CustomerDetailsEmail = "" },
			wantErr: issuance.ErrPaymentNotConfirmed,
		},
		{
			name:    "payment link outside allow-list",
			cfg:     license.Config{AllowedPaymentLinkID: "plink_other"},
			wantErr: issuance.ErrPaymentLinkMismatch,
		},
		{
			name:    "price outside allow-list",
			cfg:     license.Config{AllowedPriceID: "price_other"},
			wantErr: issuance.ErrPriceMismatch,
		},
		{
			name:    "payment link checked before price",
			cfg:     license.Config{AllowedPaymentLinkID: "plink_other", AllowedPriceID: "price_other"},
			wantErr: issuance.ErrPaymentLinkMismatch,
		},
		{
			name:    "missing payment link with allow-list set",
			cfg:     license.Config{AllowedPaymentLinkID: "plink_123"},
			mutate:  func(r *issuance.PaymentRecord) { r.PaymentLinkID = "" },
			wantErr: issuance.ErrPaymentLinkMismatch,
		},
		{
			name:    "signing secret missing",
			cfg:     license.Config{},
			wantErr: license.ErrMissingSigningSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var issuer *issuance.Issuer
			if tt.wantErr == license.ErrMissingSigningSecret {
				issuer = issuance.NewIssuer(license.New(tt.cfg))
			} else {
				issuer = newIssuer(t, tt.cfg)
			}

			rec := paidRecord()
			if tt.mutate != nil {
				tt.mutate(&rec)
			}

			_, err := issuer.MintFromPayment(context.Background(), rec)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMintFromPayment_AllowListMatch(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, license.Config{
		AllowedPaymentLinkID: "plink_123",
		AllowedPriceID:       "price_123",
	})

	issued, err := issuer.MintFromPayment(context.Background(), paidRecord())
	require.NoError(t, err)

	outcome, err := issuer.VerifyFromClient(context.Background(), issued.Token, "")
	require.NoError(t, err)
	assert.True(t, outcome.Valid)
}

func TestMintFromPayment_ClockFallback(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))
	fixed := time.UnixMilli(1750000000123)

	issuer := newIssuer(t, license.Config{},
		issuance.WithClock(func() time.Time { return fixed }),
		issuance.WithLogger(log),
	)

	rec := paidRecord()
	rec.CreatedAt = 0

	issued, err := issuer.MintFromPayment(context.Background(), rec)
	require.NoError(t, err)

	assert.False(t, issued.Deterministic)
	assert.Equal(t, int64(1750000000123), issued.Claims.IssuedAt)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "session_id=cs_test_123")
}

func TestMintFromPayment_LogsRejection(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	issuer := newIssuer(t, license.Config{}, issuance.WithLogger(slog.New(slog.NewTextHandler(buf, nil))))

	rec := paidRecord()
	rec.Paid = false

	_, err := issuer.MintFromPayment(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "license mint rejected")
	assert.Contains(t, buf.String(), "payment not confirmed")
}

func TestIsRejection(t *testing.T) {
	t.Parallel()

	assert.True(t, issuance.IsRejection(issuance.ErrPaymentNotConfirmed))
	assert.True(t, issuance.IsRejection(issuance.ErrMissingEmail))
	assert.True(t, issuance.IsRejection(issuance.ErrPriceMismatch))
	assert.True(t, issuance.IsPolicyRejection(issuance.ErrPaymentLinkMismatch))
	assert.False(t, issuance.IsPolicyRejection(issuance.ErrMissingEmail))
	assert.False(t, issuance.IsRejection(license.ErrMissingSigningSecret))
}
