package fulfillment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/email"
	"github.com/linksphinx/licensekit/pkg/fulfillment"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/licensestore"
)

const webhookSecret = "whsec_test"

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (licensestore.Record, error) {
	return licensestore.Record{}, licensestore.ErrStoreFailure
}

func (failingStore) Claim(context.Context, licensestore.Record) (licensestore.Record, bool, error) {
	return licensestore.Record{}, false, licensestore.ErrStoreFailure
}

type fixture struct {
	svc      *fulfillment.Service
	provider *billing.MemoryProvider
	issuer   *issuance.Issuer
	sender   *mockSender
}

func newFixture(t *testing.T, opts ...fulfillment.Option) fixture {
	t.Helper()

	provider := billing.NewMemoryProvider(webhookSecret)
	provider.Put(paidRecord("cs_paid"))

	unpaid := paidRecord("cs_unpaid")
	unpaid.Paid = false
	unpaid.PaymentStatus = "unpaid"
	provider.Put(unpaid)

	noEmail := paidRecord("cs_no_email")
	noEmail.CustomerDetailsEmail = ""
	provider.Put(noEmail)

	issuer := issuance.NewIssuer(
		license.New(license.Config{SigningSecret: "test-secret", Product: license.DefaultProduct}),
		issuance.WithLogger(quietLogger()),
	)
	sender := &mockSender{}

	opts = append([]fulfillment.Option{
		fulfillment.WithLogger(quietLogger()),
		fulfillment.WithSupportEmail("support@example.com"),
	}, opts...)

	return fixture{
		svc:      fulfillment.NewService(billing.NewRegistry(provider), issuer, sender, opts...),
		provider: provider,
		issuer:   issuer,
		sender:   sender,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paidRecord(sessionID string) issuance.PaymentRecord {
	return issuance.PaymentRecord{
		SessionID:            sessionID,
		PaymentStatus:        "paid",
		Paid:                 true,
		CustomerDetailsEmail: "buyer@example.com",
		PriceID:              "price_123",
		PaymentLinkID:        "plink_123",
		CreatedAt:            1700000000,
	}
}

func sentTo(to string) any {
	return mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == to && p.Subject == email.LicenseSubject
	})
}

func webhook(p *billing.MemoryProvider, eventType, sessionID string) ([]byte, string) {
	payload := []byte(`{"id":"evt_1","type":"` + eventType + `","session_id":"` + sessionID + `"}`)
	return payload, p.Sign(payload)
}

func await(t *testing.T, f *fulfillment.Fulfillment) error {
	t.Helper()
	require.NotNil(t, f.Delivery)
	_, err := f.Delivery.AwaitWithTimeout(time.Second)
	return err
}

func TestNewService_PanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()

	registry := billing.NewRegistry(billing.NewMemoryProvider(""))
	issuer := issuance.NewIssuer(license.New(license.Config{SigningSecret: "s"}))
	sender := &mockSender{}

	assert.Panics(t, func() { fulfillment.NewService(nil, issuer, sender) })
	assert.Panics(t, func() { fulfillment.NewService(registry, nil, sender) })
	assert.Panics(t, func() { fulfillment.NewService(registry, issuer, nil) })
	assert.NotPanics(t, func() { fulfillment.NewService(registry, issuer, sender) })
}

func TestHandleWebhook_StatelessSends(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.sender.On("SendEmail", mock.Anything, sentTo("buyer@example.com")).Return(nil).Once()

	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	f, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, fulfillment.SourceWebhook, f.Source)
	assert.True(t, f.FirstIssue)
	assert.Equal(t, "cs_paid", f.SessionID)
	assert.NoError(t, await(t, f))
	fx.sender.AssertExpectations(t)
}

func TestHandleWebhook_IgnoredEvent(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	payload, sig := webhook(fx.provider, "invoice.paid", "cs_paid")
	f, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
	require.NoError(t, err)
	assert.Nil(t, f)
	fx.sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestHandleWebhook_Errors(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	unpaid, unpaidSig := webhook(fx.provider, "checkout.session.completed", "cs_unpaid")
	missing, missingSig := webhook(fx.provider, "checkout.session.completed", "cs_missing")

	tests := []struct {
		name      string
		provider  string
		payload   []byte
		signature string
		wantErr   error
	}{
		{"bad signature", "memory", payload, "deadbeef", billing.ErrInvalidSignature},
		{"unknown provider", "paypal", payload, sig, billing.ErrUnknownProvider},
		{"unpaid session", "memory", unpaid, unpaidSig, issuance.ErrPaymentNotConfirmed},
		{"unknown session", "memory", missing, missingSig, billing.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := fx.svc.HandleWebhook(context.Background(), tt.provider, tt.payload, tt.signature)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, f)
		})
	}
	fx.sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestFulfillSession_StatelessDoesNotSend(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	f, err := fx.svc.FulfillSession(context.Background(), "", "cs_paid")
	require.NoError(t, err)

	assert.Equal(t, fulfillment.SourceRedirect, f.Source)
	assert.False(t, f.FirstIssue)
	assert.Nil(t, f.Delivery)
	assert.NotEmpty(t, f.Issued.Token)
	fx.sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestFulfillSession_Errors(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	_, err := fx.svc.FulfillSession(context.Background(), "memory", "cs_unpaid")
	assert.ErrorIs(t, err, issuance.ErrPaymentNotConfirmed)

	_, err = fx.svc.FulfillSession(context.Background(), "memory", "cs_no_email")
	assert.ErrorIs(t, err, issuance.ErrMissingEmail)
}

func TestFulfill_BothPathsConverge(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, fulfillment.WithStore(licensestore.NewMemoryStore()))
	fx.sender.On("SendEmail", mock.Anything, sentTo("buyer@example.com")).Return(nil).Once()

	redirect, err := fx.svc.FulfillSession(context.Background(), "memory", "cs_paid")
	require.NoError(t, err)
	assert.True(t, redirect.FirstIssue)
	assert.NoError(t, await(t, redirect))

	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	hook, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
	require.NoError(t, err)
	assert.False(t, hook.FirstIssue)
	assert.Nil(t, hook.Delivery)

	assert.Equal(t, redirect.Issued.Token, hook.Issued.Token)
	fx.sender.AssertExpectations(t)
}

func TestFulfill_ConcurrentTriggersSendOnce(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, fulfillment.WithStore(licensestore.NewMemoryStore()))
	fx.sender.On("SendEmail", mock.Anything, sentTo("buyer@example.com")).Return(nil).Once()

	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")

	const n = 16
	results := make([]*fulfillment.Fulfillment, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var f *fulfillment.Fulfillment
			var err error
			if i%2 == 0 {
				f, err = fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
			} else {
				f, err = fx.svc.FulfillSession(context.Background(), "memory", "cs_paid")
			}
			assert.NoError(t, err)
			results[i] = f
		}(i)
	}
	wg.Wait()

	token := results[0].Issued.Token
	for _, f := range results {
		require.NotNil(t, f)
		assert.Equal(t, token, f.Issued.Token)
		if f.Delivery != nil {
			_, err := f.Delivery.AwaitWithTimeout(time.Second)
			assert.NoError(t, err)
		}
	}
	fx.sender.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestFulfill_DeliveryFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	f, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Issued.Token)

	assert.ErrorIs(t, await(t, f), fulfillment.ErrDeliveryFailed)
}

func TestFulfill_StoreFailureFallsBackToStateless(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, fulfillment.WithStore(failingStore{}))
	fx.sender.On("SendEmail", mock.Anything, mock.Anything).Return(nil).Once()

	redirect, err := fx.svc.FulfillSession(context.Background(), "memory", "cs_paid")
	require.NoError(t, err)
	assert.False(t, redirect.FirstIssue)

	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	hook, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
	require.NoError(t, err)
	assert.True(t, hook.FirstIssue)
	assert.NoError(t, await(t, hook))

	fx.sender.AssertExpectations(t)
}

func TestFulfill_DeliveryOutlivesRequestContext(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	started := make(chan struct{})
	fx.sender.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			ctx := args.Get(0).(context.Context)
			assert.NoError(t, ctx.Err())
		}).
		Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
	f, err := fx.svc.HandleWebhook(ctx, "memory", payload, sig)
	require.NoError(t, err)
	cancel()

	<-started
	assert.NoError(t, await(t, f))
}

// gatedProvider holds GetPaymentRecord until release is closed or the
// lookup context ends.
type gatedProvider struct {
	*billing.MemoryProvider
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedProvider() *gatedProvider {
	p := &gatedProvider{
		MemoryProvider: billing.NewMemoryProvider(webhookSecret),
		entered:        make(chan struct{}, 16),
		release:        make(chan struct{}),
	}
	p.Put(paidRecord("cs_paid"))
	return p
}

func (p *gatedProvider) GetPaymentRecord(ctx context.Context, sessionID string) (*issuance.PaymentRecord, error) {
	p.calls.Add(1)
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return p.MemoryProvider.GetPaymentRecord(ctx, sessionID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newGatedService(p *gatedProvider, sender email.EmailSender, opts ...fulfillment.Option) *fulfillment.Service {
	issuer := issuance.NewIssuer(
		license.New(license.Config{SigningSecret: "test-secret", Product: license.DefaultProduct}),
		issuance.WithLogger(quietLogger()),
	)
	opts = append([]fulfillment.Option{fulfillment.WithLogger(quietLogger())}, opts...)
	return fulfillment.NewService(billing.NewRegistry(p), issuer, sender, opts...)
}

func TestFulfill_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	p := newGatedProvider()
	svc := newGatedService(p, &mockSender{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.FulfillSession(ctxA, "memory", "cs_paid")
		errA <- err
	}()
	<-p.entered

	type result struct {
		f   *fulfillment.Fulfillment
		err error
	}
	resB := make(chan result, 1)
	go func() {
		f, err := svc.FulfillSession(context.Background(), "memory", "cs_paid")
		resB <- result{f, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(p.release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		require.NotNil(t, r.f)
		assert.NotEmpty(t, r.f.Issued.Token)
	case <-time.After(time.Second):
		t.Fatal("live caller never returned")
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestFulfill_SharedWorkIsBounded(t *testing.T) {
	t.Parallel()

	p := newGatedProvider()
	svc := newGatedService(p, &mockSender{}, fulfillment.WithFulfillTimeout(30*time.Millisecond))

	_, err := svc.FulfillSession(context.Background(), "memory", "cs_paid")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDrain(t *testing.T) {
	t.Parallel()

	t.Run("nothing pending", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		assert.NoError(t, fx.svc.Drain(context.Background()))
	})

	t.Run("waits for background delivery", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		release := make(chan struct{})
		fx.sender.On("SendEmail", mock.Anything, sentTo("buyer@example.com")).
			Run(func(mock.Arguments) { <-release }).
			Return(nil).Once()

		payload, sig := webhook(fx.provider, "checkout.session.completed", "cs_paid")
		f, err := fx.svc.HandleWebhook(context.Background(), "memory", payload, sig)
		require.NoError(t, err)
		require.NotNil(t, f.Delivery)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, fx.svc.Drain(ctx), context.DeadlineExceeded)
		assert.False(t, f.Delivery.IsComplete())

		close(release)
		require.NoError(t, fx.svc.Drain(context.Background()))
		assert.True(t, f.Delivery.IsComplete())
		fx.sender.AssertExpectations(t)
	})
}

func TestResendLicense(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	issued, err := fx.issuer.MintFromPayment(context.Background(), paidRecord("cs_paid"))
	require.NoError(t, err)

	t.Run("claims email", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		fx.sender.On("SendEmail", mock.Anything, sentTo("buyer@example.com")).Return(nil).Once()

		require.NoError(t, fx.svc.ResendLicense(context.Background(), " "+issued.Token+"\n", ""))
		fx.sender.AssertExpectations(t)
	})

	t.Run("recipient override", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		fx.sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "other@example.com" && p.BodyHTML != ""
		})).Return(nil).Once()

		require.NoError(t, fx.svc.ResendLicense(context.Background(), issued.Token, "other@example.com"))
		fx.sender.AssertExpectations(t)
	})

	t.Run("invalid license", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		err := fx.svc.ResendLicense(context.Background(), "LSK1.garbage", "")
		assert.ErrorIs(t, err, fulfillment.ErrInvalidLicense)
		assert.ErrorIs(t, err, license.ErrInvalidToken)
		fx.sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("delivery failure", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		fx.sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

		err := fx.svc.ResendLicense(context.Background(), issued.Token, "")
		assert.ErrorIs(t, err, fulfillment.ErrDeliveryFailed)
	})
}

func TestResendLicense_MissingSecret(t *testing.T) {
	t.Parallel()

	issuer := issuance.NewIssuer(license.New(license.Config{}), issuance.WithLogger(quietLogger()))
	svc := fulfillment.NewService(
		billing.NewRegistry(billing.NewMemoryProvider("")),
		issuer,
		&mockSender{},
		fulfillment.WithLogger(quietLogger()),
	)

	err := svc.ResendLicense(context.Background(), "LSK1.a.b", "")
	assert.ErrorIs(t, err, license.ErrMissingSigningSecret)
}

func TestResendSession(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	want, err := fx.issuer.MintFromPayment(context.Background(), paidRecord("cs_paid"))
	require.NoError(t, err)

	fx.sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == "gift@example.com"
	})).Return(nil).Once()

	require.NoError(t, fx.svc.ResendSession(context.Background(), "memory", "cs_paid", "gift@example.com"))
	fx.sender.AssertExpectations(t)

	// The override must not leak into the key.
	call := fx.sender.Calls[0]
	params := call.Arguments.Get(1).(email.SendEmailParams)
	assert.Contains(t, params.BodyHTML, want.Token)

	assert.ErrorIs(t, fx.svc.ResendSession(context.Background(), "memory", "cs_unpaid", ""), issuance.ErrPaymentNotConfirmed)
	assert.ErrorIs(t, fx.svc.ResendSession(context.Background(), "memory", "cs_no_email", "x@example.com"), issuance.ErrMissingEmail)
}
