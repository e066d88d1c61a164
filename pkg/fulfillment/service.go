package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/linksphinx/licensekit/pkg/async"
	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/email"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/licensestore"
	"github.com/linksphinx/licensekit/pkg/logger"
)

// Source names the trigger path of a fulfillment.
type Source string

const (
	SourceWebhook  Source = "webhook"
	SourceRedirect Source = "redirect"
)

// Fulfillment is the outcome of one trigger for one checkout session.
type Fulfillment struct {
	Provider  string
	SessionID string
	Source    Source
	Issued    issuance.Issued

	// FirstIssue is true when this call claimed the session in the store.
	// Without a store it is true for the webhook path.
	FirstIssue bool

	// Delivery completes when the background email attempt ends. Nil when
	// this fulfillment did not send.
	Delivery *async.Future[struct{}]
}

// Service runs the trigger paths. It is safe for concurrent use.
type Service struct {
	providers *billing.Registry
	issuer    *issuance.Issuer
	sender    email.EmailSender
	store     licensestore.Store
	log       *slog.Logger

	deliveryTimeout time.Duration
	fulfillTimeout  time.Duration
	supportEmail    string

	inflight singleflight.Group
	pending  sync.WaitGroup
}

// NewService creates a Service.
// Panics if a required dependency is nil.
func NewService(providers *billing.Registry, issuer *issuance.Issuer, sender email.EmailSender, opts ...Option) *Service {
	if providers == nil {
		panic("fulfillment: provider registry is required")
	}
	if issuer == nil {
		panic("fulfillment: issuer is required")
	}
	if sender == nil {
		panic("fulfillment: email sender is required")
	}

	s := &Service{
		providers:       providers,
		issuer:          issuer,
		sender:          sender,
		log:             slog.Default(),
		deliveryTimeout: 15 * time.Second,
		fulfillTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleWebhook authenticates a provider webhook and fulfills the session it
// names. It returns nil, nil for events that need no action.
func (s *Service) HandleWebhook(ctx context.Context, providerName string, payload []byte, signature string) (*Fulfillment, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	event, err := provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return nil, err
	}
	if !event.Actionable() {
		s.log.DebugContext(ctx, "webhook event ignored",
			logger.Provider(provider.Name()),
			logger.EventType(event.ProviderEvent),
			logger.Component("fulfillment"),
		)
		return nil, nil
	}

	return s.fulfill(ctx, provider, event.SessionID, SourceWebhook)
}

// FulfillSession runs the success-page path for sessionID. An empty
// providerName selects the default provider.
func (s *Service) FulfillSession(ctx context.Context, providerName, sessionID string) (*Fulfillment, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}
	return s.fulfill(ctx, provider, sessionID, SourceRedirect)
}

// fulfill collapses concurrent calls for the same session and trigger. The
// shared work runs detached from any one caller's cancellation; each caller
// stops waiting when its own ctx ends.
func (s *Service) fulfill(ctx context.Context, provider billing.Provider, sessionID string, source Source) (*Fulfillment, error) {
	key := provider.Name() + ":" + sessionID + ":" + string(source)

	s.pending.Add(1)
	ch := s.inflight.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fulfillTimeout)
		defer cancel()
		return s.fulfillOnce(fctx, provider, sessionID, source)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
		s.pending.Done()
	case <-ctx.Done():
		go func() {
			<-ch
			s.pending.Done()
		}()
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	f := res.Val.(*Fulfillment)
	if res.Shared {
		// Callers of a collapsed flight share one delivery future.
		cp := *f
		return &cp, nil
	}
	return f, nil
}

func (s *Service) fulfillOnce(ctx context.Context, provider billing.Provider, sessionID string, source Source) (*Fulfillment, error) {
	rec, err := provider.GetPaymentRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Provider == "" {
		rec.Provider = provider.Name()
	}

	issued, err := s.issuer.MintFromPayment(ctx, *rec)
	if err != nil {
		return nil, err
	}

	f := &Fulfillment{
		Provider:   provider.Name(),
		SessionID:  sessionID,
		Source:     source,
		Issued:     issued,
		FirstIssue: s.claim(ctx, provider.Name(), sessionID, issued, source),
	}

	if f.FirstIssue {
		f.Delivery = s.deliver(ctx, f)
	}
	return f, nil
}

// claim reports whether this call should deliver the email.
func (s *Service) claim(ctx context.Context, providerName, sessionID string, issued issuance.Issued, source Source) bool {
	if s.store == nil {
		return source == SourceWebhook
	}

	stored, inserted, err := s.store.Claim(ctx, licensestore.Record{
		SessionID: providerName + ":" + sessionID,
		Provider:  providerName,
		Email:     issued.Email,
		Key:       issued.Token,
	})
	if err != nil {
		s.log.WarnContext(ctx, "license store unavailable, falling back to stateless delivery",
			logger.SessionID(sessionID),
			logger.Error(err),
			logger.Component("fulfillment"),
		)
		return source == SourceWebhook
	}
	if !inserted && stored.Key != issued.Token {
		s.log.WarnContext(ctx, "cached license differs from derived license",
			logger.SessionID(sessionID),
			logger.Component("fulfillment"),
		)
	}
	return inserted
}

// deliver sends the license email in the background. Drain waits for it.
func (s *Service) deliver(ctx context.Context, f *Fulfillment) *async.Future[struct{}] {
	attrs := []any{
		logger.Provider(f.Provider),
		logger.SessionID(f.SessionID),
		slog.String("source", string(f.Source)),
		logger.Component("fulfillment"),
	}

	s.pending.Add(1)
	fut := async.Detach(ctx, s.deliveryTimeout, f.Issued, func(ctx context.Context, issued issuance.Issued) (struct{}, error) {
		if err := s.send(ctx, issued.Email, issued.Token); err != nil {
			s.log.WarnContext(ctx, "license email not delivered", append(attrs, logger.Error(err))...)
			return struct{}{}, err
		}
		s.log.InfoContext(ctx, "license email delivered", attrs...)
		return struct{}{}, nil
	})
	go func() {
		<-fut.Done()
		s.pending.Done()
	}()
	return fut
}

// Drain blocks until every started fulfillment and background delivery has
// finished, or ctx ends. Call it after the HTTP server has stopped accepting
// requests.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) send(ctx context.Context, to, token string) error {
	msg, err := email.LicenseMessage(ctx, to, token, s.supportEmail)
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if err := s.sender.SendEmail(ctx, msg); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	return nil
}

// ResendLicense re-delivers an existing key. The key must pass full
// verification. to, when set, replaces the licensed email as recipient only.
func (s *Service) ResendLicense(ctx context.Context, key, to string) error {
	outcome, err := s.issuer.VerifyFromClient(ctx, key, "")
	if err != nil {
		return err
	}
	if !outcome.Valid {
		return errors.Join(ErrInvalidLicense, outcome.Reason.Err())
	}

	recipient := strings.TrimSpace(to)
	if recipient == "" {
		recipient = outcome.Claims.Email
	}
	if recipient == "" {
		return issuance.ErrMissingEmail
	}

	return s.send(ctx, recipient, strings.TrimSpace(key))
}

// ResendSession re-derives the key for a paid session and delivers it.
// to, when set, replaces the buyer email as recipient only.
func (s *Service) ResendSession(ctx context.Context, providerName, sessionID, to string) error {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return err
	}

	rec, err := provider.GetPaymentRecord(ctx, sessionID)
	if err != nil {
		return err
	}

	issued, err := s.issuer.MintFromPayment(ctx, *rec)
	if err != nil {
		return err
	}

	recipient := strings.TrimSpace(to)
	if recipient == "" {
		recipient = issued.Email
	}

	s.log.InfoContext(ctx, "resending license",
		logger.Provider(provider.Name()),
		logger.SessionID(sessionID),
		slog.Bool("recipient_override", recipient != issued.Email),
		logger.Component("fulfillment"),
	)
	return s.send(ctx, recipient, issued.Token)
}
