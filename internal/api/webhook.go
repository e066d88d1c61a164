package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/logger"
)

type webhookResponse struct {
	Received bool `json:"received"`
}

func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "provider")

	provider, err := s.providers.Get(name)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "Unknown provider")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeText(w, r, http.StatusBadRequest, "Webhook Error: unreadable body")
		return
	}

	f, err := s.svc.HandleWebhook(ctx, provider.Name(), payload, r.Header.Get(provider.SignatureHeader()))
	switch {
	case err == nil:
		if f != nil {
			s.log.InfoContext(ctx, "webhook fulfilled",
				logger.Provider(f.Provider),
				logger.SessionID(f.SessionID),
			)
		}
	case errors.Is(err, billing.ErrInvalidSignature), errors.Is(err, billing.ErrMalformedPayload):
		s.log.WarnContext(ctx, "webhook rejected", logger.Provider(provider.Name()), logger.Error(err))
		writeText(w, r, http.StatusBadRequest, "Webhook Error: "+webhookErrorText(err))
		return
	case errors.Is(err, billing.ErrWebhookNotConfigured),
		errors.Is(err, billing.ErrProviderNotConfigured),
		errors.Is(err, license.ErrMissingSigningSecret):
		s.log.ErrorContext(ctx, "webhook cannot be processed", logger.Provider(provider.Name()), logger.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server not configured")
		return
	case errors.Is(err, billing.ErrLookupFailed):
		// Non-2xx makes the provider retry delivery.
		s.log.ErrorContext(ctx, "webhook session lookup failed", logger.Provider(provider.Name()), logger.Error(err))
		writeError(w, r, http.StatusBadGateway, "Payment provider unavailable")
		return
	case issuance.IsRejection(err), errors.Is(err, billing.ErrSessionNotFound):
		s.log.InfoContext(ctx, "webhook acknowledged without license", logger.Provider(provider.Name()), logger.Error(err))
	default:
		s.log.ErrorContext(ctx, "webhook failed", logger.Provider(provider.Name()), logger.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, r, http.StatusOK, webhookResponse{Received: true})
}

func webhookErrorText(err error) string {
	if errors.Is(err, billing.ErrInvalidSignature) {
		return billing.ErrInvalidSignature.Error()
	}
	return billing.ErrMalformedPayload.Error()
}
