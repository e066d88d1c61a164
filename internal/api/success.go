package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/logger"
	"github.com/linksphinx/licensekit/pkg/qrcode"
)

func (s *server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	sessionID := strings.TrimSpace(q.Get("session_id"))
	if sessionID == "" {
		writeText(w, r, http.StatusBadRequest, "Missing session_id")
		return
	}

	f, err := s.svc.FulfillSession(ctx, q.Get("provider"), sessionID)
	if err != nil {
		status, msg := successError(err)
		if status >= http.StatusInternalServerError {
			s.log.ErrorContext(ctx, "success page failed", logger.SessionID(sessionID), logger.Error(err))
		}
		writeText(w, r, status, msg)
		return
	}

	qr, err := qrcode.DataURI(f.Issued.Token, 0)
	if err != nil {
		s.log.WarnContext(ctx, "qr code not rendered", logger.Error(err))
	}

	page := successPage{
		ProductName: s.cfg.ProductName,
		Key:         f.Issued.Token,
		QRCode:      qr,
		Sending:     f.Delivery != nil,
	}
	if err := writeHTML(w, r, http.StatusOK, successView(page)); err != nil {
		s.log.ErrorContext(ctx, "success page render failed", logger.Error(err))
		writeText(w, r, http.StatusInternalServerError, "Server error")
	}
}

func successError(err error) (int, string) {
	switch {
	case errors.Is(err, issuance.ErrPaymentNotConfirmed):
		return http.StatusBadRequest, "Payment not verified."
	case errors.Is(err, issuance.ErrMissingEmail):
		return http.StatusBadRequest, "Missing email."
	case errors.Is(err, issuance.ErrPaymentLinkMismatch):
		return http.StatusForbidden, issuance.Humanize(license.ReasonPaymentLink)
	case errors.Is(err, issuance.ErrPriceMismatch):
		return http.StatusForbidden, issuance.Humanize(license.ReasonPrice)
	case errors.Is(err, billing.ErrSessionNotFound):
		return http.StatusNotFound, "Checkout session not found."
	case errors.Is(err, billing.ErrUnknownProvider):
		return http.StatusBadRequest, "Unknown provider."
	case errors.Is(err, billing.ErrLookupFailed):
		return http.StatusBadGateway, "Payment provider unavailable."
	case errors.Is(err, license.ErrMissingSigningSecret), errors.Is(err, billing.ErrProviderNotConfigured):
		return http.StatusInternalServerError, "Server not configured."
	default:
		return http.StatusInternalServerError, "Server error."
	}
}
