package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/email"
	"github.com/linksphinx/licensekit/pkg/fulfillment"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/logger"
)

type resendRequest struct {
	License   string `json:"license"`
	SessionID string `json:"session_id"`
	Provider  string `json:"provider"`
	To        string `json:"to"`
}

type resendResponse struct {
	OK   bool `json:"ok"`
	Sent bool `json:"sent"`
}

func (s *server) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resendRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	key := strings.TrimSpace(req.License)
	sessionID := strings.TrimSpace(req.SessionID)
	to := strings.TrimSpace(req.To)

	if to != "" && !email.ValidAddress(to) {
		writeError(w, r, http.StatusBadRequest, "Invalid recipient")
		return
	}

	var err error
	switch {
	case key != "":
		err = s.svc.ResendLicense(ctx, key, to)
	case sessionID != "":
		err = s.svc.ResendSession(ctx, req.Provider, sessionID, to)
	default:
		writeError(w, r, http.StatusBadRequest, "Provide license or session_id")
		return
	}

	if err != nil {
		status, msg := resendError(err)
		if status >= http.StatusInternalServerError {
			s.log.ErrorContext(ctx, "license resend failed", logger.SessionID(sessionID), logger.Error(err))
		} else {
			s.log.InfoContext(ctx, "license resend rejected", logger.SessionID(sessionID), logger.Error(err))
		}
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, resendResponse{OK: true, Sent: true})
}

func resendError(err error) (int, string) {
	switch {
	case errors.Is(err, fulfillment.ErrInvalidLicense):
		return http.StatusBadRequest, "Invalid license"
	case errors.Is(err, issuance.ErrPaymentNotConfirmed):
		return http.StatusBadRequest, "Unpaid session"
	case errors.Is(err, issuance.ErrMissingEmail):
		return http.StatusBadRequest, "Missing email"
	case errors.Is(err, issuance.ErrPaymentLinkMismatch):
		return http.StatusForbidden, issuance.ErrPaymentLinkMismatch.Error()
	case errors.Is(err, issuance.ErrPriceMismatch):
		return http.StatusForbidden, issuance.ErrPriceMismatch.Error()
	case errors.Is(err, billing.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, billing.ErrUnknownProvider):
		return http.StatusBadRequest, "Unknown provider"
	case errors.Is(err, billing.ErrLookupFailed):
		return http.StatusBadGateway, "Payment provider unavailable"
	case errors.Is(err, fulfillment.ErrDeliveryFailed):
		return http.StatusBadGateway, "Email delivery failed"
	case errors.Is(err, license.ErrMissingSigningSecret), errors.Is(err, billing.ErrProviderNotConfigured):
		return http.StatusInternalServerError, "Server not configured"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
