package api

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/linksphinx/licensekit/pkg/issuance"
)

type verifyRequest struct {
	License any `json:"license"`
	Email   any `json:"email"`
}

func (s *server) handleVerify(w http.ResponseWriter, r *http.Request) {
	invalid := issuance.Outcome{Message: issuance.MessageInvalid}

	var req verifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeJSON(w, r, http.StatusOK, invalid)
		return
	}
	key, ok := req.License.(string)
	if !ok {
		writeJSON(w, r, http.StatusOK, invalid)
		return
	}
	hint, _ := req.Email.(string)

	outcome, err := s.issuer.VerifyFromClient(r.Context(), key, hint)
	if err != nil {
		writeJSON(w, r, http.StatusInternalServerError, issuance.Outcome{Message: "Server not configured."})
		return
	}
	writeJSON(w, r, http.StatusOK, outcome)
}
