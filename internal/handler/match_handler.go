package handler

import (
	"net/http"

	"github.com/emberdate/ember-server/internal/auth"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
	"github.com/emberdate/ember-server/internal/service/match"
)

// MatchHandler exposes the match list and unmatching.
type MatchHandler struct {
	service *match.Service
}

func NewMatchHandler(service *match.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	matches, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Matches []repository.MatchSummary `json:"matches"`
	}{matches})
}

func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	matchID, err := uintParam(r, "matchId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Unmatch(r.Context(), identity.UserID, matchID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"unmatch successful"})
}
