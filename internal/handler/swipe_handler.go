package handler

import (
	"net/http"
	"strconv"

	"github.com/emberdate/ember-server/internal/auth"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/service/match"
	"github.com/emberdate/ember-server/internal/service/swipe"
)

// SwipeHandler exposes the swipe recorder, the discovery feed, and the
// match-notification endpoints.
type SwipeHandler struct {
	swipes  *swipe.Service
	matches *match.Service
}

func NewSwipeHandler(swipes *swipe.Service, matches *match.Service) *SwipeHandler {
	return &SwipeHandler{swipes: swipes, matches: matches}
}

func (h *SwipeHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	var req struct {
		SwipedUserID uint64 `json:"swipedUserId"`
		IsLike       *bool  `json:"isLike"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}
	if req.IsLike == nil {
		writeError(w, svcErr.InvalidArgument("isLike must be a boolean"))
		return
	}

	result, err := h.swipes.RecordSwipe(r.Context(), identity.UserID, req.SwipedUserID, *req.IsLike)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SwipeHandler) PotentialMatches(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	var token *string
	if t := r.URL.Query().Get("pagination_token"); t != "" {
		token = &t
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	candidates, nextToken, err := h.swipes.PotentialMatches(r.Context(), identity.UserID, token, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	users := make([]userResponse, 0, len(candidates))
	for _, c := range candidates {
		users = append(users, toUserResponse(c))
	}

	resp := struct {
		Users               []userResponse `json:"users"`
		NextPaginationToken *string        `json:"nextPaginationToken,omitempty"`
	}{users, nextToken}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SwipeHandler) PendingMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	summary, err := h.matches.PendingNotification(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Null body when every match has been acknowledged; clients poll again
	// after marking the current one seen.
	writeJSON(w, http.StatusOK, struct {
		Match any `json:"match"`
	}{summary})
}

func (h *SwipeHandler) MarkMatchSeen(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	var req struct {
		MatchID uint64 `json:"matchId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := h.matches.MarkSeen(r.Context(), identity.UserID, req.MatchID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"match marked as seen"})
}
