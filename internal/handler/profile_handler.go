package handler

import (
	"net/http"

	"github.com/emberdate/ember-server/internal/auth"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/service/profile"
)

// ProfileHandler exposes public profile reads and owner-only updates.
type ProfileHandler struct {
	service *profile.Service
}

func NewProfileHandler(service *profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{toUserResponse(user)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	targetID, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name       *string `json:"name"`
		Age        *int    `json:"age"`
		Bio        *string `json:"bio"`
		PictureURL *string `json:"profilePictureUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	user, err := h.service.Update(r.Context(), identity.UserID, targetID, profile.UpdateInput{
		Name:       req.Name,
		Age:        req.Age,
		Bio:        req.Bio,
		PictureURL: req.PictureURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{toUserResponse(user)})
}
