package handler

import (
	"net/http"
	"time"

	"github.com/emberdate/ember-server/internal/auth"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/service/account"
)

// AuthHandler exposes registration, login, current-user, and logout.
type AuthHandler struct {
	service *account.Service
}

func NewAuthHandler(service *account.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// userResponse is the public shape of an account; the password hash never
// leaves the server.
type userResponse struct {
	ID                uint64    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	Gender            string    `json:"gender"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toUserResponse(u db.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Age:               u.Age,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
		Gender:            u.Gender,
		CreatedAt:         u.CreatedAt,
	}
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Age      int    `json:"age"`
		Bio      string `json:"bio"`
		Gender   string `json:"gender"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	session, err := h.service.Register(r.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
		Bio:      req.Bio,
		Gender:   req.Gender,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{toUserResponse(user)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	if err := h.service.Logout(r.Context(), identity.Token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{"logged out"})
}
