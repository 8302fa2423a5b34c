package handler

import (
	"net/http"
	"time"

	"github.com/emberdate/ember-server/internal/auth"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/service/conversation"
)

// MessageHandler exposes conversation history, sending, and read receipts.
type MessageHandler struct {
	service *conversation.Service
}

func NewMessageHandler(service *conversation.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

type messageResponse struct {
	ID         uint64     `json:"id"`
	SenderID   uint64     `json:"senderId"`
	ReceiverID uint64     `json:"receiverId"`
	Content    string     `json:"content"`
	SentAt     time.Time  `json:"sentAt"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
}

func toMessageResponse(m db.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		SentAt:     m.SentAt,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	conv, err := h.service.Get(r.Context(), identity.UserID, matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	messages := make([]messageResponse, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		messages = append(messages, toMessageResponse(m))
	}

	writeJSON(w, http.StatusOK, struct {
		Messages          []messageResponse `json:"messages"`
		LastReadByOtherID *uint64           `json:"lastReadByOtherId"`
	}{messages, conv.LastReadByOtherID})
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	message, err := h.service.Send(r.Context(), identity.UserID, matchID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Message messageResponse `json:"message"`
	}{toMessageResponse(message)})
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.service.MarkRead(r.Context(), identity.UserID, matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Updated int64 `json:"updated"`
	}{updated})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, svcErr.Unauthorized("authentication required"))
		return
	}

	count, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Count int64 `json:"count"`
	}{count})
}
