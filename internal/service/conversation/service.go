package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
)

// Service implements the conversation and read-state operations for a
// match's two participants.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
}

// NewService creates a new conversation service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
	}
}

// Conversation is the message history between a match's participants plus
// the caller's read watermark.
type Conversation struct {
	Messages          []db.Message `json:"messages"`
	LastReadByOtherID *uint64      `json:"lastReadByOtherId"`
}

// Get returns the full conversation for a match the caller participates
// in, chronologically ordered, and the id of the caller's newest message
// the other side has read (nil when none).
func (s *Service) Get(ctx context.Context, userID, matchID uint64) (Conversation, error) {
	if matchID == 0 {
		return Conversation{}, svcErr.InvalidArgument("matchId must be a positive integer")
	}

	m, err := s.matchRepo.FindForUser(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Conversation{}, svcErr.Forbidden("not a participant of this match")
		}
		return Conversation{}, svcErr.Map(err)
	}

	otherID := otherParticipant(m, userID)

	messages, err := s.messageRepo.ListBetween(ctx, m.User1ID, m.User2ID)
	if err != nil {
		s.appCtx.Logger.Error("ListBetween failed", "match", matchID, "err", err)
		return Conversation{}, svcErr.Map(err)
	}
	if messages == nil {
		messages = []db.Message{}
	}

	watermark, err := s.messageRepo.LastReadID(ctx, userID, otherID)
	if err != nil {
		s.appCtx.Logger.Error("LastReadID failed", "match", matchID, "err", err)
		return Conversation{}, svcErr.Map(err)
	}

	return Conversation{Messages: messages, LastReadByOtherID: watermark}, nil
}

// Send validates and persists a message from senderID inside the match.
// The receiver is the other participant, derived from the match row. The
// persisted row (generated id and timestamp included) comes back so the
// caller can reconcile an optimistic local echo.
func (s *Service) Send(ctx context.Context, senderID, matchID uint64, content string) (db.Message, error) {
	if matchID == 0 {
		return db.Message{}, svcErr.InvalidArgument("matchId must be a positive integer")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return db.Message{}, svcErr.InvalidArgument("message content cannot be empty")
	}

	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Message{}, svcErr.NotFound("match not found")
		}
		return db.Message{}, svcErr.Map(err)
	}

	if senderID != m.User1ID && senderID != m.User2ID {
		return db.Message{}, svcErr.Forbidden("not a participant of this match")
	}

	message := db.Message{
		SenderID:   senderID,
		ReceiverID: otherParticipant(m, senderID),
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, &message); err != nil {
		s.appCtx.Logger.Error("message create failed", "match", matchID, "err", err)
		return db.Message{}, svcErr.Map(err)
	}

	// The receiver's cached unread count is stale now; drop it.
	_ = s.appCtx.RedisCache.InvalidateUnreadCount(ctx, message.ReceiverID)

	return message, nil
}

// MarkRead flips every unread message from the other participant to the
// caller to read, returning the number updated. Idempotent: an immediate
// second call updates zero rows.
func (s *Service) MarkRead(ctx context.Context, userID, matchID uint64) (int64, error) {
	if matchID == 0 {
		return 0, svcErr.InvalidArgument("matchId must be a positive integer")
	}

	m, err := s.matchRepo.FindForUser(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, svcErr.Forbidden("not a participant of this match")
		}
		return 0, svcErr.Map(err)
	}

	updated, err := s.messageRepo.MarkRead(ctx, userID, otherParticipant(m, userID), time.Now().UTC())
	if err != nil {
		s.appCtx.Logger.Error("MarkRead failed", "match", matchID, "err", err)
		return 0, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.InvalidateUnreadCount(ctx, userID)

	s.appCtx.Logger.Debug("conversation marked read", "user", userID, "match", matchID, "updated", updated)
	return updated, nil
}

// UnreadCount returns the caller's total unread messages across all
// conversations.
// Cache-first strategy:
//  1. Attempts the Redis counter (messages:unread:userID).
//  2. On a miss, falls back to the DB count and refills the cache with a
//     1h TTL. Correctness never depends on the cache.
func (s *Service) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	if cached, found, _ := s.appCtx.RedisCache.GetUnreadCount(ctx, userID); found {
		return cached, nil
	}

	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	_ = s.appCtx.RedisCache.SetUnreadCount(ctx, userID, count)

	return count, nil
}

// otherParticipant resolves the opposite side of a match for a known
// participant.
func otherParticipant(m db.Match, userID uint64) uint64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}
