package match

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/config"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
)

// Service implements the match registry: the match list, the "new match"
// notification queue, and unmatching.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
}

// NewService creates a new match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// List returns every match containing userID with the other participant's
// profile fields and a last-message summary, ordered by conversation
// recency (matches without messages last, newest match first).
func (s *Service) List(ctx context.Context, userID uint64) ([]repository.MatchSummary, error) {
	summaries, err := s.matchRepo.ListWithLastMessage(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("ListWithLastMessage failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	if summaries == nil {
		summaries = []repository.MatchSummary{}
	}
	return summaries, nil
}

// PendingNotification returns the oldest match the user has not
// acknowledged yet, or nil when every match has been seen. Callers re-poll
// after marking the current one seen to discover the next.
func (s *Service) PendingNotification(ctx context.Context, userID uint64) (*repository.MatchSummary, error) {
	summary, found, err := s.matchRepo.OldestUnseen(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("OldestUnseen failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	if !found {
		return nil, nil
	}
	return &summary, nil
}

// MarkSeen stamps the caller's viewed_at on the match, first
// acknowledgement wins. Re-marking, a missing match, and a non-participant
// caller are all treated as no-ops so client retries stay idempotent.
func (s *Service) MarkSeen(ctx context.Context, userID, matchID uint64) error {
	if matchID == 0 {
		return svcErr.InvalidArgument("matchId is required")
	}

	updated, err := s.matchRepo.MarkSeen(ctx, matchID, userID, time.Now().UTC())
	if err != nil {
		s.appCtx.Logger.Error("MarkSeen failed", "user", userID, "match", matchID, "err", err)
		return svcErr.Map(err)
	}
	if updated == 0 {
		s.appCtx.Logger.Debug("MarkSeen no-op", "user", userID, "match", matchID)
	}
	return nil
}

// Unmatch deletes the match if userID is a participant. A missing match and
// a non-participant caller both come back NotFound, indistinguishable so
// match existence is not leaked.
//
// What happens to the pair's messages follows the configured policy:
// "retain" leaves them in storage (the participant check makes them
// unreachable through the conversation endpoint), "purge" deletes them in
// the same transaction.
func (s *Service) Unmatch(ctx context.Context, userID, matchID uint64) error {
	if matchID == 0 {
		return svcErr.InvalidArgument("matchId is required")
	}

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matches := repository.NewMatchRepository(tx)

		m, err := matches.FindForUser(ctx, matchID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcErr.NotFound("match not found")
			}
			return err
		}

		deleted, err := matches.Delete(ctx, m.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return svcErr.NotFound("match not found")
		}

		if s.appCtx.Config.Matching.UnmatchMessagePolicy == config.UnmatchPurgeMessages {
			messages := repository.NewMessageRepository(tx)
			purged, err := messages.DeleteBetween(ctx, m.User1ID, m.User2ID)
			if err != nil {
				return err
			}
			s.appCtx.Logger.Info("purged conversation on unmatch", "match", matchID, "messages", purged)
		}

		return nil
	})
	if err != nil {
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Info("unmatched", "user", userID, "match", matchID)
	return nil
}
