package swipe

import (
	"context"

	"gorm.io/gorm"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
	"github.com/emberdate/ember-server/internal/utils/pagination"
)

// Service implements the swipe recorder and the discovery feed.
// It contains the business logic on top of the repository layer.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService creates a new swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Result is the outcome of recording a swipe. MatchID is set only when the
// swipe completed a mutual like.
type Result struct {
	IsMatch bool    `json:"isMatch"`
	MatchID *uint64 `json:"matchId,omitempty"`
}

// RecordSwipe upserts the swiper's decision and, on a like, checks for a
// reciprocal like and creates the match.
//
// The whole sequence runs in a single transaction so concurrent swipes by
// both parties cannot leave a half-applied state:
//  1. Verify the swiped user exists.
//  2. Upsert the decision (last decision wins).
//  3. On a like, look for the reciprocal like.
//  4. If mutual, insert the canonical (min,max) match with "do nothing"
//     conflict policy and re-resolve its id. The unique index on the pair
//     is the authoritative guard; the reciprocal check is an optimization.
func (s *Service) RecordSwipe(ctx context.Context, swiperID, swipedID uint64, isLike bool) (Result, error) {
	s.appCtx.Logger.Debug("RecordSwipe called", "swiper", swiperID, "swiped", swipedID, "like", isLike)

	if swiperID == 0 || swipedID == 0 {
		return Result{}, svcErr.InvalidArgument("swipedUserId must be a positive integer")
	}
	if swiperID == swipedID {
		return Result{}, svcErr.InvalidArgument("cannot swipe on yourself")
	}

	var result Result
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		swipes := repository.NewSwipeRepository(tx)
		matches := repository.NewMatchRepository(tx)

		exists, err := users.Exists(ctx, swipedID)
		if err != nil {
			return err
		}
		if !exists {
			return svcErr.NotFound("user not found")
		}

		if err := swipes.Upsert(ctx, swiperID, swipedID, isLike); err != nil {
			return err
		}

		if !isLike {
			return nil
		}

		reciprocal, err := swipes.HasLiked(ctx, swipedID, swiperID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		lo, hi := canonicalPair(swiperID, swipedID)
		if err := matches.CreateCanonical(ctx, lo, hi); err != nil {
			return err
		}

		// The insert may have been a no-op; the id must come from a lookup
		// either way.
		match, err := matches.FindByPair(ctx, lo, hi)
		if err != nil {
			return err
		}

		result = Result{IsMatch: true, MatchID: &match.ID}
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("RecordSwipe failed", "swiper", swiperID, "swiped", swipedID, "err", err)
		return Result{}, svcErr.Map(err)
	}

	if result.IsMatch {
		s.appCtx.Logger.Info("mutual like", "swiper", swiperID, "swiped", swipedID, "match_id", *result.MatchID)
	}

	return result, nil
}

// PotentialMatches returns discovery candidates for the user: profiles of
// the opposite gender the user has not swiped on yet, cursor-paginated.
func (s *Service) PotentialMatches(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.User, *string, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if paginationToken != nil {
		if _, err := pagination.Decode(*paginationToken); err != nil {
			return nil, nil, svcErr.InvalidArgument("invalid pagination token")
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}

	candidates, nextToken, err := s.userRepo.ListUnswiped(ctx, userID, user.Gender, paginationToken, limit)
	if err != nil {
		s.appCtx.Logger.Error("ListUnswiped failed", "user", userID, "err", err)
		return nil, nil, svcErr.Map(err)
	}

	return candidates, nextToken, nil
}

// canonicalPair orders two user ids ascending so the unordered pair has
// exactly one representation in the matches table.
func canonicalPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
