package profile

import (
	"context"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
)

// Service exposes public profile reads and owner-only profile updates.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Get returns the profile for any user id.
func (s *Service) Get(ctx context.Context, userID uint64) (db.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return db.User{}, svcErr.Map(err)
	}
	return user, nil
}

// UpdateInput carries the optional profile fields; nil means "leave as is".
type UpdateInput struct {
	Name       *string
	Age        *int
	Bio        *string
	PictureURL *string
}

// Update applies a partial profile update. Only the owner may update their
// profile.
func (s *Service) Update(ctx context.Context, callerID, targetID uint64, input UpdateInput) (db.User, error) {
	if callerID != targetID {
		return db.User{}, svcErr.Forbidden("you can only update your own profile")
	}
	if input.Age != nil && *input.Age < 18 {
		return db.User{}, svcErr.InvalidArgument("age must be at least 18")
	}

	user, err := s.userRepo.UpdateProfile(ctx, targetID, input.Name, input.Age, input.Bio, input.PictureURL)
	if err != nil {
		s.appCtx.Logger.Error("profile update failed", "user", targetID, "err", err)
		return db.User{}, svcErr.Map(err)
	}
	return user, nil
}
