package repository

import (
	"context"
	"time"

	"github.com/emberdate/ember-server/internal/db"
	"github.com/emberdate/ember-server/internal/utils/pagination"

	"gorm.io/gorm"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB
// connection (or transaction handle).
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Take(&user, id).Error
	return user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	return user, err
}

// Exists reports whether a user row with the given id is present. The
// swipe transaction uses this so a swipe on a nonexistent user surfaces as
// NotFound instead of a half-applied write.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateProfile applies a partial update: only non-nil fields change,
// everything else keeps its current value.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint64, name *string, age *int, bio, pictureURL *string) (db.User, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if age != nil {
		updates["age"] = *age
	}
	if bio != nil {
		updates["bio"] = *bio
	}
	if pictureURL != nil {
		updates["profile_picture_url"] = *pictureURL
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return db.User{}, res.Error
		}
		if res.RowsAffected == 0 {
			return db.User{}, gorm.ErrRecordNotFound
		}
	}

	return r.FindByID(ctx, id)
}

// ListUnswiped returns discovery candidates for a user: everyone of the
// opposite gender the user has not swiped on yet, excluding the user.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC (newest profiles first).
//   - Supports cursor-based pagination via paginationToken; the limit+1
//     fetch decides whether a next page exists.
//
// Example:
//
//	repo.ListUnswiped(ctx, 42, "female", nil, 20)
func (r *UserRepository) ListUnswiped(
	ctx context.Context,
	userID uint64,
	gender string,
	paginationToken *string,
	limit int,
) ([]db.User, *string, error) {
	var users []db.User

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("users u").
		Where("u.id <> ?", userID).
		Where("u.gender <> ?", gender).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.swiper_id = ?
				  AND s.swiped_id = u.id
			)`, userID).
		Order("u.created_at DESC, u.id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.UserID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(u.created_at < ? OR (u.created_at = ? AND u.id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(users) > limit {
		last := users[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		users = users[:limit]
	}

	return users, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
