package repository

import (
	"context"

	"github.com/emberdate/ember-server/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates the like/pass decisions between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB
// connection (or transaction handle).
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or overwrites the decision swiper -> swiped.
//
// Behavior:
//   - If the (swiper_id, swiped_id) pair exists, the row is updated with
//     the new "liked" value and fresh timestamps ("last decision wins"; a
//     re-swipe is a new decision, not an edit of the old one).
//   - Otherwise a new row is inserted.
//   - The composite PK guarantees a single row per ordered pair.
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, true) // user 1 liked user 2
func (r *SwipeRepository) Upsert(ctx context.Context, swiperID, swipedID uint64, liked bool) error {
	swipe := db.Swipe{
		SwiperID: swiperID,
		SwipedID: swipedID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swiped_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "created_at", "updated_at"}),
		}).
		Create(&swipe).Error
}

// HasLiked checks whether swiper has an active like on swiped.
// Used for the reciprocal-like lookup during match detection.
func (r *SwipeRepository) HasLiked(ctx context.Context, swiperID, swipedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("swiper_id = ? AND swiped_id = ? AND liked = ?", swiperID, swipedID, true).
		Count(&count).Error
	return count > 0, err
}

// Get returns the decision for an ordered pair, or gorm.ErrRecordNotFound.
func (r *SwipeRepository) Get(ctx context.Context, swiperID, swipedID uint64) (db.Swipe, error) {
	var swipe db.Swipe
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND swiped_id = ?", swiperID, swipedID).
		Take(&swipe).Error
	return swipe, err
}
