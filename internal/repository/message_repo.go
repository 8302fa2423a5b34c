package repository

import (
	"context"
	"time"

	"github.com/emberdate/ember-server/internal/db"

	"gorm.io/gorm"
)

// MessageRepository provides data access methods for the Message model.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB
// connection (or transaction handle).
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// ListBetween returns every message exchanged between the two users in
// stable chronological order (sent_at ascending, ties broken by id).
func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB uint64) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// Create persists a new message and fills in its generated id and sent_at.
func (r *MessageRepository) Create(ctx context.Context, message *db.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// LastReadID returns the highest message id sent by senderID to receiverID
// that the receiver has read, or nil when none qualify. This is the read
// watermark used to render delivery ticks: any of the sender's messages
// with id <= watermark are seen by the other side.
func (r *MessageRepository) LastReadID(ctx context.Context, senderID, receiverID uint64) (*uint64, error) {
	var result struct {
		LastReadID *uint64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Select("MAX(id) AS last_read_id").
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, true).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return result.LastReadID, nil
}

// MarkRead flips read=true and stamps read_at on every unread message from
// senderID to receiverID. Returns the number of rows updated; calling it
// again immediately updates zero rows. This is the only mutator of the
// read/read_at fields.
func (r *MessageRepository) MarkRead(ctx context.Context, receiverID, senderID uint64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// CountUnread returns how many unread messages the user has across all
// conversations. Backs the cached unread counter; the DB is ground truth.
func (r *MessageRepository) CountUnread(ctx context.Context, receiverID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

// DeleteBetween removes every message exchanged between the two users.
// Only the unmatch purge policy calls this, inside the unmatch transaction.
func (r *MessageRepository) DeleteBetween(ctx context.Context, userA, userB uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Delete(&db.Message{})
	return res.RowsAffected, res.Error
}
