package repository

import (
	"context"
	"time"

	"github.com/emberdate/ember-server/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB
// connection (or transaction handle).
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// MatchSummary is one row of a user's match list: the match itself, the
// other participant's public profile fields, and the most recent message
// between the pair (if any).
type MatchSummary struct {
	MatchID            uint64     `json:"matchId"`
	OtherUserID        uint64     `json:"otherUserId"`
	Name               string     `json:"name"`
	ProfilePictureURL  string     `json:"pictureUrl"`
	LastMessageContent *string    `json:"lastMessageContent,omitempty"`
	LastMessageSentAt  *time.Time `json:"lastMessageSentAt,omitempty"`
	LastMessageUnread  bool       `json:"isLastMessageUnreadByMe"`
	MatchedAt          time.Time  `json:"matchedAt"`
}

// CreateCanonical inserts the match row for a canonical (lo < hi) pair with
// "do nothing" conflict policy, so racing reciprocal swipes cannot create
// duplicates. Callers must re-resolve the row afterwards to learn its id:
// the insert is a silent no-op when the match already exists.
func (r *MatchRepository) CreateCanonical(ctx context.Context, lo, hi uint64) error {
	match := db.Match{User1ID: lo, User2ID: hi}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(&match).Error
}

// FindByPair returns the match for a canonical pair, or
// gorm.ErrRecordNotFound.
func (r *MatchRepository) FindByPair(ctx context.Context, lo, hi uint64) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", lo, hi).
		Take(&match).Error
	return match, err
}

// FindByID returns a match by primary key, or gorm.ErrRecordNotFound.
func (r *MatchRepository) FindByID(ctx context.Context, matchID uint64) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).Take(&match, matchID).Error
	return match, err
}

// FindForUser returns the match only if userID is one of its participants;
// a missing row and a non-participant caller are both
// gorm.ErrRecordNotFound, deliberately indistinguishable.
func (r *MatchRepository) FindForUser(ctx context.Context, matchID, userID uint64) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("id = ? AND (user1_id = ? OR user2_id = ?)", matchID, userID, userID).
		Take(&match).Error
	return match, err
}

// ListWithLastMessage returns every match containing userID, joined with
// the other participant's profile and the single most recent message
// between the pair.
//
// Ordering: last message timestamp descending; matches with no messages
// sort after all matches with messages, newest match first among
// themselves.
func (r *MatchRepository) ListWithLastMessage(ctx context.Context, userID uint64) ([]MatchSummary, error) {
	var rows []MatchSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS match_id,
			CASE WHEN m.user1_id = @uid THEN m.user2_id ELSE m.user1_id END AS other_user_id,
			u.name AS name,
			u.profile_picture_url AS profile_picture_url,
			lm.content AS last_message_content,
			lm.sent_at AS last_message_sent_at,
			CASE WHEN lm.id IS NOT NULL AND lm.sender_id <> @uid AND NOT lm.read
				THEN 1 ELSE 0 END AS last_message_unread,
			m.matched_at AS matched_at
		FROM matches m
		JOIN users u ON u.id = CASE WHEN m.user1_id = @uid THEN m.user2_id ELSE m.user1_id END
		LEFT JOIN messages lm ON lm.id = (
			SELECT msg.id FROM messages msg
			WHERE (msg.sender_id = m.user1_id AND msg.receiver_id = m.user2_id)
			   OR (msg.sender_id = m.user2_id AND msg.receiver_id = m.user1_id)
			ORDER BY msg.sent_at DESC, msg.id DESC
			LIMIT 1
		)
		WHERE m.user1_id = @uid OR m.user2_id = @uid
		ORDER BY (lm.sent_at IS NULL), lm.sent_at DESC, m.matched_at DESC, m.id DESC
	`, map[string]interface{}{"uid": userID}).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OldestUnseen returns the single oldest match (by matched_at ascending)
// that userID has not acknowledged yet, with the other participant's
// profile fields. Found reports whether such a match exists.
func (r *MatchRepository) OldestUnseen(ctx context.Context, userID uint64) (MatchSummary, bool, error) {
	var rows []MatchSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS match_id,
			CASE WHEN m.user1_id = @uid THEN m.user2_id ELSE m.user1_id END AS other_user_id,
			u.name AS name,
			u.profile_picture_url AS profile_picture_url,
			m.matched_at AS matched_at
		FROM matches m
		JOIN users u ON u.id = CASE WHEN m.user1_id = @uid THEN m.user2_id ELSE m.user1_id END
		WHERE (m.user1_id = @uid AND m.user1_viewed_at IS NULL)
		   OR (m.user2_id = @uid AND m.user2_viewed_at IS NULL)
		ORDER BY m.matched_at ASC, m.id ASC
		LIMIT 1
	`, map[string]interface{}{"uid": userID}).Scan(&rows).Error
	if err != nil {
		return MatchSummary{}, false, err
	}
	if len(rows) == 0 {
		return MatchSummary{}, false, nil
	}
	return rows[0], true, nil
}

// MarkSeen stamps the viewed_at column for whichever side userID occupies,
// only if it is still NULL (first acknowledgement wins). Returns the number
// of rows updated: 0 means already seen, match missing, or caller not a
// participant, all of which are no-ops for client retry idempotency.
func (r *MatchRepository) MarkSeen(ctx context.Context, matchID, userID uint64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE matches SET
			user1_viewed_at = CASE WHEN user1_id = @uid AND user1_viewed_at IS NULL
				THEN @now ELSE user1_viewed_at END,
			user2_viewed_at = CASE WHEN user2_id = @uid AND user2_viewed_at IS NULL
				THEN @now ELSE user2_viewed_at END
		WHERE id = @mid
		  AND ((user1_id = @uid AND user1_viewed_at IS NULL)
		    OR (user2_id = @uid AND user2_viewed_at IS NULL))
	`, map[string]interface{}{"uid": userID, "mid": matchID, "now": now})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete removes the match row. Participant checks happen before this via
// FindForUser inside the same transaction.
func (r *MatchRepository) Delete(ctx context.Context, matchID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&db.Match{}, matchID)
	return res.RowsAffected, res.Error
}
