package db

import (
	"time"
)

// User table
type User struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	Email             string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash      string    `gorm:"size:255;not null"`
	Name              string    `gorm:"size:64;not null"`
	Age               int       `gorm:"not null"`
	Bio               string    `gorm:"size:1024"`
	ProfilePictureURL string    `gorm:"size:512"`
	Gender            string    `gorm:"size:16;not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// Swipe is a directed like/pass decision by swiper about swiped.
//
// Composite PK: (SwiperID, SwipedID)
//   - One row per ordered pair; re-swiping overwrites the decision and
//     refreshes updated_at (last decision wins), it does not accumulate
//     history.
//
// Indexes:
//   - idx_swiped_swiper_liked(swiped_id, swiper_id, liked)
//     O(1) reciprocal-like lookup during match detection.
type Swipe struct {
	SwiperID  uint64    `gorm:"primaryKey;index:idx_swiped_swiper_liked,priority:2"`
	SwipedID  uint64    `gorm:"primaryKey;index:idx_swiped_swiper_liked,priority:1"`
	Liked     bool      `gorm:"not null;index:idx_swiped_swiper_liked,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Match is an unordered pair of users who mutually liked each other.
//
// Canonical ordering: user1_id < user2_id, enforced by the writer and by a
// check constraint. The unique index on the pair is the authoritative guard
// against two concurrent reciprocal swipes creating duplicate rows.
//
// User1ViewedAt/User2ViewedAt independently track whether each side has
// acknowledged the "it's a match" notification. Both start NULL and are
// stamped once.
type Match struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	User1ID       uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1;check:chk_match_pair_order,user1_id < user2_id"`
	User2ID       uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2"`
	MatchedAt     time.Time `gorm:"autoCreateTime;index"`
	User1ViewedAt *time.Time
	User2ViewedAt *time.Time
}

// Message belongs to the conversation implied by its (sender, receiver)
// pair; the match is inferred by resolving that pair against a match's
// participants, there is no match foreign key.
//
// Read/ReadAt are flipped exactly once by the read-state tracker and never
// reset.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64    `gorm:"not null;index:idx_msg_pair_sent,priority:1"`
	ReceiverID uint64    `gorm:"not null;index:idx_msg_pair_sent,priority:2;index:idx_msg_unread,priority:1"`
	Content    string    `gorm:"size:4096;not null"`
	SentAt     time.Time `gorm:"autoCreateTime;index:idx_msg_pair_sent,priority:3"`
	Read       bool      `gorm:"not null;default:false;index:idx_msg_unread,priority:2"`
	ReadAt     *time.Time
}
