package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users,
// swipes, matches and a little chat history.
//
// Behavior:
//  1. Clears existing data in all four tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords.
//  3. Generates ~200 swipes with ~70% likes; every 3rd pair gets a
//     guaranteed reciprocal like so matches exist.
//  4. Creates the match rows for mutual likes (canonical pair order) and
//     seeds a short conversation in the first few.
//
// Compatible with both PostgreSQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "matches", "swipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "postgres":
		for _, seq := range []string{"users_id_seq", "matches_id_seq", "messages_id_seq"} {
			db.Exec("ALTER SEQUENCE " + seq + " RESTART WITH 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'matches', 'messages')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	names := []string{
		"Liam", "Noah", "Oliver", "Elijah", "James", "Will", "Ben", "Lucas", "Henry", "Theo",
		"Olivia", "Emma", "Ava", "Sophia", "Isabella", "Mia", "Amelia", "Harper", "Evelyn", "Luna",
	}
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Name:         names[i-1],
			Age:          21 + r.Intn(15),
			Bio:          fmt.Sprintf("Hi, I'm %s. Ask me about my dog.", names[i-1]),
			Gender:       gender,
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Swipes (~200), guaranteeing some mutual likes ---
	counter := 0
	for swiperID := uint64(1); swiperID <= 20; swiperID++ {
		for j := 0; j < 12; j++ {
			swipedID := uint64(r.Intn(20) + 1)
			if swiperID == swipedID {
				continue
			}

			var swiper, swiped User
			if err := db.First(&swiper, swiperID).Error; err != nil {
				continue
			}
			if err := db.First(&swiped, swipedID).Error; err != nil {
				continue
			}
			if swiper.Gender == swiped.Gender {
				continue
			}

			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				liked = true
				recip := Swipe{SwiperID: swipedID, SwipedID: swiperID, Liked: true}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swiped_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"liked", "created_at", "updated_at"}),
				}).Create(&recip)
			}

			swipe := Swipe{SwiperID: swiperID, SwipedID: swipedID, Liked: liked}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swiped_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "created_at", "updated_at"}),
			}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			counter++
		}
	}

	// --- Materialize matches for every mutual like ---
	var mutuals []Swipe
	if err := db.Where("liked = ?", true).Find(&mutuals).Error; err != nil {
		return fmt.Errorf("failed to load swipes: %w", err)
	}
	for _, s := range mutuals {
		var back int64
		db.Model(&Swipe{}).
			Where("swiper_id = ? AND swiped_id = ? AND liked = ?", s.SwipedID, s.SwiperID, true).
			Count(&back)
		if back == 0 {
			continue
		}

		lo, hi := s.SwiperID, s.SwipedID
		if lo > hi {
			lo, hi = hi, lo
		}
		match := Match{User1ID: lo, User2ID: hi}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&match).Error; err != nil {
			return fmt.Errorf("failed to seed match: %w", err)
		}
	}

	// --- Short conversations in the first few matches ---
	var matches []Match
	if err := db.Order("id").Limit(5).Find(&matches).Error; err != nil {
		return fmt.Errorf("failed to load matches: %w", err)
	}
	openers := []string{"hey!", "hi there :)", "we matched!", "love your bio", "hello!"}
	for i, m := range matches {
		msg := Message{
			SenderID:   m.User1ID,
			ReceiverID: m.User2ID,
			Content:    openers[i%len(openers)],
		}
		if err := db.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}
	}

	log.Printf("Seeded %d swipes and %d matches.", counter, len(matches))
	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic
// dataset used by tests.
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{"messages", "matches", "swipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	users := []User{
		{ID: 1, Email: "u1@test.com", PasswordHash: "x", Name: "Alice", Age: 25, Gender: "female"},
		{ID: 2, Email: "u2@test.com", PasswordHash: "x", Name: "Bob", Age: 27, Gender: "male"},
		{ID: 3, Email: "u3@test.com", PasswordHash: "x", Name: "Carol", Age: 24, Gender: "female"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	swipes := []Swipe{
		{SwiperID: 1, SwipedID: 2, Liked: true},  // Alice → Bob (like)
		{SwiperID: 2, SwipedID: 3, Liked: true},  // Bob → Carol (like, not mutual)
		{SwiperID: 3, SwipedID: 2, Liked: false}, // Carol → Bob (pass)
	}
	if err := db.Create(&swipes).Error; err != nil {
		return err
	}

	return nil
}
