package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emberdate/ember-server/internal/db"
	"github.com/emberdate/ember-server/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func createUser(t *testing.T, database *gorm.DB, id uint64, name, gender string) {
	t.Helper()
	user := db.User{
		ID:           id,
		Email:        fmt.Sprintf("%s%d@test.com", gender, id),
		PasswordHash: "x",
		Name:         name,
		Age:          25,
		Gender:       gender,
	}
	require.NoError(t, database.Create(&user).Error)
}

func TestSwipeUpsertLastDecisionWins(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// insert like
	require.NoError(t, repo.Upsert(ctx, 1, 2, true))

	// overwrite with pass
	require.NoError(t, repo.Upsert(ctx, 1, 2, false))

	var count int64
	require.NoError(t, dbase.Model(&db.Swipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	s, err := repo.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, s.Liked)

	// swipe back to like again
	require.NoError(t, repo.Upsert(ctx, 1, 2, true))
	s, err = repo.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, s.Liked)
}

func TestSwipeUpsertRefreshesTimestamps(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	require.NoError(t, repo.Upsert(ctx, 1, 2, true))
	first, err := repo.Get(ctx, 1, 2)
	require.NoError(t, err)

	// a re-swipe is a new decision, so both timestamps move
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Upsert(ctx, 1, 2, false))

	second, err := repo.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSwipeHasLikedIsDirectional(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	require.NoError(t, repo.Upsert(ctx, 1, 2, true))
	require.NoError(t, repo.Upsert(ctx, 3, 1, false))

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	// opposite direction was never swiped
	liked, err = repo.HasLiked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, liked)

	// a pass is not a like
	liked, err = repo.HasLiked(ctx, 3, 1)
	require.NoError(t, err)
	assert.False(t, liked)
}
