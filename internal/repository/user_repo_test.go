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
	"gorm.io/gorm"
)

func TestUserCreateAndFindByEmail(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	user := db.User{Email: "alice@test.com", PasswordHash: "x", Name: "Alice", Age: 25, Gender: "female"}
	require.NoError(t, repo.Create(ctx, &user))
	assert.NotZero(t, user.ID)

	found, err := repo.FindByEmail(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@test.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// unique index on email
	dup := db.User{Email: "alice@test.com", PasswordHash: "x", Name: "Other", Age: 30, Gender: "female"}
	err = repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserUpdateProfilePartial(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	user := db.User{Email: "bob@test.com", PasswordHash: "x", Name: "Bob", Age: 30, Bio: "hi", Gender: "male"}
	require.NoError(t, repo.Create(ctx, &user))

	newBio := "climber, cook"
	updated, err := repo.UpdateProfile(ctx, user.ID, nil, nil, &newBio, nil)
	require.NoError(t, err)
	assert.Equal(t, "climber, cook", updated.Bio)
	// untouched fields keep their values
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, 30, updated.Age)

	_, err = repo.UpdateProfile(ctx, 999, &newBio, nil, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListUnswipedFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)
	swipes := repository.NewSwipeRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)

	// the browsing user
	me := db.User{ID: 1, Email: "me@test.com", PasswordHash: "x", Name: "Me", Age: 25, Gender: "female", CreatedAt: base}
	require.NoError(t, dbase.Create(&me).Error)

	// five male candidates with distinct creation times
	for i := 0; i < 5; i++ {
		candidate := db.User{
			ID:           uint64(10 + i),
			Email:        fmt.Sprintf("m%d@test.com", i),
			PasswordHash: "x",
			Name:         fmt.Sprintf("M%d", i),
			Age:          25,
			Gender:       "male",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, dbase.Create(&candidate).Error)
	}

	// a same-gender user never shows up
	other := db.User{ID: 20, Email: "f@test.com", PasswordHash: "x", Name: "F", Age: 25, Gender: "female", CreatedAt: base}
	require.NoError(t, dbase.Create(&other).Error)

	// already swiped (either way) on user 14 → excluded
	require.NoError(t, swipes.Upsert(ctx, 1, 14, false))

	page1, next, err := users.ListUnswiped(ctx, 1, "female", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	// newest profiles first; 14 is swiped away
	assert.Equal(t, uint64(13), page1[0].ID)
	assert.Equal(t, uint64(12), page1[1].ID)

	page2, next2, err := users.ListUnswiped(ctx, 1, "female", next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, uint64(11), page2[0].ID)
	assert.Equal(t, uint64(10), page2[1].ID)
	assert.Nil(t, next2)
}

func TestListUnswipedRejectsBadCursor(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	users := repository.NewUserRepository(dbase)

	bad := "not-a-cursor"
	_, _, err := users.ListUnswiped(ctx, 1, "female", &bad, 10)
	assert.Error(t, err)
}
