package swipe_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/cache"
	"github.com/emberdate/ember-server/internal/config"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/service/swipe"
)

//
// Test helpers
//

// setupAppCtx spins up an in-memory SQLite DB, applies migrations, seeds
// the minimal dataset, starts a miniredis, and wires everything into an
// AppContext.
//
// Each test gets its own isolated DB + Redis.
func setupAppCtx(t *testing.T) *app.AppContext {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	require.NoError(t, db.SeedMinimalTestData(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	return app.New(dbase, redisCache, logger, cfg)
}

//
// Tests
//
// Seed dataset (db.SeedMinimalTestData):
//   - Users: 1 Alice (female), 2 Bob (male), 3 Carol (female)
//   - Swipes: 1→2 like, 2→3 like, 3→2 pass
//

func TestRecordSwipeCompletesMutualLike(t *testing.T) {
	ctx := context.Background()
	svc := swipe.NewService(setupAppCtx(t))

	// Alice already likes Bob; Bob likes back
	res, err := svc.RecordSwipe(ctx, 2, 1, true)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	require.NotNil(t, res.MatchID)
}

func TestRecordSwipeBothOrdersYieldOneMatch(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := swipe.NewService(appCtx)

	res, err := svc.RecordSwipe(ctx, 2, 1, true)
	require.NoError(t, err)
	require.True(t, res.IsMatch)
	firstID := *res.MatchID

	// Alice re-likes Bob after the match exists: still a match, same row
	res, err = svc.RecordSwipe(ctx, 1, 2, true)
	require.NoError(t, err)
	require.True(t, res.IsMatch)
	assert.Equal(t, firstID, *res.MatchID)

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordSwipeConcurrentReciprocalLikes(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := swipe.NewService(appCtx)

	// Alice already likes Bob in the seed; both sides now swipe right at
	// the same moment. The unique pair index is what guarantees a single
	// match row whichever transaction wins.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.RecordSwipe(ctx, 2, 1, true)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.RecordSwipe(ctx, 1, 2, true)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var m db.Match
	require.NoError(t, appCtx.DB.Take(&m).Error)
	assert.Equal(t, uint64(1), m.User1ID)
	assert.Equal(t, uint64(2), m.User2ID)
}

func TestRecordSwipeLikeWithoutReciprocal(t *testing.T) {
	ctx := context.Background()
	svc := swipe.NewService(setupAppCtx(t))

	// Carol passed Bob, so Bob liking Carol is one-sided
	res, err := svc.RecordSwipe(ctx, 2, 3, true)
	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Nil(t, res.MatchID)
}

func TestRecordSwipePassNeverMatches(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := swipe.NewService(appCtx)

	// Alice likes Bob already; Bob passing on her creates no match
	res, err := svc.RecordSwipe(ctx, 2, 1, false)
	require.NoError(t, err)
	assert.False(t, res.IsMatch)

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRecordSwipeOverwritesDecision(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := swipe.NewService(appCtx)

	// Carol passed Bob in the seed; she changes her mind
	res, err := svc.RecordSwipe(ctx, 3, 2, true)
	require.NoError(t, err)
	// Bob already liked Carol (2→3 like in the seed) → mutual now
	assert.True(t, res.IsMatch)

	var s db.Swipe
	require.NoError(t, appCtx.DB.Where("swiper_id = ? AND swiped_id = ?", 3, 2).Take(&s).Error)
	assert.True(t, s.Liked)
}

func TestRecordSwipeValidation(t *testing.T) {
	ctx := context.Background()
	svc := swipe.NewService(setupAppCtx(t))

	_, err := svc.RecordSwipe(ctx, 1, 1, true)
	assert.Equal(t, svcErr.KindInvalidArgument, svcErr.KindOf(err))

	_, err = svc.RecordSwipe(ctx, 1, 0, true)
	assert.Equal(t, svcErr.KindInvalidArgument, svcErr.KindOf(err))

	// swiping a nonexistent user leaves no swipe row behind
	appCtx := setupAppCtx(t)
	svc = swipe.NewService(appCtx)
	_, err = svc.RecordSwipe(ctx, 1, 999, true)
	assert.Equal(t, svcErr.KindNotFound, svcErr.KindOf(err))

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Swipe{}).Where("swiper_id = ? AND swiped_id = ?", 1, 999).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPotentialMatchesExcludesSwipedAndSameGender(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := swipe.NewService(appCtx)

	// Bob (male) already swiped Carol, leaving Alice as his only candidate
	candidates, next, err := svc.PotentialMatches(ctx, 2, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, uint64(1), candidates[0].ID)
	assert.Nil(t, next)

	// Alice (female) already swiped Bob, the only male → empty feed
	candidates, _, err = svc.PotentialMatches(ctx, 1, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestPotentialMatchesRejectsBadToken(t *testing.T) {
	ctx := context.Background()
	svc := swipe.NewService(setupAppCtx(t))

	bad := "%%%"
	_, _, err := svc.PotentialMatches(ctx, 2, &bad, 10)
	assert.Equal(t, svcErr.KindInvalidArgument, svcErr.KindOf(err))
}
