package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/emberdate/ember-server/internal/db"
	"github.com/emberdate/ember-server/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageListBetweenIsChronological(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	require.NoError(t, dbase.Create(&db.Message{
		SenderID: 2, ReceiverID: 1, Content: "second", SentAt: base.Add(time.Minute),
	}).Error)
	require.NoError(t, dbase.Create(&db.Message{
		SenderID: 1, ReceiverID: 2, Content: "first", SentAt: base,
	}).Error)
	// a different pair's traffic must not leak in
	require.NoError(t, dbase.Create(&db.Message{
		SenderID: 1, ReceiverID: 3, Content: "other", SentAt: base,
	}).Error)

	messages, err := repo.ListBetween(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)

	// argument order does not matter
	reversed, err := repo.ListBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Len(t, reversed, 2)
}

func TestMarkReadAndWatermark(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	m1 := db.Message{SenderID: 2, ReceiverID: 1, Content: "a", SentAt: base}
	m2 := db.Message{SenderID: 2, ReceiverID: 1, Content: "b", SentAt: base.Add(time.Minute)}
	m3 := db.Message{SenderID: 1, ReceiverID: 2, Content: "c", SentAt: base.Add(2 * time.Minute)}
	require.NoError(t, repo.Create(ctx, &m1))
	require.NoError(t, repo.Create(ctx, &m2))
	require.NoError(t, repo.Create(ctx, &m3))

	// nothing read yet
	watermark, err := repo.LastReadID(ctx, 2, 1)
	require.NoError(t, err)
	assert.Nil(t, watermark)

	// user1 reads everything from user2
	updated, err := repo.MarkRead(ctx, 1, 2, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// retry is a no-op
	updated, err = repo.MarkRead(ctx, 1, 2, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	// watermark is the highest read id in that direction
	watermark, err = repo.LastReadID(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, watermark)
	assert.Equal(t, m2.ID, *watermark)

	// the other direction is untouched
	watermark, err = repo.LastReadID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, watermark)

	var read db.Message
	require.NoError(t, dbase.First(&read, m1.ID).Error)
	assert.True(t, read.Read)
	assert.NotNil(t, read.ReadAt)
}

func TestCountUnreadAcrossConversations(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 2, ReceiverID: 1, Content: "a"}))
	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 3, ReceiverID: 1, Content: "b"}))
	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 1, ReceiverID: 2, Content: "c"}))

	count, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.MarkRead(ctx, 1, 2, time.Now().UTC())
	require.NoError(t, err)

	count, err = repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteBetweenRemovesBothDirections(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 1, ReceiverID: 2, Content: "a"}))
	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 2, ReceiverID: 1, Content: "b"}))
	require.NoError(t, repo.Create(ctx, &db.Message{SenderID: 1, ReceiverID: 3, Content: "keep"}))

	deleted, err := repo.DeleteBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var count int64
	require.NoError(t, dbase.Model(&db.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
