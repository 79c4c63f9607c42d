package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/models"
)

func TestListVisibleOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	postRepo := NewPostRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	older := &models.Post{UserID: alice.ID, Image: "a.jpg", CreatedAt: base}
	require.NoError(t, db.DB.Create(older).Error)
	// 同一时刻的两条按 ID 倒序决出先后
	tiedFirst := &models.Post{UserID: alice.ID, Image: "b.jpg", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, db.DB.Create(tiedFirst).Error)
	tiedSecond := &models.Post{UserID: alice.ID, Image: "c.jpg", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, db.DB.Create(tiedSecond).Error)

	posts, err := postRepo.ListVisible(ctx, nil, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, tiedSecond.ID, posts[0].ID)
	assert.Equal(t, tiedFirst.ID, posts[1].ID)
	assert.Equal(t, older.ID, posts[2].ID)
}

func TestListVisibleExclusions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	postRepo := NewPostRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	alicePost := createTestPost(t, db, alice.ID, "from-alice")
	bobPost := createTestPost(t, db, bob.ID, "from-bob")
	hiddenPost := createTestPost(t, db, alice.ID, "hidden-one")

	posts, err := postRepo.ListVisible(ctx, []int64{bob.ID}, []int64{hiddenPost.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, alicePost.ID, posts[0].ID)
	assert.NotEqual(t, bobPost.ID, posts[0].ID)

	// 空排除列表返回全量
	posts, err = postRepo.ListVisible(ctx, nil, nil, 0, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestGetByIDPreloadsUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	postRepo := NewPostRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "hello")

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.User.Username)

	missing, err := postRepo.GetByID(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
