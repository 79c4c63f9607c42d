package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/models"
)

func TestRefreshPostLikeCounterOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	likeRepo := NewLikeRepository(db.DB)
	counterRepo := NewCounterRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "hello")

	_, err := likeRepo.Toggle(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	_, err = likeRepo.Toggle(ctx, post.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, counterRepo.RefreshPostLikeCounter(ctx, post.ID))

	count, err := counterRepo.GetPostLikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 重算覆盖而不是加减，重复刷新收敛到真实值
	require.NoError(t, counterRepo.RefreshPostLikeCounter(ctx, post.ID))
	count, err = counterRepo.GetPostLikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = likeRepo.Toggle(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, counterRepo.RefreshPostLikeCounter(ctx, post.ID))

	count, err = counterRepo.GetPostLikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRefreshPostCommentCounter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	commentRepo := NewCommentRepository(db.DB)
	counterRepo := NewCounterRepository(db.DB)

	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "hello")

	require.NoError(t, commentRepo.Create(ctx, &models.Comment{PostID: post.ID, UserID: alice.ID, Content: "first"}))
	require.NoError(t, commentRepo.Create(ctx, &models.Comment{PostID: post.ID, UserID: alice.ID, Content: "second"}))
	require.NoError(t, counterRepo.RefreshPostCommentCounter(ctx, post.ID))

	count, err := counterRepo.GetPostCommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCounterMissingRowReadsZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	counterRepo := NewCounterRepository(db.DB)

	count, err := counterRepo.GetPostLikeCount(ctx, 12345)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = counterRepo.GetVideoCommentCount(ctx, 12345)
	require.NoError(t, err)
	assert.Zero(t, count)
}
