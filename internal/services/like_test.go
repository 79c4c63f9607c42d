package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeKeepsCounterConvergent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, alice.ID, "hello")

	result, err := env.like.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikeCount)

	// 计数行与真实行数一致
	live, err := env.likeRepo.CountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, result.LikeCount, live)

	result, err = env.like.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikeCount)
}

func TestToggleLikeConcurrentDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, alice.ID, "raced")

	// 两个请求同时通过"未点赞"检查，后写者撞唯一索引，表现为冲突而非存储错误
	rivalInsert(t, env.db.DB, "like_posts",
		"INSERT INTO like_posts (post_id, user_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		post.ID, bob.ID)

	_, err := env.like.ToggleLike(ctx, bob.ID, post.ID)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestToggleLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.like.ToggleLike(context.Background(), alice.ID, 99999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetLikersRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.like.GetLikers(ctx, AnonymousID, post.ID, 0, 10)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestGetLikersFiltersBlockedButCountUnaffected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.like.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = env.like.ToggleLike(ctx, carol.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, env.relationship.Block(ctx, alice.ID, carol.ID))

	likers, err := env.like.GetLikers(ctx, alice.ID, post.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, bob.ID, likers[0].ID)

	// 点赞总数不随查看者的拉黑关系变化
	item, err := env.feed.GetPost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.LikeCount)
}
