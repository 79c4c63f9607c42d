package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentContentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.comment.CreateComment(ctx, alice.ID, post.ID, "")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.comment.CreateComment(ctx, alice.ID, post.ID, strings.Repeat("x", 1001))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// 1000 个多字节字符在限制之内
	_, err = env.comment.CreateComment(ctx, alice.ID, post.ID, strings.Repeat("好", 1000))
	assert.NoError(t, err)
}

func TestCommentCounterFollowsCreateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "hello")

	comment, err := env.comment.CreateComment(ctx, alice.ID, post.ID, "first")
	require.NoError(t, err)
	_, err = env.comment.CreateComment(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	count, err := env.counterRepo.GetPostCommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, env.comment.DeleteComment(ctx, alice.ID, comment.ID))

	count, err = env.counterRepo.GetPostCommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCommentOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, alice.ID, "hello")

	comment, err := env.comment.CreateComment(ctx, alice.ID, post.ID, "mine")
	require.NoError(t, err)

	_, err = env.comment.UpdateComment(ctx, bob.ID, comment.ID, "hijack")
	assert.True(t, errors.Is(err, ErrForbidden))

	err = env.comment.DeleteComment(ctx, bob.ID, comment.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	updated, err := env.comment.UpdateComment(ctx, alice.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestAnonymousGetsNoComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.comment.CreateComment(ctx, alice.ID, post.ID, "visible to members")
	require.NoError(t, err)

	comments, err := env.comment.GetPostComments(ctx, AnonymousID, post.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = env.comment.GetPostComments(ctx, alice.ID, post.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentsExcludeBlockedAuthors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	post := env.createPost(t, alice.ID, "hello")

	_, err := env.comment.CreateComment(ctx, bob.ID, post.ID, "from bob")
	require.NoError(t, err)
	_, err = env.comment.CreateComment(ctx, carol.ID, post.ID, "from carol")
	require.NoError(t, err)

	require.NoError(t, env.relationship.Block(ctx, alice.ID, carol.ID))

	comments, err := env.comment.GetPostComments(ctx, alice.ID, post.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, bob.ID, comments[0].UserID)
}
