package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/pkg/queue"
)

func (e *testEnv) createVideo(t *testing.T, authorID int64, title string) *models.Video {
	t.Helper()
	video, err := e.video.CreateVideo(context.Background(), authorID, &CreateVideoRequest{
		Title:    title,
		Video:    "videos/" + title + ".mp4",
		Duration: 12.5,
	})
	require.NoError(t, err)
	return video
}

func TestCreateVideoEnqueuesThumbnailJob(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "sunset")

	jobs := env.jobs.byType(queue.EventVideoCreated)
	require.Len(t, jobs, 1)

	// 任务里带的是已提交的视频行
	data, err := json.Marshal(jobs[0].Data)
	require.NoError(t, err)
	var job queue.ThumbnailJobData
	require.NoError(t, json.Unmarshal(data, &job))
	assert.Equal(t, video.ID, job.VideoID)
	assert.Equal(t, video.Video, job.Video)
}

func TestCreateVideoValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.video.CreateVideo(context.Background(), alice.ID, &CreateVideoRequest{Title: "no file"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = env.video.CreateVideo(context.Background(), alice.ID, &CreateVideoRequest{Video: "a.mp4"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestVideoLikeToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "sunset")

	result, err := env.video.ToggleLike(ctx, bob.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikeCount)

	result, err = env.video.ToggleLike(ctx, bob.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikeCount)
}

func TestVideoToggleLikeConcurrentDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "raced")

	rivalInsert(t, env.db.DB, "vlog_likes",
		"INSERT INTO vlog_likes (video_id, user_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		video.ID, bob.ID)

	_, err := env.video.ToggleLike(ctx, bob.ID, video.ID)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestVideoToggleReactionConcurrentDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "raced")

	rivalInsert(t, env.db.DB, "vlog_reactions",
		"INSERT INTO vlog_reactions (video_id, user_id, reaction_type, created_at) VALUES (?, ?, 'love', CURRENT_TIMESTAMP)",
		video.ID, bob.ID)

	_, err := env.video.ToggleReaction(ctx, bob.ID, video.ID, models.ReactionWow)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestVideoReactionSingle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "sunset")

	result, err := env.video.ToggleReaction(ctx, alice.ID, video.ID, models.ReactionCrying)
	require.NoError(t, err)
	assert.Equal(t, "created", result.State)

	result, err = env.video.ToggleReaction(ctx, alice.ID, video.ID, models.ReactionCrying)
	require.NoError(t, err)
	assert.Equal(t, "removed", result.State)
}

func TestVideoListExcludesBlockedAuthors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.createVideo(t, alice.ID, "mine")
	env.createVideo(t, bob.ID, "theirs")

	require.NoError(t, env.relationship.Block(ctx, alice.ID, bob.ID))

	videos, err := env.video.ListVideos(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, alice.ID, videos[0].AuthorID)

	videos, err = env.video.ListVideos(ctx, AnonymousID, 1)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestVideoCommentsAndLikersVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "sunset")

	_, err := env.video.CreateComment(ctx, alice.ID, video.ID, "nice shot")
	require.NoError(t, err)

	comments, err := env.video.GetVideoComments(ctx, AnonymousID, video.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)

	comments, err = env.video.GetVideoComments(ctx, alice.ID, video.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, err = env.video.GetLikers(ctx, AnonymousID, video.ID, 0, 10)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestVideoOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "sunset")

	title := "renamed"
	_, err := env.video.UpdateVideo(ctx, bob.ID, video.ID, &title, nil)
	assert.True(t, errors.Is(err, ErrForbidden))

	err = env.video.DeleteVideo(ctx, bob.ID, video.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	updated, err := env.video.UpdateVideo(ctx, alice.ID, video.ID, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	require.NoError(t, env.video.DeleteVideo(ctx, alice.ID, video.ID))
}
