package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"gorm.io/gorm"
)

// VideoService 的点赞/评论/反应与帖子侧语义一致，作用于 vlog 表。
// 视频文件、时长与大小的校验由媒体服务在入库前完成。
type VideoService struct {
	videoRepo       *repository.VideoRepository
	vlogLikeRepo    *repository.VlogLikeRepository
	vlogReactRepo   *repository.VlogReactionRepository
	vlogCommentRepo *repository.VlogCommentRepository
	counterRepo     *repository.CounterRepository
	visibility      *VisibilityService
	producer        EventPublisher
	jobsProducer    EventPublisher
	config          *config.FeedConfig
	logger          *logger.Logger
}

func NewVideoService(
	videoRepo *repository.VideoRepository,
	vlogLikeRepo *repository.VlogLikeRepository,
	vlogReactRepo *repository.VlogReactionRepository,
	vlogCommentRepo *repository.VlogCommentRepository,
	counterRepo *repository.CounterRepository,
	visibility *VisibilityService,
	producer EventPublisher,
	jobsProducer EventPublisher,
	config *config.FeedConfig,
	logger *logger.Logger,
) *VideoService {
	return &VideoService{
		videoRepo:       videoRepo,
		vlogLikeRepo:    vlogLikeRepo,
		vlogReactRepo:   vlogReactRepo,
		vlogCommentRepo: vlogCommentRepo,
		counterRepo:     counterRepo,
		visibility:      visibility,
		producer:        producer,
		jobsProducer:    jobsProducer,
		config:          config,
		logger:          logger,
	}
}

type CreateVideoRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	Video       string  `json:"video" binding:"required"`
	Duration    float64 `json:"duration"`
}

type VideoFeedItem struct {
	*models.Video
	LikeCount      int64                      `json:"like_count"`
	CommentCount   int64                      `json:"comment_count"`
	ViewerHasLiked bool                       `json:"viewer_has_liked"`
	TopReactions   []repository.ReactionCount `json:"top_reactions,omitempty"`
}

func (s *VideoService) CreateVideo(ctx context.Context, authorID int64, req *CreateVideoRequest) (*models.Video, error) {
	if req.Title == "" || utf8.RuneCountInString(req.Title) > 200 {
		return nil, fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
	}
	if req.Video == "" {
		return nil, fmt.Errorf("%w: video reference is required", ErrInvalidInput)
	}

	video := &models.Video{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Video:       req.Video,
		Duration:    req.Duration,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}

	// 缩略图任务只在视频行提交之后入队，worker 不会读到不存在的行。
	// 入队失败只记日志，任务是尽力而为的单次触发。
	job := queue.Event{
		Type:      queue.EventVideoCreated,
		Timestamp: video.CreatedAt,
		Data: queue.ThumbnailJobData{
			VideoID: video.ID,
			Video:   video.Video,
		},
	}
	if err := s.jobsProducer.Publish(ctx, strconv.FormatInt(video.ID, 10), job); err != nil {
		s.logger.WithError(err).Error("Failed to enqueue thumbnail job")
	}

	s.logger.WithFields(map[string]interface{}{
		"video_id":  video.ID,
		"author_id": authorID,
	}).Info("Video created successfully")

	return video, nil
}

func (s *VideoService) GetVideo(ctx context.Context, viewerID, videoID int64) (*VideoFeedItem, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}
	return s.decorateVideo(ctx, video, viewerID)
}

func (s *VideoService) ListVideos(ctx context.Context, viewerID int64, page int) ([]*VideoFeedItem, error) {
	if page < 1 {
		page = 1
	}
	limit := s.config.PageSize
	offset := (page - 1) * limit

	excluded, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	videos, err := s.videoRepo.List(ctx, excluded, offset, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*VideoFeedItem, 0, len(videos))
	for _, video := range videos {
		item, err := s.decorateVideo(ctx, video, viewerID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, requesterID, videoID int64, title, description *string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}
	if video.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: only the video author can update it", ErrForbidden)
	}

	if title != nil {
		if *title == "" || utf8.RuneCountInString(*title) > 200 {
			return nil, fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
		}
		video.Title = *title
	}
	if description != nil {
		video.Description = *description
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) DeleteVideo(ctx context.Context, requesterID, videoID int64) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}
	if video.AuthorID != requesterID {
		return fmt.Errorf("%w: only the video author can delete it", ErrForbidden)
	}
	return s.videoRepo.Delete(ctx, videoID)
}

func (s *VideoService) ToggleLike(ctx context.Context, userID, videoID int64) (*LikeToggleResult, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	liked, err := s.vlogLikeRepo.Toggle(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: concurrent like detected", ErrConflict)
		}
		return nil, err
	}

	if err := s.counterRepo.RefreshVideoLikeCounter(ctx, videoID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh vlog like counter")
	}

	event := queue.Event{
		Type:      queue.EventLikeToggled,
		Timestamp: time.Now(),
		Data: queue.LikeEventData{
			UserID: userID,
			PostID: videoID,
			Liked:  liked,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish vlog like toggled event")
	}

	count, err := s.counterRepo.GetVideoLikeCount(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &LikeToggleResult{Liked: liked, LikeCount: count}, nil
}

func (s *VideoService) ToggleReaction(ctx context.Context, userID, videoID int64, reactionType string) (*ReactionToggleResult, error) {
	if !models.IsValidReactionType(reactionType) {
		return nil, fmt.Errorf("%w: unknown reaction type %q", ErrInvalidInput, reactionType)
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	state, err := s.vlogReactRepo.Toggle(ctx, videoID, userID, reactionType)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: concurrent reaction detected", ErrConflict)
		}
		return nil, err
	}

	result := &ReactionToggleResult{State: state}
	if state != repository.ReactionStateRemoved {
		result.ReactionType = reactionType
	}
	return result, nil
}

func (s *VideoService) CreateComment(ctx context.Context, userID, videoID int64, content string) (*models.VlogComment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	comment := &models.VlogComment{
		VideoID: videoID,
		UserID:  userID,
		Content: content,
	}
	if err := s.vlogCommentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.counterRepo.RefreshVideoCommentCounter(ctx, videoID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh vlog comment counter")
	}

	return comment, nil
}

func (s *VideoService) UpdateComment(ctx context.Context, requesterID, commentID int64, content string) (*models.VlogComment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment, err := s.vlogCommentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
	}
	if comment.UserID != requesterID {
		return nil, fmt.Errorf("%w: only the comment owner can update it", ErrForbidden)
	}

	comment.Content = content
	if err := s.vlogCommentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *VideoService) DeleteComment(ctx context.Context, requesterID, commentID int64) error {
	comment, err := s.vlogCommentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
	}
	if comment.UserID != requesterID {
		return fmt.Errorf("%w: only the comment owner can delete it", ErrForbidden)
	}

	if err := s.vlogCommentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	if err := s.counterRepo.RefreshVideoCommentCounter(ctx, comment.VideoID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh vlog comment counter")
	}
	return nil
}

func (s *VideoService) GetVideoComments(ctx context.Context, viewerID, videoID int64, offset, limit int) ([]*models.VlogComment, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	if viewerID == AnonymousID {
		return []*models.VlogComment{}, nil
	}

	excluded, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.vlogCommentRepo.ListVisibleByVideo(ctx, videoID, excluded, offset, limit)
}

func (s *VideoService) GetLikers(ctx context.Context, viewerID, videoID int64, offset, limit int) ([]*models.User, error) {
	if viewerID == AnonymousID {
		return nil, fmt.Errorf("%w: listing likers requires authentication", ErrUnauthenticated)
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video %d", ErrNotFound, videoID)
	}

	excluded, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.vlogLikeRepo.ListLikers(ctx, videoID, excluded, offset, limit)
}

func (s *VideoService) decorateVideo(ctx context.Context, video *models.Video, viewerID int64) (*VideoFeedItem, error) {
	likeCount, err := s.counterRepo.GetVideoLikeCount(ctx, video.ID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.counterRepo.GetVideoCommentCount(ctx, video.ID)
	if err != nil {
		return nil, err
	}

	viewerHasLiked := false
	if viewerID != AnonymousID {
		viewerHasLiked, err = s.vlogLikeRepo.IsLiked(ctx, video.ID, viewerID)
		if err != nil {
			return nil, err
		}
	}

	counts, err := s.vlogReactRepo.CountByType(ctx, video.ID)
	if err != nil {
		return nil, err
	}
	sortReactionCounts(counts)
	if len(counts) > s.config.TopReactions {
		counts = counts[:s.config.TopReactions]
	}

	return &VideoFeedItem{
		Video:          video,
		LikeCount:      likeCount,
		CommentCount:   commentCount,
		ViewerHasLiked: viewerHasLiked,
		TopReactions:   counts,
	}, nil
}
