package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"gorm.io/gorm"
)

type LikeService struct {
	postRepo    *repository.PostRepository
	likeRepo    *repository.LikeRepository
	counterRepo *repository.CounterRepository
	visibility  *VisibilityService
	producer    EventPublisher
	cache       FeedCache
	logger      *logger.Logger
}

func NewLikeService(postRepo *repository.PostRepository, likeRepo *repository.LikeRepository, counterRepo *repository.CounterRepository, visibility *VisibilityService, producer EventPublisher, cache FeedCache, logger *logger.Logger) *LikeService {
	return &LikeService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		counterRepo: counterRepo,
		visibility:  visibility,
		producer:    producer,
		cache:       cache,
		logger:      logger,
	}
}

type LikeToggleResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleLike 已点赞则取消，未点赞则点赞，总是返回最终状态
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID int64) (*LikeToggleResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	liked, err := s.likeRepo.Toggle(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: concurrent like detected", ErrConflict)
		}
		return nil, err
	}

	// 每次切换后整体重算计数
	if err := s.counterRepo.RefreshPostLikeCounter(ctx, postID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh like counter")
	}

	s.invalidateFeedCache(ctx)

	event := queue.Event{
		Type:      queue.EventLikeToggled,
		Timestamp: time.Now(),
		Data: queue.LikeEventData{
			UserID: userID,
			PostID: postID,
			Liked:  liked,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish like toggled event")
	}

	count, err := s.counterRepo.GetPostLikeCount(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &LikeToggleResult{Liked: liked, LikeCount: count}, nil
}

// GetLikers 点赞列表需要登录，且过滤与查看者互相拉黑的用户
func (s *LikeService) GetLikers(ctx context.Context, viewerID, postID int64, offset, limit int) ([]*models.User, error) {
	if viewerID == AnonymousID {
		return nil, fmt.Errorf("%w: listing likers requires authentication", ErrUnauthenticated)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	excluded, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return s.likeRepo.ListLikers(ctx, postID, excluded, offset, limit)
}

func (s *LikeService) invalidateFeedCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "feed:posts:*"); err != nil {
		s.logger.WithError(err).Error("Failed to invalidate feed cache")
	}
}
