package services

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
)

const maxCommentLength = 1000

type CommentService struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	counterRepo *repository.CounterRepository
	visibility  *VisibilityService
	producer    EventPublisher
	cache       FeedCache
	logger      *logger.Logger
}

func NewCommentService(postRepo *repository.PostRepository, commentRepo *repository.CommentRepository, counterRepo *repository.CounterRepository, visibility *VisibilityService, producer EventPublisher, cache FeedCache, logger *logger.Logger) *CommentService {
	return &CommentService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		counterRepo: counterRepo,
		visibility:  visibility,
		producer:    producer,
		cache:       cache,
		logger:      logger,
	}
}

func validateCommentContent(content string) error {
	if content == "" {
		return fmt.Errorf("%w: comment content must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return fmt.Errorf("%w: comment content exceeds %d characters", ErrInvalidInput, maxCommentLength)
	}
	return nil
}

func (s *CommentService) CreateComment(ctx context.Context, userID, postID int64, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.counterRepo.RefreshPostCommentCounter(ctx, postID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh comment counter")
	}

	s.invalidateFeedCache(ctx)

	event := queue.Event{
		Type:      queue.EventCommentCreated,
		Timestamp: time.Now(),
		Data: queue.CommentEventData{
			CommentID: comment.ID,
			UserID:    userID,
			PostID:    postID,
			Content:   comment.Content,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish comment created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"user_id":    userID,
		"post_id":    postID,
	}).Info("Comment created successfully")

	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, requesterID, commentID int64, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
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
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, requesterID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
	}
	if comment.UserID != requesterID {
		return fmt.Errorf("%w: only the comment owner can delete it", ErrForbidden)
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	if err := s.counterRepo.RefreshPostCommentCounter(ctx, comment.PostID); err != nil {
		s.logger.WithError(err).Error("Failed to refresh comment counter")
	}

	s.invalidateFeedCache(ctx)

	event := queue.Event{
		Type:      queue.EventCommentDeleted,
		Timestamp: time.Now(),
		Data: queue.CommentEventData{
			CommentID: commentID,
			UserID:    requesterID,
			PostID:    comment.PostID,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(requesterID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish comment deleted event")
	}

	return nil
}

// GetPostComments 匿名查看者得到空结果，评论列表需要身份
func (s *CommentService) GetPostComments(ctx context.Context, viewerID, postID int64, offset, limit int) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	if viewerID == AnonymousID {
		return []*models.Comment{}, nil
	}

	excluded, err := s.visibility.ExcludedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return s.commentRepo.ListVisibleByPost(ctx, postID, excluded, offset, limit)
}

func (s *CommentService) invalidateFeedCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "feed:posts:*"); err != nil {
		s.logger.WithError(err).Error("Failed to invalidate feed cache")
	}
}
