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

type RelationshipService struct {
	blockRepo  *repository.BlockRepository
	followRepo *repository.FollowRepository
	userRepo   *repository.UserRepository
	producer   EventPublisher
	logger     *logger.Logger
}

func NewRelationshipService(blockRepo *repository.BlockRepository, followRepo *repository.FollowRepository, userRepo *repository.UserRepository, producer EventPublisher, logger *logger.Logger) *RelationshipService {
	return &RelationshipService{
		blockRepo:  blockRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
		producer:   producer,
		logger:     logger,
	}
}

func (s *RelationshipService) Block(ctx context.Context, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", ErrInvalidInput)
	}

	blocked, err := s.userRepo.GetByID(ctx, blockedID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if blocked == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, blockedID)
	}

	// 拉黑与双向取关在仓库层的同一事务内完成
	block := &models.Block{BlockerID: blockerID, BlockedID: blockedID}
	if err := s.blockRepo.Create(ctx, block); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user already blocked", ErrConflict)
		}
		return err
	}

	event := queue.Event{
		Type:      queue.EventBlockCreated,
		Timestamp: time.Now(),
		Data: queue.BlockEventData{
			BlockerID: blockerID,
			BlockedID: blockedID,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(blockerID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish block created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"blocker_id": blockerID,
		"blocked_id": blockedID,
	}).Info("User blocked successfully")

	return nil
}

func (s *RelationshipService) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	deleted, err := s.blockRepo.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: block does not exist", ErrNotFound)
	}

	event := queue.Event{
		Type:      queue.EventBlockDeleted,
		Timestamp: time.Now(),
		Data: queue.BlockEventData{
			BlockerID: blockerID,
			BlockedID: blockedID,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(blockerID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish block deleted event")
	}

	return nil
}

// ExclusionSet 任一方向的拉黑都会互相隐藏内容
func (s *RelationshipService) ExclusionSet(ctx context.Context, userID int64) ([]int64, error) {
	return s.blockRepo.ExclusionSet(ctx, userID)
}

func (s *RelationshipService) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}

	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, followingID)
	}

	// 拉黑关系存在时不允许建立关注
	blockedEither, err := s.blockRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !blockedEither {
		blockedEither, err = s.blockRepo.Exists(ctx, followingID, followerID)
		if err != nil {
			return err
		}
	}
	if blockedEither {
		return fmt.Errorf("%w: blocked users cannot follow each other", ErrForbidden)
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: already following", ErrConflict)
		}
		return err
	}

	return nil
}

func (s *RelationshipService) Unfollow(ctx context.Context, followerID, followingID int64) error {
	deleted, err := s.followRepo.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: follow does not exist", ErrNotFound)
	}
	return nil
}

func (s *RelationshipService) GetFollowers(ctx context.Context, userID int64, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID, offset, limit)
}

func (s *RelationshipService) GetFollowing(ctx context.Context, userID int64, offset, limit int) ([]*models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID, offset, limit)
}
