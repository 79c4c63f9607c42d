package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"gorm.io/gorm"
)

type ReactionService struct {
	postRepo     *repository.PostRepository
	reactionRepo *repository.ReactionRepository
	producer     EventPublisher
	logger       *logger.Logger
}

func NewReactionService(postRepo *repository.PostRepository, reactionRepo *repository.ReactionRepository, producer EventPublisher, logger *logger.Logger) *ReactionService {
	return &ReactionService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		producer:     producer,
		logger:       logger,
	}
}

type ReactionToggleResult struct {
	State        string `json:"state"`
	ReactionType string `json:"reaction_type,omitempty"`
}

// ToggleReaction 每个用户对同一帖子至多一条反应：
// 重复同类型删除，换类型原地改写
func (s *ReactionService) ToggleReaction(ctx context.Context, userID, postID int64, reactionType string) (*ReactionToggleResult, error) {
	if !models.IsValidReactionType(reactionType) {
		return nil, fmt.Errorf("%w: unknown reaction type %q", ErrInvalidInput, reactionType)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	state, err := s.reactionRepo.Toggle(ctx, postID, userID, reactionType)
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

	event := queue.Event{
		Type:      queue.EventReactionToggled,
		Timestamp: time.Now(),
		Data: queue.ReactionEventData{
			UserID:       userID,
			PostID:       postID,
			ReactionType: reactionType,
			State:        state,
		},
	}
	if err := s.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish reaction toggled event")
	}

	return result, nil
}

func (s *ReactionService) ListReactions(ctx context.Context, postID int64, offset, limit int) ([]*models.Reaction, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return s.reactionRepo.ListByPostID(ctx, postID, offset, limit)
}

// TopReactions 按出现频次倒序取前 n 种，频次相同按类型枚举顺序
func (s *ReactionService) TopReactions(ctx context.Context, postID int64, n int) ([]repository.ReactionCount, error) {
	counts, err := s.reactionRepo.CountByType(ctx, postID)
	if err != nil {
		return nil, err
	}
	sortReactionCounts(counts)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

func sortReactionCounts(counts []repository.ReactionCount) {
	rank := make(map[string]int, len(models.ReactionTypes))
	for i, t := range models.ReactionTypes {
		rank[t] = i
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return rank[counts[i].ReactionType] < rank[counts[j].ReactionType]
	})
}
