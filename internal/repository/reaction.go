package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

const (
	ReactionStateCreated = "created"
	ReactionStateUpdated = "updated"
	ReactionStateRemoved = "removed"
)

type ReactionCount struct {
	ReactionType string `json:"reaction_type"`
	Count        int64  `json:"count"`
}

type ReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Toggle 保证每个 (post, user) 至多一条反应：
// 无记录则创建，同类型则删除，异类型则原地改写。
func (r *ReactionRepository) Toggle(ctx context.Context, postID, userID int64, reactionType string) (string, error) {
	var state string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			state = ReactionStateCreated
			return tx.Create(&models.Reaction{
				PostID:       postID,
				UserID:       userID,
				ReactionType: reactionType,
			}).Error
		}
		if err != nil {
			return err
		}
		if existing.ReactionType == reactionType {
			state = ReactionStateRemoved
			return tx.Delete(&existing).Error
		}
		state = ReactionStateUpdated
		return tx.Model(&existing).Update("reaction_type", reactionType).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to toggle reaction: %w", err)
	}
	return state, nil
}

func (r *ReactionRepository) Get(ctx context.Context, postID, userID int64) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&reaction).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &reaction, nil
}

func (r *ReactionRepository) ListByPostID(ctx context.Context, postID int64, offset, limit int) ([]*models.Reaction, error) {
	var reactions []*models.Reaction
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return reactions, nil
}

// CountByType 按类型分组统计某帖子的反应数
func (r *ReactionRepository) CountByType(ctx context.Context, postID int64) ([]ReactionCount, error) {
	var counts []ReactionCount
	if err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) as count").
		Where("post_id = ?", postID).
		Group("reaction_type").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count reactions by type: %w", err)
	}
	return counts, nil
}
