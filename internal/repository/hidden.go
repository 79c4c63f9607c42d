package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type HiddenPostRepository struct {
	db *gorm.DB
}

func NewHiddenPostRepository(db *gorm.DB) *HiddenPostRepository {
	return &HiddenPostRepository{db: db}
}

func (r *HiddenPostRepository) Create(ctx context.Context, hidden *models.HiddenPost) error {
	if err := r.db.WithContext(ctx).Create(hidden).Error; err != nil {
		return fmt.Errorf("failed to hide post: %w", err)
	}
	return nil
}

func (r *HiddenPostRepository) Delete(ctx context.Context, userID, postID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.HiddenPost{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to unhide post: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *HiddenPostRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.HiddenPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check hidden status: %w", err)
	}
	return count > 0, nil
}

// PostIDsForUser 返回该用户自己隐藏的帖子 ID，仅影响列表查询
func (r *HiddenPostRepository) PostIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	var postIDs []int64
	if err := r.db.WithContext(ctx).
		Model(&models.HiddenPost{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &postIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to get hidden post IDs: %w", err)
	}
	return postIDs, nil
}
