package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create 在同一事务里先删除双向关注，再写入拉黑记录
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
				block.BlockerID, block.BlockedID, block.BlockedID, block.BlockerID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Create(block).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete block: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *BlockRepository) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return count > 0, nil
}

// ExclusionSet 返回 user 拉黑的用户与拉黑了 user 的用户的并集
func (r *BlockRepository) ExclusionSet(ctx context.Context, userID int64) ([]int64, error) {
	var blocked []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &blocked).Error; err != nil {
		return nil, fmt.Errorf("failed to get blocked users: %w", err)
	}

	var blockedBy []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Block{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &blockedBy).Error; err != nil {
		return nil, fmt.Errorf("failed to get blocking users: %w", err)
	}

	seen := make(map[int64]struct{}, len(blocked)+len(blockedBy))
	excluded := make([]int64, 0, len(blocked)+len(blockedBy))
	for _, id := range append(blocked, blockedBy...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		excluded = append(excluded, id)
	}
	return excluded, nil
}
