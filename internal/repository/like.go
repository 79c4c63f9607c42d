package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 存在则删、不存在则建，事务内完成。
// 并发重复插入会触发唯一约束，错误原样带出（gorm.ErrDuplicatedKey），由上层转为冲突。
func (r *LikeRepository) Toggle(ctx context.Context, postID, userID int64) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.LikePost
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			liked = false
			return tx.Delete(&existing).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		liked = true
		return tx.Create(&models.LikePost{PostID: postID, UserID: userID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

func (r *LikeRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.LikePost{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete like: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *LikeRepository) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LikePost{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}

func (r *LikeRepository) CountByPostID(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LikePost{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// ListLikers 按点赞时间倒序返回点赞用户，排除指定用户
func (r *LikeRepository) ListLikers(ctx context.Context, postID int64, excludedUserIDs []int64, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	query := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN like_posts ON like_posts.user_id = users.id").
		Where("like_posts.post_id = ?", postID)
	if len(excludedUserIDs) > 0 {
		query = query.Where("users.id NOT IN ?", excludedUserIDs)
	}
	if err := query.
		Order("like_posts.created_at DESC, like_posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	return users, nil
}
