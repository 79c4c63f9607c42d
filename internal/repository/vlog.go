package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

// vlog 的互动仓库与帖子侧一一对应，约束与切换语义完全相同

type VlogLikeRepository struct {
	db *gorm.DB
}

func NewVlogLikeRepository(db *gorm.DB) *VlogLikeRepository {
	return &VlogLikeRepository{db: db}
}

func (r *VlogLikeRepository) Toggle(ctx context.Context, videoID, userID int64) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.VlogLike
		err := tx.Where("video_id = ? AND user_id = ?", videoID, userID).First(&existing).Error
		if err == nil {
			liked = false
			return tx.Delete(&existing).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		liked = true
		return tx.Create(&models.VlogLike{VideoID: videoID, UserID: userID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle vlog like: %w", err)
	}
	return liked, nil
}

func (r *VlogLikeRepository) IsLiked(ctx context.Context, videoID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.VlogLike{}).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vlog like status: %w", err)
	}
	return count > 0, nil
}

func (r *VlogLikeRepository) CountByVideoID(ctx context.Context, videoID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.VlogLike{}).
		Where("video_id = ?", videoID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vlog likes: %w", err)
	}
	return count, nil
}

func (r *VlogLikeRepository) ListLikers(ctx context.Context, videoID int64, excludedUserIDs []int64, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	query := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN vlog_likes ON vlog_likes.user_id = users.id").
		Where("vlog_likes.video_id = ?", videoID)
	if len(excludedUserIDs) > 0 {
		query = query.Where("users.id NOT IN ?", excludedUserIDs)
	}
	if err := query.
		Order("vlog_likes.created_at DESC, vlog_likes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list vlog likers: %w", err)
	}
	return users, nil
}

type VlogReactionRepository struct {
	db *gorm.DB
}

func NewVlogReactionRepository(db *gorm.DB) *VlogReactionRepository {
	return &VlogReactionRepository{db: db}
}

func (r *VlogReactionRepository) Toggle(ctx context.Context, videoID, userID int64, reactionType string) (string, error) {
	var state string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.VlogReaction
		err := tx.Where("video_id = ? AND user_id = ?", videoID, userID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			state = ReactionStateCreated
			return tx.Create(&models.VlogReaction{
				VideoID:      videoID,
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
		return "", fmt.Errorf("failed to toggle vlog reaction: %w", err)
	}
	return state, nil
}

func (r *VlogReactionRepository) Get(ctx context.Context, videoID, userID int64) (*models.VlogReaction, error) {
	var reaction models.VlogReaction
	if err := r.db.WithContext(ctx).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		First(&reaction).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vlog reaction: %w", err)
	}
	return &reaction, nil
}

func (r *VlogReactionRepository) CountByType(ctx context.Context, videoID int64) ([]ReactionCount, error) {
	var counts []ReactionCount
	if err := r.db.WithContext(ctx).
		Model(&models.VlogReaction{}).
		Select("reaction_type, COUNT(*) as count").
		Where("video_id = ?", videoID).
		Group("reaction_type").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count vlog reactions by type: %w", err)
	}
	return counts, nil
}

type VlogCommentRepository struct {
	db *gorm.DB
}

func NewVlogCommentRepository(db *gorm.DB) *VlogCommentRepository {
	return &VlogCommentRepository{db: db}
}

func (r *VlogCommentRepository) Create(ctx context.Context, comment *models.VlogComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create vlog comment: %w", err)
	}
	return nil
}

func (r *VlogCommentRepository) GetByID(ctx context.Context, id int64) (*models.VlogComment, error) {
	var comment models.VlogComment
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vlog comment: %w", err)
	}
	return &comment, nil
}

func (r *VlogCommentRepository) ListVisibleByVideo(ctx context.Context, videoID int64, excludedUserIDs []int64, offset, limit int) ([]*models.VlogComment, error) {
	var comments []*models.VlogComment
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("video_id = ?", videoID)
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to get vlog comments: %w", err)
	}
	return comments, nil
}

func (r *VlogCommentRepository) Update(ctx context.Context, comment *models.VlogComment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("failed to update vlog comment: %w", err)
	}
	return nil
}

func (r *VlogCommentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.VlogComment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete vlog comment: %w", err)
	}
	return nil
}
