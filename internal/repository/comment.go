package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListVisibleByPost 排除被拉黑/拉黑查看者的评论作者
func (r *CommentRepository) ListVisibleByPost(ctx context.Context, postID int64, excludedUserIDs []int64, offset, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID)
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to get comments by post: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) CountByPostID(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
