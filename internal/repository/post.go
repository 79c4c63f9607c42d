package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListVisible 按创建时间倒序列出帖子，排除指定作者与指定帖子 ID。
// 并列时间以更大的 ID 优先，即后插入的排前面。
func (r *PostRepository) ListVisible(ctx context.Context, excludedUserIDs, excludedPostIDs []int64, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.WithContext(ctx).Preload("User")
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	if len(excludedPostIDs) > 0 {
		query = query.Where("id NOT IN ?", excludedPostIDs)
	}
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByUserID(ctx context.Context, userID int64, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by user: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
