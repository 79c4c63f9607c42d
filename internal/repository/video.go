package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).
		Preload("Author").
		First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) List(ctx context.Context, excludedUserIDs []int64, offset, limit int) ([]*models.Video, error) {
	var videos []*models.Video
	query := r.db.WithContext(ctx).Preload("Author")
	if len(excludedUserIDs) > 0 {
		query = query.Where("author_id NOT IN ?", excludedUserIDs)
	}
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Video{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

func (r *VideoRepository) SetThumbnail(ctx context.Context, id int64, thumbnail string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		Update("thumbnail", thumbnail).Error; err != nil {
		return fmt.Errorf("failed to set video thumbnail: %w", err)
	}
	return nil
}
