package repository

import (
	"context"
	"fmt"

	"github.com/trend-social/trend-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository 维护冗余计数行。计数永远整体重算后覆盖写入，
// 不做增量加减，并发写入收敛到同一真实值。
type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

func (r *CounterRepository) RefreshPostLikeCounter(ctx context.Context, postID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LikePost{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": count}),
		}).Create(&models.LikeCounter{PostID: postID, Count: count}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to refresh like counter: %w", err)
	}
	return nil
}

func (r *CounterRepository) RefreshPostCommentCounter(ctx context.Context, postID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": count}),
		}).Create(&models.CommentCounter{PostID: postID, Count: count}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to refresh comment counter: %w", err)
	}
	return nil
}

func (r *CounterRepository) RefreshVideoLikeCounter(ctx context.Context, videoID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.VlogLike{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": count}),
		}).Create(&models.VlogLikeCounter{VideoID: videoID, Count: count}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to refresh vlog like counter: %w", err)
	}
	return nil
}

func (r *CounterRepository) RefreshVideoCommentCounter(ctx context.Context, videoID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.VlogComment{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": count}),
		}).Create(&models.VlogCommentCounter{VideoID: videoID, Count: count}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to refresh vlog comment counter: %w", err)
	}
	return nil
}

func (r *CounterRepository) GetPostLikeCount(ctx context.Context, postID int64) (int64, error) {
	var counter models.LikeCounter
	if err := r.db.WithContext(ctx).First(&counter, "post_id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get like counter: %w", err)
	}
	return counter.Count, nil
}

func (r *CounterRepository) GetPostCommentCount(ctx context.Context, postID int64) (int64, error) {
	var counter models.CommentCounter
	if err := r.db.WithContext(ctx).First(&counter, "post_id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get comment counter: %w", err)
	}
	return counter.Count, nil
}

func (r *CounterRepository) GetVideoLikeCount(ctx context.Context, videoID int64) (int64, error) {
	var counter models.VlogLikeCounter
	if err := r.db.WithContext(ctx).First(&counter, "video_id = ?", videoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get vlog like counter: %w", err)
	}
	return counter.Count, nil
}

func (r *CounterRepository) GetVideoCommentCount(ctx context.Context, videoID int64) (int64, error) {
	var counter models.VlogCommentCounter
	if err := r.db.WithContext(ctx).First(&counter, "video_id = ?", videoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get vlog comment counter: %w", err)
	}
	return counter.Count, nil
}
