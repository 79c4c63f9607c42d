package models

import (
	"time"
)

// Video 的互动表与 Post 一一对应，约束一致
type Video struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID    int64     `json:"author_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Video       string    `json:"video" gorm:"not null"`
	Duration    float64   `json:"duration"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type VlogComment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	VideoID   int64     `json:"video_id" gorm:"not null;index"`
	UserID    int64     `json:"user_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"size:1000;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	User  User  `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type VlogLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	VideoID   int64     `json:"video_id" gorm:"not null;uniqueIndex:uq_vlog_like_video_user"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:uq_vlog_like_video_user"`
	CreatedAt time.Time `json:"created_at"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	User  User  `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type VlogReaction struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	VideoID      int64     `json:"video_id" gorm:"not null;uniqueIndex:uq_vlog_reaction_video_user"`
	UserID       int64     `json:"user_id" gorm:"not null;uniqueIndex:uq_vlog_reaction_video_user"`
	ReactionType string    `json:"reaction_type" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	User  User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type VlogLikeCounter struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	VideoID int64 `json:"video_id" gorm:"not null;uniqueIndex"`
	Count   int64 `json:"count" gorm:"default:0"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

type VlogCommentCounter struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	VideoID int64 `json:"video_id" gorm:"not null;uniqueIndex"`
	Count   int64 `json:"count" gorm:"default:0"`

	Video Video `json:"-" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (Video) TableName() string {
	return "videos"
}

func (VlogComment) TableName() string {
	return "vlog_comments"
}

func (VlogLike) TableName() string {
	return "vlog_likes"
}

func (VlogReaction) TableName() string {
	return "vlog_reactions"
}

func (VlogLikeCounter) TableName() string {
	return "vlog_like_counters"
}

func (VlogCommentCounter) TableName() string {
	return "vlog_comment_counters"
}
