package models

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"size:1000"`
	Image     string    `json:"image" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;index"`
	UserID    int64     `json:"user_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"size:1000;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type LikePost struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;uniqueIndex:uq_like_post_user"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:uq_like_post_user"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// 单一反应模型：每个用户对每个帖子最多持有一种反应
type Reaction struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID       int64     `json:"post_id" gorm:"not null;uniqueIndex:uq_reaction_post_user"`
	UserID       int64     `json:"user_id" gorm:"not null;uniqueIndex:uq_reaction_post_user"`
	ReactionType string    `json:"reaction_type" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type HiddenPost struct {
	ID     int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID int64 `json:"user_id" gorm:"not null;uniqueIndex:uq_hidden_user_post"`
	PostID int64 `json:"post_id" gorm:"not null;uniqueIndex:uq_hidden_user_post"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// 冗余计数，由引擎在每次互动变更后整体重算，仅作为读缓存
type LikeCounter struct {
	ID     int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID int64 `json:"post_id" gorm:"not null;uniqueIndex"`
	Count  int64 `json:"count" gorm:"default:0"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

type CommentCounter struct {
	ID     int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID int64 `json:"post_id" gorm:"not null;uniqueIndex"`
	Count  int64 `json:"count" gorm:"default:0"`

	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

const (
	ReactionLove       = "love"
	ReactionLike       = "like"
	ReactionHaha       = "haha"
	ReactionWow        = "wow"
	ReactionCrying     = "crying"
	ReactionDisgusting = "disgusting"
)

// ReactionTypes 顺序即并列计数时的排序优先级
var ReactionTypes = []string{
	ReactionLove,
	ReactionLike,
	ReactionHaha,
	ReactionWow,
	ReactionCrying,
	ReactionDisgusting,
}

func IsValidReactionType(t string) bool {
	for _, rt := range ReactionTypes {
		if rt == t {
			return true
		}
	}
	return false
}

func (Post) TableName() string {
	return "posts"
}

func (Comment) TableName() string {
	return "comments"
}

func (LikePost) TableName() string {
	return "like_posts"
}

func (Reaction) TableName() string {
	return "reactions"
}

func (HiddenPost) TableName() string {
	return "hidden_posts"
}

func (LikeCounter) TableName() string {
	return "like_counters"
}

func (CommentCounter) TableName() string {
	return "comment_counters"
}
