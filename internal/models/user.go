package models

import (
	"time"
)

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:35;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Avatar    string    `json:"avatar"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Follow struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID  int64     `json:"follower_id" gorm:"not null;uniqueIndex:uq_follower_following"`
	FollowingID int64     `json:"following_id" gorm:"not null;uniqueIndex:uq_follower_following"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

type Block struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BlockerID int64     `json:"blocker_id" gorm:"not null;index;uniqueIndex:uq_blocker_blocked"`
	BlockedID int64     `json:"blocked_id" gorm:"not null;index;uniqueIndex:uq_blocker_blocked"`
	CreatedAt time.Time `json:"created_at"`

	Blocker User `json:"-" gorm:"foreignKey:BlockerID;constraint:OnDelete:CASCADE"`
	Blocked User `json:"-" gorm:"foreignKey:BlockedID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}

func (Block) TableName() string {
	return "blocks"
}
