package services

import (
	"context"
	"errors"
	"time"
)

// 组件边界的错误分类。存储层的约束冲突在这一层统一转义，
// 不把底层驱动错误暴露给调用方。
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AnonymousID 表示未认证的查看者
const AnonymousID int64 = 0

// EventPublisher 由 pkg/queue 的 KafkaProducer 实现
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// FeedCache 由 pkg/cache 的 RedisClient 实现
type FeedCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
