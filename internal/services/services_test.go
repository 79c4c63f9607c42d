package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/models"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

// capturePublisher 把事件留在内存里供断言
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, value interface{}) error {
	event, ok := value.(queue.Event)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *capturePublisher) byType(eventType queue.EventType) []queue.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []queue.Event
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type testEnv struct {
	db           *repository.Database
	userRepo     *repository.UserRepository
	postRepo     *repository.PostRepository
	likeRepo     *repository.LikeRepository
	counterRepo  *repository.CounterRepository
	hiddenRepo   *repository.HiddenPostRepository
	events       *capturePublisher
	jobs         *capturePublisher
	user         *UserService
	relationship *RelationshipService
	feed         *FeedService
	like         *LikeService
	comment      *CommentService
	reaction     *ReactionService
	video        *VideoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svcdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	db := &repository.Database{DB: gormDB}
	require.NoError(t, db.AutoMigrate())

	userRepo := repository.NewUserRepository(gormDB)
	followRepo := repository.NewFollowRepository(gormDB)
	blockRepo := repository.NewBlockRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)
	likeRepo := repository.NewLikeRepository(gormDB)
	reactionRepo := repository.NewReactionRepository(gormDB)
	hiddenRepo := repository.NewHiddenPostRepository(gormDB)
	counterRepo := repository.NewCounterRepository(gormDB)
	videoRepo := repository.NewVideoRepository(gormDB)
	vlogLikeRepo := repository.NewVlogLikeRepository(gormDB)
	vlogReactRepo := repository.NewVlogReactionRepository(gormDB)
	vlogCommentRepo := repository.NewVlogCommentRepository(gormDB)

	events := &capturePublisher{}
	jobs := &capturePublisher{}
	log := logger.NewLogger()
	feedConfig := &config.FeedConfig{PageSize: 10, TopReactions: 3, CacheTTL: time.Minute}

	visibility := NewVisibilityService(blockRepo, hiddenRepo)

	return &testEnv{
		db:           db,
		userRepo:     userRepo,
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		counterRepo:  counterRepo,
		hiddenRepo:   hiddenRepo,
		events:       events,
		jobs:         jobs,
		user:         NewUserService(userRepo, events, log),
		relationship: NewRelationshipService(blockRepo, followRepo, userRepo, events, log),
		feed:         NewFeedService(postRepo, likeRepo, reactionRepo, counterRepo, hiddenRepo, visibility, events, nil, feedConfig, log),
		like:         NewLikeService(postRepo, likeRepo, counterRepo, visibility, events, nil, log),
		comment:      NewCommentService(postRepo, commentRepo, counterRepo, visibility, events, nil, log),
		reaction:     NewReactionService(postRepo, reactionRepo, events, log),
		video:        NewVideoService(videoRepo, vlogLikeRepo, vlogReactRepo, vlogCommentRepo, counterRepo, visibility, events, jobs, feedConfig, log),
	}
}

// rivalInsert 在下一次对指定表落库前，借同一事务抢先插入一条冲突行，
// 复现两个请求同时通过存在性检查、后写者撞唯一索引的交错
func rivalInsert(t *testing.T, db *gorm.DB, table, insertSQL string, args ...interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("rival_insert_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(insertSQL, args...).Error)
	})
	require.NoError(t, err)
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, e.db.DB.Create(user).Error)
	return user
}

func (e *testEnv) createPost(t *testing.T, userID int64, content string) *models.Post {
	t.Helper()
	post, err := e.feed.CreatePost(context.Background(), userID, &CreatePostRequest{
		Content: content,
		Image:   "posts/" + content + ".jpg",
	})
	require.NoError(t, err)
	return post
}
