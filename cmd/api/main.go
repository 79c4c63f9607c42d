package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/handlers"
	"github.com/trend-social/trend-backend/internal/middleware"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/internal/services"
	"github.com/trend-social/trend-backend/pkg/cache"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	logger := logger.NewLogger()
	logger.Info("Starting Trend API server...")

	// 初始化数据库
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// 自动迁移数据库表
	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// 初始化Redis缓存
	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	// 初始化Kafka生产者
	userEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.UserEvents)
	defer userEventsProducer.Close()

	feedEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.FeedEvents)
	defer feedEventsProducer.Close()

	thumbnailJobsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ThumbnailJobs)
	defer thumbnailJobsProducer.Close()

	// 初始化仓库
	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	blockRepo := repository.NewBlockRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	reactionRepo := repository.NewReactionRepository(db.DB)
	hiddenRepo := repository.NewHiddenPostRepository(db.DB)
	counterRepo := repository.NewCounterRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	vlogLikeRepo := repository.NewVlogLikeRepository(db.DB)
	vlogReactRepo := repository.NewVlogReactionRepository(db.DB)
	vlogCommentRepo := repository.NewVlogCommentRepository(db.DB)

	// 初始化服务
	userService := services.NewUserService(userRepo, userEventsProducer, logger)
	relationshipService := services.NewRelationshipService(blockRepo, followRepo, userRepo, userEventsProducer, logger)
	visibilityService := services.NewVisibilityService(blockRepo, hiddenRepo)
	feedService := services.NewFeedService(postRepo, likeRepo, reactionRepo, counterRepo, hiddenRepo, visibilityService, feedEventsProducer, redisClient, &cfg.Feed, logger)
	likeService := services.NewLikeService(postRepo, likeRepo, counterRepo, visibilityService, feedEventsProducer, redisClient, logger)
	commentService := services.NewCommentService(postRepo, commentRepo, counterRepo, visibilityService, feedEventsProducer, redisClient, logger)
	reactionService := services.NewReactionService(postRepo, reactionRepo, feedEventsProducer, logger)
	videoService := services.NewVideoService(videoRepo, vlogLikeRepo, vlogReactRepo, vlogCommentRepo, counterRepo, visibilityService, feedEventsProducer, thumbnailJobsProducer, &cfg.Feed, logger)

	// 初始化处理器
	userHandler := handlers.NewUserHandler(userService, relationshipService, &cfg.JWT, cfg.Feed.PageSize)
	postHandler := handlers.NewPostHandler(feedService, likeService, commentService, reactionService, cfg.Feed.PageSize)
	videoHandler := handlers.NewVideoHandler(videoService, cfg.Feed.PageSize)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// 添加CORS中间件
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWT.Secret}

	// API路由
	api := router.Group("/api/v1")
	{
		// 用户相关路由
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/:id", userHandler.GetProfile)
			users.GET("/:id/followers", userHandler.GetFollowers)
			users.GET("/:id/following", userHandler.GetFollowing)
		}

		// 帖子和视频的读取路由对匿名开放，带token则按身份过滤
		public := api.Group("")
		public.Use(middleware.NewOptionalJWTAuth(jwtConfig))
		{
			public.GET("/posts", postHandler.ListPosts)
			public.GET("/posts/:id", postHandler.GetPost)
			public.GET("/posts/:id/comments", postHandler.GetPostComments)
			public.GET("/posts/:id/likes", postHandler.GetLikers)
			public.GET("/posts/:id/reactions", postHandler.ListReactions)

			public.GET("/videos", videoHandler.ListVideos)
			public.GET("/videos/:id", videoHandler.GetVideo)
			public.GET("/videos/:id/comments", videoHandler.GetVideoComments)
			public.GET("/videos/:id/likes", videoHandler.GetLikers)
		}

		// 需要认证的路由
		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(jwtConfig))
		{
			// 关系相关
			protected.POST("/users/:id/block", userHandler.Block)
			protected.DELETE("/users/:id/block", userHandler.Unblock)
			protected.POST("/users/:id/follow", userHandler.Follow)
			protected.DELETE("/users/:id/follow", userHandler.Unfollow)

			// 帖子相关
			protected.POST("/posts", postHandler.CreatePost)
			protected.PUT("/posts/:id", postHandler.UpdatePost)
			protected.DELETE("/posts/:id", postHandler.DeletePost)
			protected.POST("/posts/:id/like", postHandler.ToggleLike)
			protected.POST("/posts/:id/reactions", postHandler.ToggleReaction)
			protected.POST("/posts/:id/comments", postHandler.CreateComment)
			protected.PUT("/comments/:id", postHandler.UpdateComment)
			protected.DELETE("/comments/:id", postHandler.DeleteComment)
			protected.POST("/posts/:id/hide", postHandler.HidePost)
			protected.DELETE("/posts/:id/hide", postHandler.UnhidePost)

			// 视频相关
			protected.POST("/videos", videoHandler.CreateVideo)
			protected.PUT("/videos/:id", videoHandler.UpdateVideo)
			protected.DELETE("/videos/:id", videoHandler.DeleteVideo)
			protected.POST("/videos/:id/like", videoHandler.ToggleLike)
			protected.POST("/videos/:id/reactions", videoHandler.ToggleReaction)
			protected.POST("/videos/:id/comments", videoHandler.CreateComment)
			protected.PUT("/video-comments/:id", videoHandler.UpdateComment)
			protected.DELETE("/video-comments/:id", videoHandler.DeleteComment)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	// 创建必要的目录
	dirs := []string{"logs", "uploads", "configs"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	// 创建默认配置文件（如果不存在）
	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "trenduser"
  password: "trendpass"
  dbname: "trend"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    user_events: "user-events"
    feed_events: "feed-events"
    thumbnail_jobs: "thumbnail-jobs"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

feed:
  page_size: 10
  top_reactions: 3
  cache_ttl: 1m

media:
  max_video_size: 209715200  # 200MB
  max_video_duration: 15
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
