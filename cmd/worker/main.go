package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trend-social/trend-backend/internal/config"
	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/internal/workers"
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
	logger.Info("Starting Trend Worker...")

	// 初始化数据库
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// 初始化Kafka消费者
	thumbnailJobsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ThumbnailJobs, "thumbnail-worker-group")
	defer thumbnailJobsConsumer.Close()

	// 初始化仓库
	videoRepo := repository.NewVideoRepository(db.DB)

	// 初始化工作处理器
	thumbnailWorker := workers.NewThumbnailWorker(videoRepo, thumbnailJobsConsumer, logger)

	ctx := context.Background()
	go func() {
		if err := thumbnailWorker.Start(ctx); err != nil {
			logger.WithError(err).Error("Thumbnail worker stopped with error")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	_, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := thumbnailWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop thumbnail worker")
	}

	logger.Info("Worker exited")
}
