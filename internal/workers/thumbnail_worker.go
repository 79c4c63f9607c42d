package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trend-social/trend-backend/internal/repository"
	"github.com/trend-social/trend-backend/pkg/logger"
	"github.com/trend-social/trend-backend/pkg/queue"
)

// ThumbnailWorker 消费缩略图任务，为刚入库的视频补上 thumbnail 字段。
// 任务在视频行提交之后才入队，这里不会读到不存在的行。
type ThumbnailWorker struct {
	videoRepo *repository.VideoRepository
	consumer  *queue.KafkaConsumer
	logger    *logger.Logger
}

func NewThumbnailWorker(videoRepo *repository.VideoRepository, consumer *queue.KafkaConsumer, logger *logger.Logger) *ThumbnailWorker {
	return &ThumbnailWorker{
		videoRepo: videoRepo,
		consumer:  consumer,
		logger:    logger,
	}
}

type eventEnvelope struct {
	Type queue.EventType `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (w *ThumbnailWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting thumbnail worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		var envelope eventEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		if envelope.Type != queue.EventVideoCreated {
			w.logger.WithField("event_type", envelope.Type).Warn("Unknown event type")
			return nil
		}

		var job queue.ThumbnailJobData
		if err := json.Unmarshal(envelope.Data, &job); err != nil {
			return fmt.Errorf("failed to unmarshal thumbnail job: %w", err)
		}

		return w.handleThumbnailJob(ctx, job)
	})
}

func (w *ThumbnailWorker) handleThumbnailJob(ctx context.Context, job queue.ThumbnailJobData) error {
	w.logger.WithFields(map[string]interface{}{
		"video_id": job.VideoID,
		"video":    job.Video,
	}).Info("Handling thumbnail job")

	video, err := w.videoRepo.GetByID(ctx, job.VideoID)
	if err != nil {
		return fmt.Errorf("failed to get video: %w", err)
	}
	if video == nil {
		// 视频在任务处理前被删除，任务直接作废
		w.logger.WithField("video_id", job.VideoID).Warn("Video deleted before thumbnail job ran")
		return nil
	}

	thumbnail := thumbnailRef(job.Video)
	if err := w.videoRepo.SetThumbnail(ctx, job.VideoID, thumbnail); err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"video_id":  job.VideoID,
		"thumbnail": thumbnail,
	}).Info("Thumbnail generated successfully")

	return nil
}

// thumbnailRef 缩略图引用由视频引用派生，同名换后缀
func thumbnailRef(video string) string {
	ext := filepath.Ext(video)
	base := strings.TrimSuffix(video, ext)
	return base + "_thumb.jpg"
}

func (w *ThumbnailWorker) Stop() error {
	w.logger.Info("Stopping thumbnail worker...")
	return w.consumer.Close()
}
