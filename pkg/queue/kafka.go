package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			msg := Message{
				Key:   string(message.Key),
				Value: message.Value,
				Topic: message.Topic,
			}

			if err := handler(msg); err != nil {
				fmt.Printf("Failed to handle message: %v\n", err)
				continue
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type Message struct {
	Key   string
	Value []byte
	Topic string
}

type EventType string

const (
	EventUserCreated     EventType = "user_created"
	EventBlockCreated    EventType = "block_created"
	EventBlockDeleted    EventType = "block_deleted"
	EventPostCreated     EventType = "post_created"
	EventPostDeleted     EventType = "post_deleted"
	EventLikeToggled     EventType = "like_toggled"
	EventReactionToggled EventType = "reaction_toggled"
	EventCommentCreated  EventType = "comment_created"
	EventCommentDeleted  EventType = "comment_deleted"
	EventVideoCreated    EventType = "video_created"
)

type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type PostEventData struct {
	PostID  int64  `json:"post_id"`
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

type BlockEventData struct {
	BlockerID int64 `json:"blocker_id"`
	BlockedID int64 `json:"blocked_id"`
}

type LikeEventData struct {
	UserID int64 `json:"user_id"`
	PostID int64 `json:"post_id"`
	Liked  bool  `json:"liked"`
}

type ReactionEventData struct {
	UserID       int64  `json:"user_id"`
	PostID       int64  `json:"post_id"`
	ReactionType string `json:"reaction_type"`
	State        string `json:"state"`
}

type CommentEventData struct {
	CommentID int64  `json:"comment_id"`
	UserID    int64  `json:"user_id"`
	PostID    int64  `json:"post_id"`
	Content   string `json:"content"`
}

// ThumbnailJobData 仅在视频行提交之后入队，worker 据此生成缩略图
type ThumbnailJobData struct {
	VideoID int64  `json:"video_id"`
	Video   string `json:"video"`
}
