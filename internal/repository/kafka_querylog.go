package repository

import (
	"context"
	"fmt"

	"FinChat/internal/domain/models"
)

const DefaultQueryLogTopic = "chat.query-logs"

type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaQueryLogPublisher emits each query log as a JSON event keyed by session.
type KafkaQueryLogPublisher struct {
	p     messagePublisher
	topic string
}

// NewKafkaQueryLogPublisher wraps a *kafka.Producer.
func NewKafkaQueryLogPublisher(p messagePublisher, topic string) *KafkaQueryLogPublisher {
	if topic == "" {
		topic = DefaultQueryLogTopic
	}
	return &KafkaQueryLogPublisher{p: p, topic: topic}
}

func (k *KafkaQueryLogPublisher) Publish(ctx context.Context, l *models.QueryLog) error {
	key := l.SessionID
	if key == "" {
		key = l.ID
	}
	if err := k.p.Publish(ctx, k.topic, []byte(key), l); err != nil {
		return fmt.Errorf("publish query log: %w", err)
	}
	return nil
}

func (k *KafkaQueryLogPublisher) Close() error { return k.p.Close() }
