// Package events consumes moderation events and keeps the score cache from
// serving videos that were just taken down.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/timmy/vidfeed/internal/config"
	"github.com/timmy/vidfeed/internal/logger"
)

// Moderation event types.
const (
	TypeVideoRemoved  = "video.removed"
	TypeVideoFlagged  = "video.flagged"
	TypeVideoRestored = "video.restored"
)

// ModerationEvent is the payload published by the moderation service.
type ModerationEvent struct {
	Type    string `json:"type"`
	VideoID string `json:"video_id"`
}

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Invalidator drops cached feed state.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Consumer applies moderation events to the score cache.
type Consumer struct {
	reader     Reader
	cache      Invalidator
	retryDelay time.Duration
}

// NewReader builds a kafka-go group reader from configuration.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	brokers := cfg.Brokers
	if len(brokers) == 1 && strings.Contains(brokers[0], ",") {
		brokers = strings.Split(brokers[0], ",")
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        2 * time.Second,
		CommitInterval: time.Second,
	})
}

// NewConsumer creates a Consumer reading from r.
func NewConsumer(r Reader, cache Invalidator) *Consumer {
	return &Consumer{reader: r, cache: cache, retryDelay: time.Second}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
// The reader stays open; closing it is the caller's job.
func (c *Consumer) Run(ctx context.Context) error {
	ctx = logger.SetComponent(ctx, "moderation-consumer")
	logger.CtxInfo(ctx, "[Events] consumer started")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.CtxInfo(ctx, "[Events] consumer shutting down")
				return nil
			}
			logger.CtxWarn(ctx, "[Events] fetch error: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.handle(ctx, m)

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.CtxWarn(ctx, "[Events] commit error: %v", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var ev ModerationEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		logger.CtxWarn(ctx, "[Events] bad payload at offset %d: %v", m.Offset, err)
		return
	}
	switch ev.Type {
	case TypeVideoRemoved, TypeVideoFlagged, TypeVideoRestored:
		c.cache.Invalidate(ctx)
		logger.CtxInfo(ctx, "[Events] %s %s: score cache invalidated", ev.Type, ev.VideoID)
	default:
		logger.CtxDebug(ctx, "[Events] ignoring event type %q", ev.Type)
	}
}
