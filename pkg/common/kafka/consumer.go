package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
)

// messageReader is the part of kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader       messageReader
	retryDelay   time.Duration
	maxRetryWait time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return newConsumer(reader)
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{reader: reader, retryDelay: 500 * time.Millisecond, maxRetryWait: 30 * time.Second}
}

// DecodeMessage parses an event envelope from a message value.
func DecodeMessage(message kafka.Message) (models.Event, error) {
	var event models.Event
	err := json.Unmarshal(message.Value, &event)
	return event, err
}

// Consume runs until ctx is cancelled or the reader is closed. A message is
// committed only after its handler succeeds; a failing handler is retried on
// the same message with backoff, so later offsets never commit past it.
// Undecodable messages are skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	fetchDelay := c.retryDelay
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			if !c.wait(ctx, fetchDelay) {
				return ctx.Err()
			}
			fetchDelay = c.next(fetchDelay)
			continue
		}
		fetchDelay = c.retryDelay

		event, err := DecodeMessage(message)
		if err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event")
			c.reader.CommitMessages(ctx, message)
			continue
		}

		if err := c.handle(ctx, handler, event); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Log.WithError(err).Error("Failed to commit message")
		}
	}
}

// handle returns only when the handler succeeded or ctx is done.
func (c *Consumer) handle(ctx context.Context, handler EventHandler, event models.Event) error {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"attempt":  attempt,
		}).Error("Failed to process event, retrying")
		if !c.wait(ctx, delay) {
			return ctx.Err()
		}
		delay = c.next(delay)
	}
}

func (c *Consumer) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Consumer) next(d time.Duration) time.Duration {
	d *= 2
	if d > c.maxRetryWait {
		d = c.maxRetryWait
	}
	return d
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
