package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxHandlerRetries is how many times a handler runs for one message before
// the message is treated as poison.
const maxHandlerRetries = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ErrPermanent marks a handler failure that retrying cannot fix, such as a
// payload that fails validation. Such messages go straight to the DLQ.
var ErrPermanent = errors.New("permanent handler failure")

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type deadLetterer interface {
	Publish(ctx context.Context, msg kafka.Message, cause error, consumerGroup string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// Consumer reads one topic in a consumer group, retries failing handlers
// and routes poison messages to an optional dead-letter producer.
type Consumer struct {
	reader    messageReader
	topic     string
	group     string
	handler   Handler
	dlq       deadLetterer
	logger    *slog.Logger
	backoff   func(attempt int) time.Duration
	closeOnce sync.Once
}

// NewConsumer creates a consumer. dlq may be nil, in which case poison
// messages are logged and committed.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq *DLQProducer, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	c := newConsumer(r, cfg.Topic, cfg.GroupID, handler, logger)
	if dlq != nil {
		c.dlq = dlq
	}
	return c
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		topic:   topic,
		group:   group,
		handler: handler,
		logger:  logger,
		backoff: func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
	}
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topic", c.topic), slog.String("group", c.group))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("topic", c.topic))
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		c.handle(ctx, msg)
	}
}

// handle runs the handler for one message and always commits it unless the
// context was canceled mid-retry.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ctx = extractTrace(ctx, &msg)

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
		c.commit(ctx, msg)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		if errors.Is(lastErr, ErrPermanent) {
			break
		}
		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	if lastErr != nil {
		ConsumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
		c.logger.ErrorContext(ctx, "handler failed, skipping poison message",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int64("offset", msg.Offset),
			slog.String("error", lastErr.Error()),
		)
		c.deadLetter(ctx, msg, lastErr)
	} else {
		ConsumerMessagesProcessed.WithLabelValues(msg.Topic, c.group).Inc()
	}
	c.commit(ctx, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "dead-letter publish failed", slog.String("error", err.Error()))
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "failed to commit message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// Close closes the reader. Safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
