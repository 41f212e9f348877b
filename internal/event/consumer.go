package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
	pkgkafka "github.com/maxcasase/BDPW-Back-End/pkg/kafka"
)

// TopicNotificationRequested carries notifications other services want a
// user to see.
var TopicNotificationRequested = pkgkafka.Topic("notification", "requested")

// idempotencyPrefix namespaces processed event ids in Redis.
const idempotencyPrefix = "mpt:review-service:events:"

// NotificationRequestedData is the payload of a notification.requested
// event. UserID may be a JSON number or string.
type NotificationRequestedData struct {
	UserID any    `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// NotificationCreator stores a notification for a raw user reference.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, rawUser any, title, body string) (*domain.Notification, error)
}

// ConsumerHandler turns incoming events into notifications.
type ConsumerHandler struct {
	notifications NotificationCreator
	logger        *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(notifications NotificationCreator, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// Handle processes one event. Payloads that can never succeed are marked
// pkgkafka.ErrPermanent so the consumer dead-letters them without retrying.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.EventType != TopicNotificationRequested {
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	var data NotificationRequestedData
	dec := json.NewDecoder(bytes.NewReader(event.Data))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("decode notification.requested: %v: %w", err, pkgkafka.ErrPermanent)
	}

	n, err := h.notifications.CreateNotification(ctx, data.UserID, data.Title, data.Body)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return fmt.Errorf("reject notification.requested %s: %v: %w", event.EventID, err, pkgkafka.ErrPermanent)
		}
		return fmt.Errorf("create notification from %s: %w", event.EventID, err)
	}

	h.logger.InfoContext(ctx, "notification created from event",
		slog.String("event_id", event.EventID),
		slog.String("notification_id", n.ID.Hex()),
	)
	return nil
}

// NewNotificationConsumer creates the notification.requested consumer.
// Redelivered events are skipped using Redis, or a process-local store when
// rdb is nil.
func NewNotificationConsumer(
	brokers []string,
	groupID string,
	handler *ConsumerHandler,
	rdb *redis.Client,
	ttl time.Duration,
	dlq *pkgkafka.DLQProducer,
	logger *slog.Logger,
) *pkgkafka.Consumer {
	var store pkgkafka.IdempotencyStore
	if rdb != nil {
		store = pkgkafka.NewRedisIdempotencyStore(rdb, idempotencyPrefix, ttl)
	} else {
		store = pkgkafka.NewMemoryIdempotencyStore(ttl)
	}
	cfg := pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    TopicNotificationRequested,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	return pkgkafka.NewConsumer(cfg, pkgkafka.IdempotentHandler(store, handler.Handle, logger), dlq, logger)
}
