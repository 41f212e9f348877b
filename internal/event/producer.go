package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	pkgkafka "github.com/maxcasase/BDPW-Back-End/pkg/kafka"
)

// Kafka topics for review domain events.
var (
	TopicReviewCreated = pkgkafka.Topic("review", "created")
	TopicReviewDeleted = pkgkafka.Topic("review", "deleted")
)

// AggregateTypeReview is the aggregate type of review events.
const AggregateTypeReview = "review"

// SourceReviewService identifies events originating from this service.
const SourceReviewService = "review-service"

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID      string       `json:"id"`
	UserID  identity.Key `json:"user_id"`
	AlbumID identity.Key `json:"album_id"`
	Rating  int          `json:"rating"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID     string       `json:"id"`
	UserID identity.Key `json:"user_id"`
}

// Publisher writes an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review domain events. A Producer without a Publisher
// drops events silently.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a review event producer. kafka may be nil when events
// are disabled.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	if p.kafka == nil {
		return nil
	}

	data := ReviewCreatedData{
		ID:      review.ID.Hex(),
		UserID:  review.UserKey,
		AlbumID: review.ItemKey,
		Rating:  review.Rating,
	}
	return p.publish(ctx, TopicReviewCreated, data.ID, data)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, reviewID string, user identity.Key) error {
	if p.kafka == nil {
		return nil
	}
	return p.publish(ctx, TopicReviewDeleted, reviewID, ReviewDeletedData{ID: reviewID, UserID: user})
}

func (p *Producer) publish(ctx context.Context, topic, reviewID string, data any) error {
	event, err := pkgkafka.NewEvent(ctx, topic, reviewID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", reviewID),
	)
	return nil
}
