package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairlane/careerfair/internal/domain"
	pkgkafka "github.com/fairlane/careerfair/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewCreated = "careerfair.review.created"
	TopicReviewUpdated = "careerfair.review.updated"
	TopicReviewDeleted = "careerfair.review.deleted"
)

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from this service.
const SourceCareerfair = "careerfair-api"

// ReviewEventData is the payload for review.created and review.updated
// events. Owner identity never leaves the database through this path.
type ReviewEventData struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Comment     string    `json:"comment"`
	Rating      int       `json:"rating"`
	Major       string    `json:"major,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func reviewData(review *domain.Review) ReviewEventData {
	return ReviewEventData{
		ID:          review.ID,
		CompanyName: review.CompanyName,
		Comment:     review.Comment,
		Rating:      review.Rating,
		Major:       review.Major,
		CreatedAt:   review.CreatedAt,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review.ID, reviewData(review))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review.ID, reviewData(review))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicReviewDeleted, id, ReviewDeletedData{ID: id})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeReview, SourceCareerfair, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", aggregateID),
	)

	return nil
}
