package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairlane/careerfair/internal/domain"
	"github.com/fairlane/careerfair/internal/engine"
	pkgkafka "github.com/fairlane/careerfair/pkg/kafka"
)

// Consumer keeps the search index in sync with review domain events.
type Consumer struct {
	engine engine.SearchEngine
	logger *slog.Logger
}

// NewConsumer creates a new event consumer backed by the given search engine.
func NewConsumer(engine engine.SearchEngine, logger *slog.Logger) *Consumer {
	return &Consumer{
		engine: engine,
		logger: logger,
	}
}

// Handle dispatches an event to the appropriate handler based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicReviewCreated:
		return c.handleReviewUpserted(ctx, event)
	case TopicReviewUpdated:
		return c.handleReviewUpserted(ctx, event)
	case TopicReviewDeleted:
		return c.handleReviewDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type, skipping",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleReviewUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data ReviewEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal review event data: %w", err)
	}

	review := &domain.Review{
		ID:          data.ID,
		CompanyName: data.CompanyName,
		CompanyNorm: domain.NormalizeCompany(data.CompanyName),
		Comment:     data.Comment,
		Rating:      data.Rating,
		Major:       data.Major,
		CreatedAt:   data.CreatedAt,
	}

	if err := c.engine.Index(ctx, review); err != nil {
		return fmt.Errorf("index review %s: %w", review.ID, err)
	}

	c.logger.DebugContext(ctx, "indexed review from event",
		slog.String("review_id", review.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

func (c *Consumer) handleReviewDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ReviewDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal review deleted data: %w", err)
	}

	if err := c.engine.Delete(ctx, data.ID); err != nil {
		return fmt.Errorf("delete review %s from index: %w", data.ID, err)
	}

	c.logger.DebugContext(ctx, "removed review from index",
		slog.String("review_id", data.ID),
	)

	return nil
}
