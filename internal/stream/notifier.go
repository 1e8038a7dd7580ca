package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairlane/careerfair/internal/domain"
)

// NotifyChannel is the Postgres channel the review insert trigger publishes to.
const NotifyChannel = "review_inserted"

// notifyPayload mirrors the JSON the insert trigger builds. It deliberately
// has no owner field; the trigger never includes one, so owner identity
// cannot leak into the broadcast path.
type notifyPayload struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Comment     string    `json:"comment"`
	Rating      int       `json:"rating"`
	Major       string    `json:"major"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier holds one dedicated Postgres connection in LISTEN mode and feeds
// every received insert notification into the hub. It is the single logical
// watcher shared by all subscribers.
//
// The notifier is non-restartable by itself: any connection error is
// broadcast as a terminal hub failure and Run returns. The app layer decides
// whether and when to start a fresh one.
type Notifier struct {
	dsn    string
	hub    *Hub
	logger *slog.Logger
}

// NewNotifier creates a notifier that will connect with the given DSN.
func NewNotifier(dsn string, hub *Hub, logger *slog.Logger) *Notifier {
	return &Notifier{dsn: dsn, hub: hub, logger: logger}
}

// Run connects, LISTENs, and blocks delivering notifications until the
// context is canceled or the connection fails. Context cancellation is a
// clean shutdown; a connection failure fails the hub and returns the error.
func (n *Notifier) Run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, n.dsn)
	if err != nil {
		err = fmt.Errorf("notifier connect: %w", err)
		n.hub.Fail(err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		err = fmt.Errorf("notifier listen: %w", err)
		n.hub.Fail(err)
		return err
	}

	n.logger.Info("change notifier listening", slog.String("channel", NotifyChannel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			err = fmt.Errorf("notifier wait: %w", err)
			n.hub.Fail(err)
			return err
		}

		review, err := DecodePayload([]byte(notification.Payload))
		if err != nil {
			// A malformed payload is logged and skipped; it must not take
			// the whole stream down.
			n.logger.Error("failed to decode notification payload",
				slog.String("error", err.Error()),
				slog.String("payload", notification.Payload),
			)
			continue
		}

		n.hub.Publish(review)
	}
}

// DecodePayload parses a trigger notification payload into a review.
func DecodePayload(data []byte) (*domain.Review, error) {
	var p notifyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal notify payload: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("notify payload missing id")
	}

	return &domain.Review{
		ID:          p.ID,
		CompanyName: p.CompanyName,
		CompanyNorm: domain.NormalizeCompany(p.CompanyName),
		Comment:     p.Comment,
		Rating:      p.Rating,
		Major:       p.Major,
		CreatedAt:   p.CreatedAt,
	}, nil
}
