// Package queue publishes claim lifecycle events to RabbitMQ. Publishing
// is best effort: broker failures are logged and swallowed so the booking
// flow never blocks on messaging.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cinetix/booking-engine/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	url    string
	logger *slog.Logger
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:    url,
		logger: logger,
	}
}

func (p *Publisher) ClaimCreated(ctx context.Context, claim *domain.Claim) {
	event := ClaimCreatedEvent{
		ClaimRef:   claim.Ref.String(),
		ShowtimeID: claim.ShowtimeID,
		Row:        claim.Seat.Row,
		Column:     claim.Seat.Col,
		UserID:     claim.UserID,
		Status:     string(claim.Status),
		OccurredAt: time.Now().UTC(),
	}

	p.publish(ctx, QueueClaimCreated, event)
}

func (p *Publisher) SeatFreed(ctx context.Context, showtimeID int, seat domain.Coordinate) {
	event := SeatFreedEvent{
		ShowtimeID: showtimeID,
		Row:        seat.Row,
		Column:     seat.Col,
		OccurredAt: time.Now().UTC(),
	}

	p.publish(ctx, QueueSeatFreed, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("event publish skipped: broker unreachable", "queue", queueName, "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("event publish skipped: channel open failed", "queue", queueName, "error", err)
		return
	}
	defer ch.Close()

	// Durable queue so events survive broker restarts.
	_, err = ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		p.logger.Warn("event publish skipped: queue declare failed", "queue", queueName, "error", err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("event publish skipped: encoding failed", "queue", queueName, "error", err)
		return
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("event publish failed", "queue", queueName, "error", err)
	}
}

// NoopPublisher drops all events. Used when no broker URL is configured
// and in tests.
type NoopPublisher struct{}

func (NoopPublisher) ClaimCreated(context.Context, *domain.Claim)       {}
func (NoopPublisher) SeatFreed(context.Context, int, domain.Coordinate) {}
