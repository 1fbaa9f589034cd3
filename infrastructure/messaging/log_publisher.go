package messaging

import (
	"context"

	"go.uber.org/zap"

	"titlechain/domain/events"
)

// LogPublisher writes events to the log instead of an event bus. It is
// used when event fan-out is disabled and in local development.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new log publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements ports.EventPublisher
func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
	)
	return nil
}

// PublishBatch implements ports.EventPublisher
func (p *LogPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		_ = p.Publish(ctx, event)
	}
	return nil
}
