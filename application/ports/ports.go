package ports

import (
	"context"

	"titlechain/domain/config"
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/events"
	"titlechain/domain/interaction"
	"titlechain/pkg/observability"
)

// ActRepository is the read-only record store of notarial acts.
// This is a port in hexagonal architecture; the canvas never writes to it.
type ActRepository interface {
	// List returns every act in the store
	List(ctx context.Context) ([]entities.Act, error)

	// FindByNumber returns the act with the given numero_acte or a not-found error
	FindByNumber(ctx context.Context, numero string) (entities.Act, error)
}

// CanvasStore keeps live canvas sessions and serialises access to each one
type CanvasStore interface {
	// Add registers a new session under its canvas ID
	Add(ctx context.Context, session *interaction.Session) error

	// WithSession runs fn while holding the canvas's lock. Not-found if the
	// canvas does not exist or was evicted.
	WithSession(ctx context.Context, id aggregates.CanvasID, fn func(*interaction.Session) error) error

	// Delete drops a canvas
	Delete(ctx context.Context, id aggregates.CanvasID) error

	// List returns the IDs of live canvases
	List(ctx context.Context) []aggregates.CanvasID
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// LayoutSource supplies the domain configuration for new canvases. The
// value may change at runtime when the layout file is reloaded.
type LayoutSource interface {
	Current() *config.DomainConfig
}

// StaticLayout is a LayoutSource that never changes
type StaticLayout struct {
	Config *config.DomainConfig
}

// Current implements LayoutSource
func (s StaticLayout) Current() *config.DomainConfig {
	if s.Config == nil {
		return config.DefaultDomainConfig()
	}
	return s.Config.Clone()
}

// Metrics records operational counters and timings
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer reports the elapsed time when stopped
type Timer = observability.Timer
