package ports

import (
	"context"

	"profnet/domain/core/entities"
	"profnet/domain/events"
)

// ProfessionalRepository is the read/write port for directory records.
// List and Search return records in a stable store order.
type ProfessionalRepository interface {
	// List returns up to limit records after skipping skip.
	List(ctx context.Context, limit, skip int) ([]*entities.Professional, error)

	// All returns the whole roster.
	All(ctx context.Context) ([]*entities.Professional, error)

	// GetByID returns a not-found AppError when the record does not exist.
	GetByID(ctx context.Context, id string) (*entities.Professional, error)

	// Search matches q case-insensitively against name, affiliation, title
	// and research interests.
	Search(ctx context.Context, q string, limit int) ([]*entities.Professional, error)

	// Save creates or replaces a record.
	Save(ctx context.Context, p *entities.Professional) error
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
