package ecs

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type options struct {
	logger   zerolog.Logger
	id       uuid.UUID
	registry *ComponentRegistry
	capacity int
}

// Option configures a World.
type Option func(*options)

// WithLogger sets the logger used for system lifecycle and failure events.
// Worlds log nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithID overrides the randomly generated world ID.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithRegistry makes the world's store record schemas in registry.
func WithRegistry(registry *ComponentRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithInitialCapacity preallocates entity slots for n entities.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}
