package ecs

import "github.com/rs/zerolog"

// SystemFunc is a behavior run once per tick. Systems keep private state
// across ticks through the hooks on Context rather than through fields.
// Returning an error aborts the rest of the tick.
type SystemFunc func(ctx *Context) error

// SystemID identifies a system registration.
type SystemID uint32

type systemEntry struct {
	id      SystemID
	name    string
	fn      SystemFunc
	hooks   hookState
	stats   systemStatsInternal
	logger  zerolog.Logger
	removed bool
}
