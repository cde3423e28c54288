package ecs

import (
	"iter"
	"time"

	"github.com/rs/zerolog"
)

// TickData describes the tick being executed.
type TickData struct {
	// Number starts at 1 for the first Step.
	Number uint64
	// Elapsed is the time handed to Step for this tick.
	Elapsed time.Duration
	// Total is the sum of Elapsed over every tick so far.
	Total time.Duration
}

// Context is handed to a system for one tick. It exposes entity mutation,
// query evaluation and the system's hooks. Mutations are applied to the store
// immediately and are visible to systems that run later in the same tick.
type Context struct {
	world  *World
	system *systemEntry
	tick   TickData
}

// Tick returns the data of the tick being executed.
func (c *Context) Tick() TickData {
	return c.tick
}

// System returns the name the running system was registered under.
func (c *Context) System() string {
	return c.system.name
}

// Store returns the world's entity store.
func (c *Context) Store() *Store {
	return c.world.store
}

// Commands returns the buffer of mutations applied after the last system of
// the tick has run.
func (c *Context) Commands() *Commands {
	return c.world.commands
}

// Logger returns a logger tagged with the system name and tick number.
func (c *Context) Logger() *zerolog.Logger {
	logger := c.system.logger.With().Uint64("tick", c.tick.Number).Logger()
	return &logger
}

// Create allocates an entity with the given components.
func (c *Context) Create(components ...Component) (Entity, error) {
	return c.world.store.Create(components...)
}

// Destroy removes an entity and all of its components.
func (c *Context) Destroy(e Entity) error {
	return c.world.store.Destroy(e)
}

// Attach adds a component to an entity.
func (c *Context) Attach(e Entity, component Component) error {
	return c.world.store.Attach(e, component)
}

// Detach removes a component from an entity.
func (c *Context) Detach(e Entity, schema *Schema) error {
	return c.world.store.Detach(e, schema)
}

// Get returns the live data of an entity's component.
func (c *Context) Get(e Entity, schema *Schema) (any, bool) {
	return c.world.store.Get(e, schema)
}

// Evaluate runs a query against the world's store.
func (c *Context) Evaluate(q *Query) (iter.Seq2[Entity, []any], error) {
	return c.world.store.Evaluate(q)
}

// Each calls fn for every entity matching q.
func (c *Context) Each(q *Query, fn func(Entity, []any) error) error {
	return c.world.store.Each(q, fn)
}

// Count returns the number of entities matching q.
func (c *Context) Count(q *Query) (int, error) {
	return c.world.store.Count(q)
}
