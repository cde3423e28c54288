package ecs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// World owns a store and the ordered list of systems that run against it.
// A world is single-threaded: Step must not be called concurrently.
type World struct {
	id       uuid.UUID
	store    *Store
	systems  []*systemEntry
	lastID   SystemID
	commands *Commands
	logger   zerolog.Logger

	tick  uint64
	total time.Duration
}

// NewWorld creates a world with an empty store.
func NewWorld(opts ...Option) *World {
	cfg := options{
		logger: zerolog.Nop(),
		id:     uuid.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := NewStore(cfg.registry)
	store.reserve(cfg.capacity)

	return &World{
		id:       cfg.id,
		store:    store,
		commands: newCommands(),
		logger:   cfg.logger.With().Str("world_id", cfg.id.String()).Logger(),
	}
}

// ID returns the world's identifier, attached to every log line as world_id.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Store returns the world's entity store.
func (w *World) Store() *Store {
	return w.store
}

// Tick returns the number of ticks executed so far.
func (w *World) Tick() uint64 {
	return w.tick
}

// AddSystem appends a system to the end of the execution order. A system added
// while a tick is running first runs on the next tick.
func (w *World) AddSystem(name string, fn SystemFunc) SystemID {
	if fn == nil {
		panic("AddSystem called with a nil system")
	}

	w.lastID++
	entry := &systemEntry{
		id:     w.lastID,
		name:   name,
		fn:     fn,
		logger: w.logger.With().Str("system", name).Logger(),
		stats: systemStatsInternal{
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	w.systems = append(w.systems, entry)

	w.logger.Debug().Str("system", name).Uint32("system_id", uint32(entry.id)).Msg("system registered")
	return entry.id
}

// RemoveSystem unregisters a system and discards its hook state.
func (w *World) RemoveSystem(id SystemID) error {
	for idx, entry := range w.systems {
		if entry.id != id {
			continue
		}

		entry.removed = true
		entry.hooks = hookState{}

		// copy so a running Step keeps iterating its own snapshot
		remaining := make([]*systemEntry, 0, len(w.systems)-1)
		remaining = append(remaining, w.systems[:idx]...)
		remaining = append(remaining, w.systems[idx+1:]...)
		w.systems = remaining

		w.logger.Debug().Str("system", entry.name).Uint32("system_id", uint32(id)).Msg("system removed")
		return nil
	}
	return eris.Wrapf(ErrUnknownSystem, "system id %d", id)
}

// Systems returns the names of the registered systems in execution order.
func (w *World) Systems() []string {
	names := make([]string, len(w.systems))
	for i, entry := range w.systems {
		names[i] = entry.name
	}
	return names
}

// Step executes every registered system once, in registration order, then
// flushes the command buffer. The first system error aborts the tick: later
// systems do not run, queued commands are discarded and the error is returned.
func (w *World) Step(elapsed time.Duration) error {
	w.tick++
	w.total += elapsed
	tick := TickData{
		Number:  w.tick,
		Elapsed: elapsed,
		Total:   w.total,
	}

	for _, entry := range w.systems {
		if entry.removed {
			continue
		}

		ctx := &Context{world: w, system: entry, tick: tick}
		entry.hooks.cursor = 0

		start := time.Now()
		err := entry.fn(ctx)
		entry.stats.record(time.Since(start))

		if err != nil {
			w.commands.reset()
			w.logger.Error().Err(err).Str("system", entry.name).Uint64("tick", tick.Number).Msg("system failed")
			return eris.Wrapf(err, "system %q", entry.name)
		}
	}

	if err := w.commands.Flush(w.store); err != nil {
		w.logger.Error().Err(err).Uint64("tick", tick.Number).Msg("command flush failed")
		return eris.Wrap(err, "flush commands")
	}
	return nil
}

// Run steps the world at the given interval until the context is cancelled,
// passing the wall-clock time since the previous tick. It returns nil on
// cancellation and the step error otherwise.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(lastTime)
			lastTime = now
			if err := w.Step(elapsed); err != nil {
				return err
			}
		}
	}
}
