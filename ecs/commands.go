package ecs

import "errors"

// Commands provides a buffer for deferred store operations that are executed
// after the last system of a tick. Systems use it when they must not change
// composition while iterating a query.
type Commands struct {
	creates  []createCommand
	destroys []Entity
	attaches []attachCommand
	detaches []detachCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type createCommand struct {
	components []Component
}

type attachCommand struct {
	entity    Entity
	component Component
}

type detachCommand struct {
	entity Entity
	schema *Schema
}

// Defer queues a function to run at flush time, after every structural
// command has been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Create queues an entity creation with the given components.
func (c *Commands) Create(components ...Component) {
	c.creates = append(c.creates, createCommand{components: components})
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// Attach queues a component attachment.
func (c *Commands) Attach(e Entity, component Component) {
	c.attaches = append(c.attaches, attachCommand{entity: e, component: component})
}

// Detach queues a component removal.
func (c *Commands) Detach(e Entity, schema *Schema) {
	c.detaches = append(c.detaches, detachCommand{entity: e, schema: schema})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.creates) + len(c.destroys) + len(c.attaches) + len(c.detaches) + len(c.defers)
}

// Flush applies every queued command to store and resets the buffer.
// Destroys run first, then detaches, attaches and creates, then deferred
// functions. Commands on entities destroyed by this flush are skipped. Every
// command is attempted; failures are joined into the returned error.
//
// Commands queued by deferred functions land in the emptied buffer and are
// applied by the next flush.
func (c *Commands) Flush(store *Store) error {
	pending := *c
	*c = Commands{}
	return pending.apply(store)
}

func (c *Commands) apply(store *Store) error {
	var errs []error
	destroyed := make(map[Entity]struct{}, len(c.destroys))

	for _, e := range c.destroys {
		if _, done := destroyed[e]; done {
			continue
		}
		if err := store.Destroy(e); err != nil {
			errs = append(errs, err)
			continue
		}
		destroyed[e] = struct{}{}
	}

	for _, cmd := range c.detaches {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		if err := store.Detach(cmd.entity, cmd.schema); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.attaches {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		if err := store.Attach(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.creates {
		if _, err := store.Create(cmd.components...); err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	return errors.Join(errs...)
}

func (c *Commands) reset() {
	c.creates = c.creates[:0]
	c.destroys = c.destroys[:0]
	c.attaches = c.attaches[:0]
	c.detaches = c.detaches[:0]
	c.defers = c.defers[:0]
}
