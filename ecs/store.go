package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// Store owns every entity and the component references attached to it.
// Composition changes take effect immediately.
type Store struct {
	registry *ComponentRegistry

	slots []entitySlot
	free  []uint32
	live  int

	archetypes []*Archetype
	byHash     *intmap.Map[uint64, *Archetype]

	queries *intmap.Map[uint32, *queryIndex]
}

// NewStore creates an empty store. A nil registry gets a fresh one.
func NewStore(registry *ComponentRegistry) *Store {
	if registry == nil {
		registry = NewComponentRegistry()
	}

	s := &Store{
		registry: registry,
		byHash:   intmap.New[uint64, *Archetype](64),
		queries:  intmap.New[uint32, *queryIndex](16),
	}
	// the empty archetype is always archetype 0
	s.archetypeFor(nil)
	return s
}

// Registry returns the store's component registry.
func (s *Store) Registry() *ComponentRegistry {
	return s.registry
}

// Create allocates an entity and attaches the given components. No entity is
// allocated when a component is invalid or two components share a schema.
func (s *Store) Create(components ...Component) (Entity, error) {
	schemas := make([]*Schema, 0, len(components))
	byID := make(map[SchemaID]cell, len(components))

	for _, c := range components {
		data, err := c.materialize()
		if err != nil {
			return 0, err
		}
		if _, dup := byID[c.schema.id]; dup {
			return 0, eris.Wrapf(ErrDuplicateComponent, "create: %s supplied twice", c.schema.name)
		}
		byID[c.schema.id] = cell{data: data, foreign: c.foreign}
		schemas = append(schemas, c.schema)
	}

	sortSchemas(schemas)
	archetype := s.archetypeFor(schemas)

	data := make([]cell, len(schemas))
	for idx, schema := range schemas {
		data[idx] = byID[schema.id]
	}

	e := s.allocate()
	slot := &s.slots[e.Index()]
	slot.archetype = archetype
	slot.row = archetype.spawn(e, data)
	return e, nil
}

func (s *Store) reserve(n int) {
	if n > 0 {
		s.slots = slices.Grow(s.slots, n)
	}
}

func (s *Store) allocate() Entity {
	s.live++

	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		slot := &s.slots[index]
		slot.alive = true
		return NewEntity(index, slot.generation)
	}

	index := uint32(len(s.slots))
	s.slots = append(s.slots, entitySlot{generation: 1, alive: true})
	return NewEntity(index, 1)
}

// Destroy detaches every component and recycles the entity's slot. Handles to
// the destroyed entity become stale.
func (s *Store) Destroy(e Entity) error {
	slot, err := s.resolve(e)
	if err != nil {
		return eris.Wrapf(err, "destroy %s", e)
	}

	slot.archetype.remove(slot.row)
	slot.archetype = nil
	slot.row = -1
	slot.alive = false
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}

	s.free = append(s.free, e.Index())
	s.live--
	return nil
}

// Attach adds a single component to a live entity.
func (s *Store) Attach(e Entity, c Component) error {
	slot, err := s.resolve(e)
	if err != nil {
		return eris.Wrapf(err, "attach to %s", e)
	}
	if c.schema == nil {
		return eris.Wrap(ErrSchemaMismatch, "attach: component has no schema")
	}
	if slot.archetype.HasSchema(c.schema.id) {
		return eris.Wrapf(ErrDuplicateComponent, "attach %s to %s", c.schema.name, e)
	}

	data, err := c.materialize()
	if err != nil {
		return err
	}

	target := s.withSchema(slot.archetype, c.schema)
	s.move(e, slot, target, c.schema.id, &cell{data: data, foreign: c.foreign})
	return nil
}

// Detach removes the component of schema from a live entity. An entity left
// without components stays alive.
func (s *Store) Detach(e Entity, schema *Schema) error {
	slot, err := s.resolve(e)
	if err != nil {
		return eris.Wrapf(err, "detach from %s", e)
	}
	if schema == nil {
		return eris.Wrap(ErrSchemaMismatch, "detach: nil schema")
	}
	if !slot.archetype.HasSchema(schema.id) {
		return eris.Wrapf(ErrMissingComponent, "detach %s from %s", schema.name, e)
	}

	target := s.withoutSchema(slot.archetype, schema)
	s.move(e, slot, target, 0, nil)
	return nil
}

// move relocates an entity to target, carrying over the components both
// archetypes share and adding extra under extraID when non-nil.
func (s *Store) move(e Entity, slot *entitySlot, target *Archetype, extraID SchemaID, extra *cell) {
	source := slot.archetype

	data := make([]cell, len(target.schemas))
	for idx, schema := range target.schemas {
		if extra != nil && schema.id == extraID {
			data[idx] = *extra
			continue
		}
		data[idx], _ = source.get(slot.row, schema.id)
	}

	source.remove(slot.row)
	slot.archetype = target
	slot.row = target.spawn(e, data)
}

// Get returns the live component data of schema on e. Mutations through the
// returned reference are visible to every other reader.
func (s *Store) Get(e Entity, schema *Schema) (any, bool) {
	slot, err := s.resolve(e)
	if err != nil || schema == nil {
		return nil, false
	}
	c, ok := slot.archetype.get(slot.row, schema.id)
	return c.data, ok
}

// Has checks if a live entity has a component of schema.
func (s *Store) Has(e Entity, schema *Schema) bool {
	slot, err := s.resolve(e)
	if err != nil || schema == nil {
		return false
	}
	return slot.archetype.HasSchema(schema.id)
}

// Alive reports whether e refers to a live entity.
func (s *Store) Alive(e Entity) bool {
	_, err := s.resolve(e)
	return err == nil
}

// Components returns every component attached to e, sorted by schema ID.
func (s *Store) Components(e Entity) ([]Component, error) {
	slot, err := s.resolve(e)
	if err != nil {
		return nil, eris.Wrapf(err, "components of %s", e)
	}

	a := slot.archetype
	components := make([]Component, len(a.schemas))
	for idx, schema := range a.schemas {
		c, _ := a.columns[idx].Get(slot.row)
		components[idx] = Component{schema: schema, data: c.data, foreign: c.foreign}
	}
	return components, nil
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.live
}

// Archetypes returns every archetype in creation order.
func (s *Store) Archetypes() []*Archetype {
	return s.archetypes
}

// Entities yields every live entity in archetype then row order.
func (s *Store) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, a := range s.archetypes {
			for e := range a.Entities() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Compact repacks archetype storage to drop the holes left by removed
// entities. Entity handles stay valid.
func (s *Store) Compact() {
	for _, a := range s.archetypes {
		for oldRow, newRow := range a.compact() {
			if oldRow == newRow {
				continue
			}
			e, _ := a.rows.Get(newRow)
			s.slots[e.Index()].row = newRow
		}
	}
}

func (s *Store) resolve(e Entity) (*entitySlot, error) {
	index := e.Index()
	if e == 0 || int(index) >= len(s.slots) {
		return nil, eris.Wrapf(ErrStaleEntity, "unknown entity %s", e)
	}
	slot := &s.slots[index]
	if !slot.alive || slot.generation != e.Generation() {
		return nil, eris.Wrapf(ErrStaleEntity, "entity %s", e)
	}
	return slot, nil
}

// archetypeFor finds or creates the archetype for schemas sorted by ID.
func (s *Store) archetypeFor(schemas []*Schema) *Archetype {
	hash := hashSchemas(schemas)

	head, ok := s.byHash.Get(hash)
	for a := head; ok && a != nil; a = a.next {
		if a.sameSchemas(schemas) {
			return a
		}
	}

	s.registry.Register(schemas...)
	a := newArchetype(uint32(len(s.archetypes)), hash, schemas)
	a.next = head
	s.byHash.Put(hash, a)
	s.archetypes = append(s.archetypes, a)
	return a
}

func (s *Store) withSchema(a *Archetype, schema *Schema) *Archetype {
	if target, ok := a.addEdges.Get(schema.id); ok {
		return target
	}

	schemas := make([]*Schema, 0, len(a.schemas)+1)
	schemas = append(schemas, a.schemas...)
	schemas = append(schemas, schema)
	sortSchemas(schemas)

	target := s.archetypeFor(schemas)
	a.addEdges.Put(schema.id, target)
	target.removeEdges.Put(schema.id, a)
	return target
}

func (s *Store) withoutSchema(a *Archetype, schema *Schema) *Archetype {
	if target, ok := a.removeEdges.Get(schema.id); ok {
		return target
	}

	schemas := make([]*Schema, 0, len(a.schemas)-1)
	for _, existing := range a.schemas {
		if existing.id != schema.id {
			schemas = append(schemas, existing)
		}
	}

	target := s.archetypeFor(schemas)
	a.removeEdges.Put(schema.id, target)
	target.addEdges.Put(schema.id, a)
	return target
}
