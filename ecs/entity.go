package ecs

import "fmt"

// Entity encodes a slot generation (upper 32 bits) and a slot index (lower 32 bits).
// The zero Entity is never valid since generations start at 1.
type Entity uint64

// NewEntity creates an Entity from a slot index and generation
func NewEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the entity
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

func (e Entity) String() string {
	return fmt.Sprintf("%d@%d", e.Index(), e.Generation())
}

// entitySlot tracks where a live entity's components are stored
type entitySlot struct {
	generation uint32
	alive      bool
	archetype  *Archetype
	row        int
}
