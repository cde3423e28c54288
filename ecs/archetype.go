package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

// Archetype groups every entity that has exactly the same set of schemas.
type Archetype struct {
	id      uint32
	hash    uint64
	schemas []*Schema
	columns []*column[cell]
	rows    column[Entity]
	offsets *intmap.Map[SchemaID, int]

	// transitions to the archetype with one schema more or less
	addEdges    *intmap.Map[SchemaID, *Archetype]
	removeEdges *intmap.Map[SchemaID, *Archetype]

	// next archetype with the same hash
	next *Archetype
}

// newArchetype creates an archetype for schemas, which must be sorted by ID.
func newArchetype(id uint32, hash uint64, schemas []*Schema) *Archetype {
	a := &Archetype{
		id:          id,
		hash:        hash,
		schemas:     schemas,
		columns:     make([]*column[cell], len(schemas)),
		offsets:     intmap.New[SchemaID, int](len(schemas)),
		addEdges:    intmap.New[SchemaID, *Archetype](4),
		removeEdges: intmap.New[SchemaID, *Archetype](4),
	}

	for idx, s := range schemas {
		a.columns[idx] = &column[cell]{}
		a.offsets.Put(s.id, idx)
	}

	return a
}

// spawn stores an entity's component references; data is ordered like the
// archetype's schemas. Returns the row.
func (a *Archetype) spawn(e Entity, data []cell) int {
	row := a.rows.Append(e)
	for idx, col := range a.columns {
		if got := col.Append(data[idx]); got != row {
			panic("archetype columns out of sync")
		}
	}
	return row
}

// remove empties a row in every column.
func (a *Archetype) remove(row int) {
	a.rows.Delete(row)
	for _, col := range a.columns {
		col.Delete(row)
	}
}

// get returns the component stored for schema id at row.
func (a *Archetype) get(row int, id SchemaID) (cell, bool) {
	idx, ok := a.offsets.Get(id)
	if !ok {
		return cell{}, false
	}
	return a.columns[idx].Get(row)
}

// compact repacks every column and returns the old->new row mapping.
func (a *Archetype) compact() map[int]int {
	indexMap := a.rows.Compact()
	for _, col := range a.columns {
		col.Compact()
	}
	return indexMap
}

// ID returns the archetype's sequence number within its store. Archetypes are
// numbered in creation order, starting at 0 for the empty archetype.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Schemas returns the archetype's schemas sorted by ID.
func (a *Archetype) Schemas() []*Schema {
	return a.schemas
}

// HasSchema checks if this archetype has the given schema.
func (a *Archetype) HasSchema(id SchemaID) bool {
	_, ok := a.offsets.Get(id)
	return ok
}

// Len returns the number of entities in the archetype.
func (a *Archetype) Len() int {
	return a.rows.Len()
}

// Entities yields the archetype's entities in row order.
func (a *Archetype) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for row := range a.rows.Iter() {
			e, _ := a.rows.Get(row)
			if !yield(e) {
				return
			}
		}
	}
}

func (a *Archetype) sameSchemas(schemas []*Schema) bool {
	return slices.EqualFunc(a.schemas, schemas, func(x, y *Schema) bool {
		return x.id == y.id
	})
}

// hashSchemas generates an FNV-1a hash for schemas sorted by ID.
func hashSchemas(schemas []*Schema) uint64 {
	var h uint64 = 14695981039346656037 // FNV-1a 64-bit offset basis
	const prime uint64 = 1099511628211  // FNV-1a 64-bit prime

	for _, s := range schemas {
		id := uint32(s.id)
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64(byte(id >> shift))
			h *= prime
		}
	}

	return h
}

func sortSchemas(schemas []*Schema) {
	slices.SortFunc(schemas, func(a, b *Schema) int {
		return int(a.id) - int(b.id)
	})
}
