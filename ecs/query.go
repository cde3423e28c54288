package ecs

import (
	"iter"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

var (
	lastQueryID atomic.Uint32
	// querySets interns schema sets so queries over the same schemas share
	// one index per store however often they are declared.
	querySets sync.Map // string -> uint32
)

// Query is an immutable set of required schemas. Matching ignores order, but
// component data is reported in the order the schemas were listed.
// A query may be shared by any number of systems and stores.
type Query struct {
	id      uint32
	schemas []*Schema
}

func querySetID(schemas []*Schema) uint32 {
	ids := make([]int, len(schemas))
	for i, s := range schemas {
		ids[i] = int(s.id)
	}
	slices.Sort(ids)

	var key strings.Builder
	for _, id := range ids {
		key.WriteString(strconv.Itoa(id))
		key.WriteByte(',')
	}

	if id, ok := querySets.Load(key.String()); ok {
		return id.(uint32)
	}
	id, _ := querySets.LoadOrStore(key.String(), lastQueryID.Add(1))
	return id.(uint32)
}

// NewQuery declares a query over schemas. Duplicates collapse onto their
// first occurrence.
func NewQuery(schemas ...*Schema) *Query {
	unique := make([]*Schema, 0, len(schemas))
	for _, s := range schemas {
		if s == nil {
			panic("NewQuery called with a nil schema")
		}
		duplicate := false
		for _, existing := range unique {
			if existing.id == s.id {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, s)
		}
	}

	return &Query{
		id:      querySetID(unique),
		schemas: unique,
	}
}

// Schemas returns the query's schemas in declaration order.
func (q *Query) Schemas() []*Schema {
	return q.schemas
}

// Matches checks if an archetype has every schema of the query.
func (q *Query) Matches(a *Archetype) bool {
	for _, s := range q.schemas {
		if !a.HasSchema(s.id) {
			return false
		}
	}
	return true
}

// queryIndex caches the archetypes matching a set of schemas. Archetypes are never
// removed from a store, so the index only has to look at archetypes created
// since the last refresh.
type queryIndex struct {
	archetypes []*Archetype
	scanned    int
}

func (s *Store) indexFor(q *Query) *queryIndex {
	idx, ok := s.queries.Get(q.id)
	if !ok {
		idx = &queryIndex{}
		s.queries.Put(q.id, idx)
	}

	for ; idx.scanned < len(s.archetypes); idx.scanned++ {
		if a := s.archetypes[idx.scanned]; q.Matches(a) {
			idx.archetypes = append(idx.archetypes, a)
		}
	}
	return idx
}

// matching snapshots the entities currently matching q.
func (s *Store) matching(q *Query) []Entity {
	idx := s.indexFor(q)

	total := 0
	for _, a := range idx.archetypes {
		total += a.Len()
	}

	entities := make([]Entity, 0, total)
	for _, a := range idx.archetypes {
		for e := range a.Entities() {
			entities = append(entities, e)
		}
	}
	return entities
}

// Evaluate returns the entities holding every schema of q together with their
// component data in the query's schema order.
//
// The sequence is lazy and restartable. Each iteration snapshots the matching
// entities when it starts and yields each at most once; entities destroyed or
// no longer matching by the time they are reached are skipped, and entities
// created during the iteration are not visited. The data slice is fresh for
// every entity. Order is archetype creation order, then row order, so it is
// stable for a fixed store state.
func (s *Store) Evaluate(q *Query) (iter.Seq2[Entity, []any], error) {
	if len(q.schemas) == 0 {
		return nil, eris.Wrap(ErrEmptyQuery, "evaluate")
	}

	return func(yield func(Entity, []any) bool) {
		for _, e := range s.matching(q) {
			slot, err := s.resolve(e)
			if err != nil || !q.Matches(slot.archetype) {
				continue
			}

			data := make([]any, len(q.schemas))
			for i, schema := range q.schemas {
				c, _ := slot.archetype.get(slot.row, schema.id)
				data[i] = c.data
			}

			if !yield(e, data) {
				return
			}
		}
	}, nil
}

// Each calls fn for every entity matching q. An error from fn stops the
// iteration and is returned.
func (s *Store) Each(q *Query, fn func(Entity, []any) error) error {
	seq, err := s.Evaluate(q)
	if err != nil {
		return err
	}
	for e, data := range seq {
		if err := fn(e, data); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of entities currently matching q.
func (s *Store) Count(q *Query) (int, error) {
	if len(q.schemas) == 0 {
		return 0, eris.Wrap(ErrEmptyQuery, "count")
	}

	total := 0
	for _, a := range s.indexFor(q).archetypes {
		total += a.Len()
	}
	return total, nil
}
