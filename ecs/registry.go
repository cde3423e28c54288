package ecs

import "github.com/kamstrup/intmap"

// ComponentRegistry records the schemas a store has seen. Schema identity is
// process-wide (see DefineSchema); the registry only indexes the schemas in
// use so tools can list and look them up.
type ComponentRegistry struct {
	byID    *intmap.Map[SchemaID, *Schema]
	ordered []*Schema
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byID: intmap.New[SchemaID, *Schema](32),
	}
}

// Register adds schemas to the registry. Registering a schema twice is a no-op.
func (r *ComponentRegistry) Register(schemas ...*Schema) {
	for _, s := range schemas {
		if _, ok := r.byID.Get(s.id); ok {
			continue
		}
		r.byID.Put(s.id, s)
		r.ordered = append(r.ordered, s)
	}
}

// Lookup returns the registered schema with the given ID.
func (r *ComponentRegistry) Lookup(id SchemaID) (*Schema, bool) {
	return r.byID.Get(id)
}

// Schemas returns the registered schemas in registration order.
func (r *ComponentRegistry) Schemas() []*Schema {
	return r.ordered
}
