package ecs

import "github.com/rotisserie/eris"

// Failure kinds reported by the store, queries and the scheduler.
// Errors returned by this package wrap one of these; test with errors.Is.
var (
	// ErrSchemaMismatch is returned when a foreign object or literal value
	// does not satisfy the fields declared by a schema.
	ErrSchemaMismatch = eris.New("value does not match schema")

	// ErrDuplicateComponent is returned when an entity would end up with two
	// components of the same schema.
	ErrDuplicateComponent = eris.New("duplicate component")

	// ErrStaleEntity is returned for operations on destroyed entities or
	// handles whose generation no longer matches.
	ErrStaleEntity = eris.New("stale entity")

	// ErrEmptyQuery is returned when evaluating a query with no schemas.
	ErrEmptyQuery = eris.New("query has no schemas")

	ErrMissingComponent = eris.New("component not attached")
	ErrUnknownSystem    = eris.New("unknown system")
	ErrTypeAssertion    = eris.New("component data has unexpected type")
)
