package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Component is one schema's data ready to be attached to an entity. Build it
// with Schema.Of for data the store should own, or with WrapForeign for an
// object owned by another library.
type Component struct {
	schema  *Schema
	data    any
	foreign bool
}

// Of returns a component whose data will be copied into the store when it is
// attached. value may be a Record, a struct or a pointer to a struct; it is
// validated against the schema at attach time.
func (s *Schema) Of(value any) Component {
	return Component{schema: s, data: value}
}

// WrapForeign associates an externally allocated object with a schema without
// copying it. obj must be a non-nil pointer to a struct whose exported fields
// cover every field of the schema. The store keeps obj itself, so mutations
// made through obj are visible to every reader and vice versa.
func WrapForeign(obj any, s *Schema) (Component, error) {
	if s == nil {
		panic("WrapForeign called with a nil schema")
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return Component{}, eris.Wrapf(ErrSchemaMismatch, "%s: foreign object must be a non-nil pointer to a struct, got %T", s.name, obj)
	}

	if _, err := s.checkStruct(v.Elem()); err != nil {
		return Component{}, eris.Wrapf(ErrSchemaMismatch, "%s: %v", s.name, err)
	}

	return Component{schema: s, data: obj, foreign: true}, nil
}

// Schema returns the component's schema.
func (c Component) Schema() *Schema { return c.schema }

// Data returns the component's data. For components read back from a store
// this is the live reference held by the store.
func (c Component) Data() any { return c.data }

// Foreign reports whether the data is owned by another library.
func (c Component) Foreign() bool { return c.foreign }

// materialize validates the component and returns the reference the store
// should keep: the foreign object itself or a private copy of owned data.
func (c Component) materialize() (any, error) {
	if c.schema == nil {
		return nil, eris.Wrap(ErrSchemaMismatch, "component has no schema")
	}
	if c.foreign {
		return c.data, nil
	}

	s := c.schema
	if r, ok := asRecord(c.data); ok {
		if err := checkRecord(r, "", s.fields); err != nil {
			return nil, eris.Wrapf(ErrSchemaMismatch, "%s: %v", s.name, err)
		}
		return copyRecord(r, s.fields), nil
	}

	v := reflect.ValueOf(c.data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, eris.Wrapf(ErrSchemaMismatch, "%s: nil value", s.name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, eris.Wrapf(ErrSchemaMismatch, "%s: unsupported value %T", s.name, c.data)
	}
	b, err := s.checkStruct(v)
	if err != nil {
		return nil, eris.Wrapf(ErrSchemaMismatch, "%s: %v", s.name, err)
	}

	owned := reflect.New(v.Type())
	owned.Elem().Set(v)
	copyNested(owned.Elem(), b)
	return owned.Interface(), nil
}

// copyNested replaces every nested record held through a pointer with a
// private copy. b.nested lists parents before their children, so each pointer
// is read from an already copied parent.
func copyNested(v reflect.Value, b *binding) {
	for _, index := range b.nested {
		field := v.FieldByIndex(index)
		if field.Kind() != reflect.Ptr {
			continue
		}
		dup := reflect.New(field.Type().Elem())
		dup.Elem().Set(field.Elem())
		field.Set(dup)
	}
}

// Number reads the numeric field at path ("position.x") from component data of
// this schema, whether the data is a Record or a struct.
func (s *Schema) Number(data any, path string) (float64, error) {
	if r, ok := asRecord(data); ok {
		parent, key, ok := r.lookup(path)
		if !ok {
			return 0, eris.Wrapf(ErrSchemaMismatch, "%s: no record at %q", s.name, path)
		}
		n, ok := toFloat(parent[key])
		if !ok {
			return 0, eris.Wrapf(ErrSchemaMismatch, "%s: %q is not a number", s.name, path)
		}
		return n, nil
	}

	field, err := s.field(data, path)
	if err != nil {
		return 0, err
	}
	return getNumeric(field), nil
}

// SetNumber writes the numeric field at path. Struct data must be a pointer.
func (s *Schema) SetNumber(data any, path string, n float64) error {
	if r, ok := asRecord(data); ok {
		parent, key, ok := r.lookup(path)
		if !ok {
			return eris.Wrapf(ErrSchemaMismatch, "%s: no record at %q", s.name, path)
		}
		if _, ok := parent[key]; !ok {
			return eris.Wrapf(ErrSchemaMismatch, "%s: no field %q", s.name, path)
		}
		parent[key] = n
		return nil
	}

	field, err := s.field(data, path)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return eris.Wrapf(ErrSchemaMismatch, "%s: %q is not settable on %T", s.name, path, data)
	}
	setNumeric(field, n)
	return nil
}

// CopyNumbers copies every numeric field of the schema from src to dst.
func (s *Schema) CopyNumbers(dst, src any) error {
	for _, path := range s.paths {
		n, err := s.Number(src, path)
		if err != nil {
			return err
		}
		if err := s.SetNumber(dst, path, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) field(data any, path string) (reflect.Value, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, eris.Wrapf(ErrSchemaMismatch, "%s: nil data", s.name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, eris.Wrapf(ErrSchemaMismatch, "%s: unsupported data %T", s.name, data)
	}

	b, err := s.bind(v.Type())
	if err != nil {
		return reflect.Value{}, eris.Wrapf(ErrSchemaMismatch, "%s: %v", s.name, err)
	}
	l, ok := b.leaves[path]
	if !ok {
		return reflect.Value{}, eris.Wrapf(ErrSchemaMismatch, "%s: no numeric field %q", s.name, path)
	}

	field, err := v.FieldByIndexErr(l.index)
	if err != nil {
		return reflect.Value{}, eris.Wrapf(ErrSchemaMismatch, "%s: %q: %v", s.name, path, err)
	}
	return field, nil
}

// As downcasts component data to the type its owner allocated it as. This is
// how systems get back the full API of a foreign object stored in the ECS.
func As[T any](data any) (T, error) {
	value, ok := data.(T)
	if !ok {
		var zero T
		return zero, eris.Wrapf(ErrTypeAssertion, "have %T, want %T", data, zero)
	}
	return value, nil
}
