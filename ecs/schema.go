package ecs

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// SchemaID identifies a component schema. IDs are process-wide and assigned
// once per DefineSchema call, so two schemas with the same shape are still
// distinct component kinds.
type SchemaID uint32

var lastSchemaID atomic.Uint32

// Field describes one named field of a schema. A field without children is a
// number; a field with children is a nested record.
type Field struct {
	Name   string
	Fields []Field
}

// Number declares a numeric field.
func Number(name string) Field {
	return Field{Name: name}
}

// Nested declares a record field made of the given child fields.
func Nested(name string, fields ...Field) Field {
	if len(fields) == 0 {
		panic("nested field " + name + " must declare at least one child")
	}
	return Field{Name: name, Fields: fields}
}

// IsNumber reports whether f is a numeric leaf.
func (f Field) IsNumber() bool {
	return len(f.Fields) == 0
}

// Schema is the declared shape and identity of a kind of component.
type Schema struct {
	id     SchemaID
	name   string
	fields []Field
	paths  []string

	// bindings caches how a Go struct type maps onto this schema
	bindings sync.Map // reflect.Type -> *binding
}

// DefineSchema declares a new component kind. It panics on empty or duplicate
// field names since those are declaration mistakes.
func DefineSchema(name string, fields ...Field) *Schema {
	checkFields(name, fields)

	s := &Schema{
		id:     SchemaID(lastSchemaID.Add(1)),
		name:   name,
		fields: fields,
	}
	s.paths = collectPaths("", fields, nil)
	return s
}

func checkFields(owner string, fields []Field) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			panic("schema " + owner + " declares a field without a name")
		}
		if strings.Contains(f.Name, ".") {
			panic("schema field " + owner + "." + f.Name + " must not contain '.'")
		}
		if _, dup := seen[f.Name]; dup {
			panic("schema " + owner + " declares field " + f.Name + " twice")
		}
		seen[f.Name] = struct{}{}
		if !f.IsNumber() {
			checkFields(owner+"."+f.Name, f.Fields)
		}
	}
}

func collectPaths(prefix string, fields []Field, out []string) []string {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.IsNumber() {
			out = append(out, path)
			continue
		}
		out = collectPaths(path, f.Fields, out)
	}
	return out
}

// ID returns the schema's identity.
func (s *Schema) ID() SchemaID { return s.id }

// Name returns the name the schema was declared with.
func (s *Schema) Name() string { return s.name }

// Fields returns the declared fields.
func (s *Schema) Fields() []Field { return s.fields }

// Paths returns the dotted path of every numeric leaf in declaration order.
func (s *Schema) Paths() []string { return s.paths }

func (s *Schema) String() string {
	return fmt.Sprintf("%s#%d", s.name, s.id)
}

// Zero returns a record with every numeric field set to zero.
func (s *Schema) Zero() Record {
	return zeroRecord(s.fields)
}

func zeroRecord(fields []Field) Record {
	r := make(Record, len(fields))
	for _, f := range fields {
		if f.IsNumber() {
			r[f.Name] = float64(0)
		} else {
			r[f.Name] = zeroRecord(f.Fields)
		}
	}
	return r
}

// leaf is a resolved numeric field inside a struct type.
type leaf struct {
	index []int
	kind  reflect.Kind
}

// binding maps schema paths onto a concrete struct type.
type binding struct {
	leaves map[string]leaf
	// nested holds the index of every nested record field; they must be
	// non-nil when they are pointers
	nested [][]int
}

func (s *Schema) bind(t reflect.Type) (*binding, error) {
	if cached, ok := s.bindings.Load(t); ok {
		return cached.(*binding), nil
	}

	b := &binding{leaves: make(map[string]leaf, len(s.paths))}
	if err := bindFields(b, t, "", nil, s.fields); err != nil {
		return nil, err
	}

	actual, _ := s.bindings.LoadOrStore(t, b)
	return actual.(*binding), nil
}

func bindFields(b *binding, t reflect.Type, prefix string, index []int, fields []Field) error {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		sf, ok := lookupField(t, f.Name)
		if !ok {
			return fmt.Errorf("%s has no exported field for %q", t, path)
		}

		fieldIndex := make([]int, 0, len(index)+len(sf.Index))
		fieldIndex = append(fieldIndex, index...)
		fieldIndex = append(fieldIndex, sf.Index...)

		ft := sf.Type
		if f.IsNumber() {
			if !isNumericKind(ft.Kind()) {
				return fmt.Errorf("field %q of %s is %s, not a number", path, t, ft)
			}
			b.leaves[path] = leaf{index: fieldIndex, kind: ft.Kind()}
			continue
		}

		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct {
			return fmt.Errorf("field %q of %s is %s, not a record", path, t, sf.Type)
		}
		b.nested = append(b.nested, fieldIndex)
		if err := bindFields(b, ft, path, fieldIndex, f.Fields); err != nil {
			return err
		}
	}
	return nil
}

// lookupField resolves a schema field name against a struct type: an
// `ecs:"name"` tag wins, then the exact Go name, then a case-insensitive match.
// Promoted fields of embedded structs are considered.
func lookupField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.IsExported() && sf.Tag.Get("ecs") == name {
			return sf, true
		}
	}

	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return sf, true
	}

	sf, ok := t.FieldByNameFunc(func(candidate string) bool {
		return strings.EqualFold(candidate, name)
	})
	if ok && sf.IsExported() {
		return sf, true
	}
	return reflect.StructField{}, false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// checkStruct verifies that v (a struct value) satisfies the schema, including
// that nested pointer records are non-nil.
func (s *Schema) checkStruct(v reflect.Value) (*binding, error) {
	b, err := s.bind(v.Type())
	if err != nil {
		return nil, err
	}
	for _, index := range b.nested {
		field, err := v.FieldByIndexErr(index)
		if err != nil {
			return nil, err
		}
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return nil, fmt.Errorf("nested record %s of %s is nil", v.Type().FieldByIndex(index).Name, v.Type())
		}
	}
	return b, nil
}

// checkRecord verifies a literal record against the declared fields.
func checkRecord(r Record, prefix string, fields []Field) error {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		value, ok := r[f.Name]
		if !ok {
			return fmt.Errorf("missing field %q", path)
		}

		if f.IsNumber() {
			if _, ok := toFloat(value); !ok {
				return fmt.Errorf("field %q is %T, not a number", path, value)
			}
			continue
		}

		nested, ok := asRecord(value)
		if !ok {
			return fmt.Errorf("field %q is %T, not a record", path, value)
		}
		if err := checkRecord(nested, path, f.Fields); err != nil {
			return err
		}
	}
	return nil
}
