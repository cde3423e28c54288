package ecs

import (
	"reflect"
	"strings"
)

// Record is the literal form of component data: numeric leaves and nested
// records keyed by field name. Records are reference types, so a Record
// returned by Store.Get can be mutated in place.
type Record map[string]any

func asRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case Record:
		return r, r != nil
	case map[string]any:
		return Record(r), r != nil
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// copyRecord copies only the declared fields, normalising numbers to float64.
func copyRecord(r Record, fields []Field) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if f.IsNumber() {
			n, _ := toFloat(r[f.Name])
			out[f.Name] = n
			continue
		}
		nested, _ := asRecord(r[f.Name])
		out[f.Name] = copyRecord(nested, f.Fields)
	}
	return out
}

func (r Record) lookup(path string) (Record, string, bool) {
	parts := strings.Split(path, ".")
	current := r
	for _, part := range parts[:len(parts)-1] {
		next, ok := asRecord(current[part])
		if !ok {
			return nil, "", false
		}
		current = next
	}
	return current, parts[len(parts)-1], true
}

func setNumeric(v reflect.Value, n float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(n))
	default:
		v.SetUint(uint64(n))
	}
}

func getNumeric(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}
