package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes an exported struct field of a foreign component.
type FieldInfo struct {
	Name      string
	Index     int
	IsPointer bool
}

// fieldCache holds the exported fields of every foreign type inspected so far.
var fieldCache sync.Map // reflect.Type -> []FieldInfo

func exportedFields(t reflect.Type) []FieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]FieldInfo)
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Index:     i,
				IsPointer: field.Type.Kind() == reflect.Ptr,
			})
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}
