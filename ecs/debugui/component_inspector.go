package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/lattice/ecs"
)

// ComponentInspectorComponent shows and edits the components of the selected
// entity.
type ComponentInspectorComponent struct {
	selectedEntity ecs.Entity
}

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

func (ci *ComponentInspectorComponent) Render(store *ecs.Store, selectedEntity ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntity = selectedEntity

	if ci.selectedEntity == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	components, err := store.Components(ci.selectedEntity)
	if err != nil {
		imgui.Text(fmt.Sprintf("Entity %s not found", ci.selectedEntity))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntity))
	imgui.Text(fmt.Sprintf("Components: %d", len(components)))
	imgui.Separator()

	for _, component := range components {
		label := component.Schema().Name()
		if component.Foreign() {
			label = fmt.Sprintf("%s (%T)", label, component.Data())
		}

		if imgui.TreeNodeStr(label) {
			ci.renderComponent(component)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(component ecs.Component) {
	schema := component.Schema()
	for _, field := range componentFields(component) {
		v := float32(field.Value)
		imgui.Text(fmt.Sprintf("%s:", field.Path))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%d.%s", schema.ID(), field.Path), &v) {
			_ = schema.SetNumber(component.Data(), field.Path, float64(v))
		}
	}

	if !component.Foreign() {
		return
	}

	// foreign objects usually carry more state than their schema declares
	val := reflect.ValueOf(component.Data()).Elem()
	extra := exportedFields(val.Type())
	if len(extra) > 0 && imgui.TreeNodeStr("Other fields") {
		for _, field := range extra {
			ci.renderField(field.Name, val.Field(field.Index), field)
		}
		imgui.TreePop()
	}
}

// renderField shows a field of a foreign object read-only.
func (ci *ComponentInspectorComponent) renderField(name string, val reflect.Value, field FieldInfo) {
	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range exportedFields(val.Type()) {
				ci.renderField(nf.Name, val.Field(nf.Index), nf)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

// ComponentField is one numeric leaf of a component.
type ComponentField struct {
	Path  string
	Value float64
}

// componentFields reads every numeric leaf the component's schema declares.
func componentFields(component ecs.Component) []ComponentField {
	schema := component.Schema()
	fields := make([]ComponentField, 0, len(schema.Paths()))
	for _, path := range schema.Paths() {
		n, err := schema.Number(component.Data(), path)
		if err != nil {
			continue
		}
		fields = append(fields, ComponentField{Path: path, Value: n})
	}
	return fields
}
