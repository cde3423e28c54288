// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Render functions are stored as components and drawn by a system after the
// rest of the tick has run.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/lattice/ecs"
)

// ItemSchema tags entities carrying an ImguiItem. It declares no numeric
// fields, so any ImguiItem value satisfies it.
var ItemSchema = ecs.DefineSchema("debugui.ImguiItem")

var itemQuery = ecs.NewQuery(ItemSchema)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// Item returns an ImguiItem component for render.
func Item(render func()) ecs.Component {
	return ItemSchema.Of(&ImguiItem{Render: render})
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// NewSystem returns a system that records the input capture state into state
// and defers every ImguiItem render function to the end of the tick.
func NewSystem(state *ImguiInputState) ecs.SystemFunc {
	return func(ctx *ecs.Context) error {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()

		return ecs.Each1(ctx, itemQuery, func(_ ecs.Entity, item *ImguiItem) error {
			if item.Render != nil {
				ctx.Commands().Defer(item.Render)
			}
			return nil
		})
	}
}
