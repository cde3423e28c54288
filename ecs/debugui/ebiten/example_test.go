package ebiten_test

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/ecs/debugui"
	debugui_ebiten "github.com/plus3/lattice/ecs/debugui/ebiten"
)

func Example() {
	// Create Ebiten window and ImGui backend
	backend := debugui_ebiten.NewImguiBackend("ECS ImGui Example", 1280, 720)

	world := ecs.NewWorld()

	// Spawn entities with ImGui render functions
	_, err := world.Store().Create(debugui.Item(func() {
		imgui.Begin("Debug Window")
		imgui.Text("Hello from ECS!")
		imgui.End()
	}))
	if err != nil {
		panic(err)
	}

	// Add the inspector panels
	if _, err := debugui.SpawnDebugUI(world); err != nil {
		panic(err)
	}

	// The ImGui system defers every render function to the end of the tick
	var input debugui.ImguiInputState
	world.AddSystem("imgui", debugui.NewSystem(&input))

	game := &debugui_ebiten.Game{
		World:   world,
		Backend: backend,
	}

	// Run the game
	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
