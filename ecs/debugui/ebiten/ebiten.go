// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	"time"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/lattice/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend window. imgui.ini persistence is
// disabled.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}

// Game implements ebiten.Game around a world: every Update steps the world
// inside an ImGui frame, so ImguiItem render functions deferred by the
// debugui system draw into it.
type Game struct {
	World   *ecs.World
	Backend ImguiBackend

	// DrawWorld renders game content beneath the ImGui overlay.
	DrawWorld func(screen *ebiten.Image)
}

func (g *Game) Update() error {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	g.Backend.BeginFrame()
	err := g.World.Step(time.Second / time.Duration(tps))
	g.Backend.EndFrame()
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
