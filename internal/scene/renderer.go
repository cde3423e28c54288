package scene

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var outline = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}

// Draw renders the scene onto screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	for _, p := range s.Project(bounds.Dx(), bounds.Dy()) {
		x, y := float32(p.X), float32(p.Y)
		w, h := float32(p.Width), float32(p.Height)
		vector.DrawFilledRect(screen, x, y, w, h, p.Mesh.Color, false)
		vector.StrokeRect(screen, x, y, w, h, 1, outline, false)
	}
}
