package demo

import (
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/internal/scene"
)

var meshes = ecs.NewQuery(MeshSchema)

type Pose struct {
	Entity string  `json:"entity"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

type Frame struct {
	Tick   uint64  `json:"tick"`
	Time   float64 `json:"time"`
	Meshes []Pose  `json:"meshes"`
}

// Trace samples every mesh position at a fixed interval of simulated time.
type Trace struct {
	Every  time.Duration `json:"every"`
	Frames []Frame       `json:"frames"`
}

func NewTrace(every time.Duration) *Trace {
	return &Trace{Every: every}
}

// System records a frame whenever Every has elapsed. Register it after the
// render system so meshes carry the pose of the current tick.
func (t *Trace) System(ctx *ecs.Context) error {
	if !ctx.UseInterval(t.Every) {
		return nil
	}

	tick := ctx.Tick()
	frame := Frame{
		Tick: tick.Number,
		Time: round(tick.Total.Seconds()),
	}
	err := ecs.Each1(ctx, meshes, func(e ecs.Entity, mesh *scene.Mesh) error {
		frame.Meshes = append(frame.Meshes, Pose{
			Entity: e.String(),
			X:      round(mesh.Position.X),
			Y:      round(mesh.Position.Y),
			Z:      round(mesh.Position.Z),
		})
		return nil
	})
	if err != nil {
		return err
	}

	t.Frames = append(t.Frames, frame)
	return nil
}

func (t *Trace) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// round keeps millimetre precision so traces compare across platforms.
func round(x float64) float64 {
	r := math.Round(x*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}
