package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/lattice/ecs"
	"github.com/plus3/lattice/ecs/debugui"
	debugui_ebiten "github.com/plus3/lattice/ecs/debugui/ebiten"
	"github.com/plus3/lattice/internal/demo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newInteropCommand(cfg *Config, logger *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interop",
		Short: "Drop boxes onto the ground in a window",
		Long: `Open a window and drop boxes onto a ground slab.

Physics bodies and meshes are allocated by their own libraries and
registered with the ECS by reference. The spawn, physics and render
systems bridge them every tick.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			world := ecs.NewWorld(ecs.WithLogger(*logger), ecs.WithInitialCapacity(cfg.Boxes+1))

			opts := demo.DefaultOptions()
			opts.Boxes = cfg.Boxes
			opts.Seed = cfg.Seed
			app := demo.New(opts)
			app.Install(world)

			if cfg.DebugUI {
				if _, err := debugui.SpawnDebugUI(world); err != nil {
					return err
				}
			}
			var input debugui.ImguiInputState
			world.AddSystem("imgui", debugui.NewSystem(&input))

			backend := debugui_ebiten.NewImguiBackend("lattice", cfg.Width, cfg.Height)
			ebiten.SetTPS(cfg.TickRate)

			logger.Info().Str("world_id", world.ID().String()).Int("boxes", cfg.Boxes).Msg("starting interop demo")
			return ebiten.RunGame(&debugui_ebiten.Game{
				World:     world,
				Backend:   backend,
				DrawWorld: app.Scene.Draw,
			})
		},
	}

	cmd.Flags().IntVar(&cfg.Boxes, "boxes", cfg.Boxes, "number of boxes to drop")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "window width")
	cmd.Flags().IntVar(&cfg.Height, "height", cfg.Height, "window height")
	cmd.Flags().BoolVar(&cfg.DebugUI, "debug-ui", cfg.DebugUI, "show the ECS inspector windows")

	return cmd
}
