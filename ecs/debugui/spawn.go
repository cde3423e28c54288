package debugui

import "github.com/plus3/lattice/ecs"

// Panels bundles the inspector windows so they can share a selection.
type Panels struct {
	Browser     EntityBrowserComponent
	Inspector   ComponentInspectorComponent
	Archetypes  ArchetypeViewerComponent
	Performance PerformanceStatsComponent
	Queries     QueryDebuggerComponent

	timer *FrameTimer
}

func NewPanels() *Panels {
	return &Panels{
		Browser:     NewEntityBrowserComponent(100),
		Inspector:   NewComponentInspectorComponent(),
		Archetypes:  NewArchetypeViewerComponent(),
		Performance: NewPerformanceStatsComponent(120),
		Queries:     NewQueryDebuggerComponent(),
		timer:       NewFrameTimer(),
	}
}

// Render draws every panel for world. Clicking an archetype filters the
// entity browser; selecting an entity opens it in the inspector.
func (p *Panels) Render(world *ecs.World) {
	store := world.Store()

	p.Browser.Render(store)
	p.Inspector.Render(store, p.Browser.GetSelectedEntity())
	if clicked := p.Archetypes.Render(store); clicked != nil {
		p.Browser.FilterArchetype(clicked)
	}
	p.Performance.Render(world, p.timer.GetDeltaTime())
	p.Queries.Render(store)
}

// SpawnDebugUI creates an entity that renders the inspector panels for world.
func SpawnDebugUI(world *ecs.World) (ecs.Entity, error) {
	panels := NewPanels()
	return world.Store().Create(Item(func() {
		panels.Render(world)
	}))
}
