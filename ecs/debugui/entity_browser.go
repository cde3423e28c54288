package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/lattice/ecs"
)

type EntityInfo struct {
	ID             ecs.Entity
	ArchetypeID    uint32
	ComponentTypes []string
	ComponentCount int
	// ForeignCount is the number of components aliasing objects owned
	// outside the store.
	ForeignCount int
}

type EntityBrowserCache struct {
	entities           []EntityInfo
	lastArchetypeCount int
	lastEntityCount    int
	sortColumn         int
	sortAscending      bool
}

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	selectedEntity     ecs.Entity
	filterText         string
	filterArchetypeId  *uint32
	maxEntitiesPerPage int
	currentPage        int
}

var entityColumns = []struct {
	name    string
	compare func(a, b EntityInfo) int
}{
	{"Entity", func(a, b EntityInfo) int { return cmp.Compare(a.ID.Index(), b.ID.Index()) }},
	{"Archetype ID", func(a, b EntityInfo) int { return cmp.Compare(a.ArchetypeID, b.ArchetypeID) }},
	{"Components", func(a, b EntityInfo) int { return slices.Compare(a.ComponentTypes, b.ComponentTypes) }},
	{"Count", func(a, b EntityInfo) int { return cmp.Compare(a.ComponentCount, b.ComponentCount) }},
	{"Foreign", func(a, b EntityInfo) int { return cmp.Compare(a.ForeignCount, b.ForeignCount) }},
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache:              &EntityBrowserCache{sortAscending: true},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowserComponent) Render(store *ecs.Store) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(store)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.FilterArchetype(nil)
	}
	if eb.filterArchetypeId != nil {
		imgui.SameLine()
		imgui.Text(fmt.Sprintf("archetype %d", *eb.filterArchetypeId))
	}

	filtered := eb.getFilteredEntities()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", int32(len(entityColumns)), tableFlags, imgui.NewVec2(0, 0), 0) {
		for _, column := range entityColumns {
			imgui.TableSetupColumn(column.name)
		}
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.getFilteredEntities()
		}

		start := min(eb.currentPage*eb.maxEntitiesPerPage, len(filtered))
		end := min(start+eb.maxEntitiesPerPage, len(filtered))
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(entity.ID.String(), eb.selectedEntity == entity.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntity = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ArchetypeID))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ForeignCount))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// rebuildCacheIfNeeded refreshes the entity list when the number of
// archetypes or live entities changed since the last frame.
func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(store *ecs.Store) {
	archetypeCount := len(store.Archetypes())
	entityCount := store.Len()
	if eb.cache.entities != nil && eb.cache.lastArchetypeCount == archetypeCount && eb.cache.lastEntityCount == entityCount {
		return
	}
	eb.cache.lastArchetypeCount = archetypeCount
	eb.cache.lastEntityCount = entityCount
	eb.rebuildCache(store)
}

func (eb *EntityBrowserComponent) rebuildCache(store *ecs.Store) {
	eb.cache.entities = make([]EntityInfo, 0, store.Len())

	for _, archetype := range store.Archetypes() {
		names := schemaNames(archetype.Schemas())

		for e := range archetype.Entities() {
			info := EntityInfo{
				ID:             e,
				ArchetypeID:    archetype.ID(),
				ComponentTypes: names,
				ComponentCount: len(names),
			}
			if components, err := store.Components(e); err == nil {
				for _, c := range components {
					if c.Foreign() {
						info.ForeignCount++
					}
				}
			}
			eb.cache.entities = append(eb.cache.entities, info)
		}
	}

	eb.sortEntities()
}

func (eb *EntityBrowserComponent) sortEntities() {
	compare := entityColumns[0].compare
	if eb.cache.sortColumn >= 0 && eb.cache.sortColumn < len(entityColumns) {
		compare = entityColumns[eb.cache.sortColumn].compare
	}
	slices.SortStableFunc(eb.cache.entities, func(a, b EntityInfo) int {
		if eb.cache.sortAscending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

func (eb *EntityBrowserComponent) getFilteredEntities() []EntityInfo {
	if eb.filterText == "" && eb.filterArchetypeId == nil {
		return eb.cache.entities
	}

	needle := strings.ToLower(eb.filterText)
	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	for _, entity := range eb.cache.entities {
		if eb.filterArchetypeId != nil && entity.ArchetypeID != *eb.filterArchetypeId {
			continue
		}
		if needle != "" &&
			!strings.Contains(entity.ID.String(), needle) &&
			!strings.Contains(strings.ToLower(strings.Join(entity.ComponentTypes, " ")), needle) {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

// FilterArchetype restricts the browser to one archetype; nil clears it.
func (eb *EntityBrowserComponent) FilterArchetype(id *uint32) {
	eb.filterArchetypeId = id
	eb.currentPage = 0
}

func (eb *EntityBrowserComponent) GetSelectedEntity() ecs.Entity {
	return eb.selectedEntity
}

func schemaNames(schemas []*ecs.Schema) []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name()
	}
	return names
}
