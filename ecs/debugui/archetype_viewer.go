package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/lattice/ecs"
)

type ArchetypeInfo struct {
	ID          uint32
	Schemas     []string
	FieldCount  int
	EntityCount int
}

type ArchetypeViewerCache struct {
	archetypes    []ArchetypeInfo
	sortColumn    int
	sortAscending bool
}

type ArchetypeViewerComponent struct {
	cache          *ArchetypeViewerCache
	selectedArchId *uint32
}

const archetypeEntityColumn = 3

var archetypeColumns = []struct {
	name    string
	compare func(a, b ArchetypeInfo) int
}{
	{"Archetype ID", func(a, b ArchetypeInfo) int { return cmp.Compare(a.ID, b.ID) }},
	{"Schemas", func(a, b ArchetypeInfo) int { return slices.Compare(a.Schemas, b.Schemas) }},
	{"Fields", func(a, b ArchetypeInfo) int { return cmp.Compare(a.FieldCount, b.FieldCount) }},
	{"Entities", func(a, b ArchetypeInfo) int { return cmp.Compare(a.EntityCount, b.EntityCount) }},
}

func NewArchetypeViewerComponent() ArchetypeViewerComponent {
	return ArchetypeViewerComponent{
		cache: &ArchetypeViewerCache{sortColumn: archetypeEntityColumn},
	}
}

// Render draws the archetype table and returns the ID of an archetype the
// user clicked this frame.
func (av *ArchetypeViewerComponent) Render(store *ecs.Store) *uint32 {
	defer imgui.End()
	if !imgui.BeginV("Archetype Viewer", nil, imgui.WindowFlagsNone) {
		return nil
	}

	av.rebuildCacheIfNeeded(store)

	largest := 0
	for _, arch := range av.cache.archetypes {
		largest = max(largest, arch.EntityCount)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if !imgui.BeginTableV("ArchetypeTable", int32(len(archetypeColumns)), tableFlags, imgui.NewVec2(0, 0), 0) {
		return nil
	}
	defer imgui.EndTable()

	for _, column := range archetypeColumns {
		imgui.TableSetupColumn(column.name)
	}
	imgui.TableHeadersRow()

	sortSpecs := imgui.TableGetSortSpecs()
	if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
		spec := sortSpecs.Specs()
		av.cache.sortColumn = int(spec.ColumnIndex())
		av.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
		av.sortArchetypes()
		sortSpecs.SetSpecsDirty(false)
	}

	var clicked *uint32
	for _, arch := range av.cache.archetypes {
		imgui.TableNextRow()

		imgui.TableNextColumn()
		selected := av.selectedArchId != nil && *av.selectedArchId == arch.ID
		if imgui.SelectableBoolV(fmt.Sprintf("%d", arch.ID), selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
			id := arch.ID
			clicked = &id
			av.selectedArchId = &id
		}

		imgui.TableNextColumn()
		if len(arch.Schemas) == 0 {
			imgui.TextDisabled("(empty)")
		} else {
			imgui.Text(strings.Join(arch.Schemas, ", "))
		}

		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", arch.FieldCount))

		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
		if largest > 0 {
			barWidth := float32(arch.EntityCount) / float32(largest) * 80.0
			imgui.SameLine()
			pos := imgui.CursorScreenPos()
			color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
			imgui.WindowDrawList().AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
		}
	}

	return clicked
}

// rebuildCacheIfNeeded rebuilds the table when archetypes were added and
// otherwise only refreshes entity counts. Archetype IDs index the store's
// archetype list.
func (av *ArchetypeViewerComponent) rebuildCacheIfNeeded(store *ecs.Store) {
	archetypes := store.Archetypes()
	if len(av.cache.archetypes) != len(archetypes) {
		av.rebuildCache(archetypes)
		return
	}

	for i := range av.cache.archetypes {
		info := &av.cache.archetypes[i]
		info.EntityCount = archetypes[info.ID].Len()
	}
	if av.cache.sortColumn == archetypeEntityColumn {
		av.sortArchetypes()
	}
}

func (av *ArchetypeViewerComponent) rebuildCache(archetypes []*ecs.Archetype) {
	av.cache.archetypes = make([]ArchetypeInfo, 0, len(archetypes))
	for _, archetype := range archetypes {
		fields := 0
		for _, schema := range archetype.Schemas() {
			fields += len(schema.Paths())
		}
		av.cache.archetypes = append(av.cache.archetypes, ArchetypeInfo{
			ID:          archetype.ID(),
			Schemas:     schemaNames(archetype.Schemas()),
			FieldCount:  fields,
			EntityCount: archetype.Len(),
		})
	}
	av.sortArchetypes()
}

func (av *ArchetypeViewerComponent) sortArchetypes() {
	compare := archetypeColumns[archetypeEntityColumn].compare
	if av.cache.sortColumn >= 0 && av.cache.sortColumn < len(archetypeColumns) {
		compare = archetypeColumns[av.cache.sortColumn].compare
	}
	slices.SortStableFunc(av.cache.archetypes, func(a, b ArchetypeInfo) int {
		if av.cache.sortAscending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}
