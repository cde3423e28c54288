package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/lattice/ecs"
)

type QueryDebuggerCache struct {
	schemas          []*ecs.Schema
	lastSchemaCount  int
	query            *ecs.Query
	lastSelectionKey string
}

type QueryDebuggerComponent struct {
	selectedSchemas map[string]bool
	cache           *QueryDebuggerCache
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedSchemas: make(map[string]bool),
		cache: &QueryDebuggerCache{
			lastSchemaCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(store *ecs.Store) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(store)

	imgui.Text("Select Schemas:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedSchemas = make(map[string]bool)
	}

	for _, schema := range qd.cache.schemas {
		key := schema.String()
		selected := qd.selectedSchemas[key]
		if imgui.Checkbox(key, &selected) {
			if selected {
				qd.selectedSchemas[key] = true
			} else {
				delete(qd.selectedSchemas, key)
			}
		}
	}

	imgui.Separator()

	query := qd.currentQuery()
	if query == nil {
		imgui.Text("No schemas selected")
		imgui.End()
		return
	}

	matchingArchetypes := qd.findMatchingArchetypes(store, query)
	totalEntities, _ := store.Count(query)

	imgui.Text(fmt.Sprintf("Matching Archetypes: %d", len(matchingArchetypes)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", totalEntities))

	if imgui.TreeNodeStr("Archetype Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryArchTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype ID")
			imgui.TableSetupColumn("All Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range matchingArchetypes {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%d", arch.ID()))

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", schemaNames(arch.Schemas())))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", arch.Len()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(store *ecs.Store) {
	schemas := store.Registry().Schemas()
	if qd.cache.lastSchemaCount == len(schemas) {
		return
	}
	qd.cache.lastSchemaCount = len(schemas)

	qd.cache.schemas = append(qd.cache.schemas[:0], schemas...)
	sort.Slice(qd.cache.schemas, func(i, j int) bool {
		return qd.cache.schemas[i].Name() < qd.cache.schemas[j].Name()
	})
}

// currentQuery returns the query for the selected schemas. The query is only
// rebuilt when the selection changes, so the store keeps reusing its index.
func (qd *QueryDebuggerComponent) currentQuery() *ecs.Query {
	selected := make([]*ecs.Schema, 0, len(qd.selectedSchemas))
	keys := make([]string, 0, len(qd.selectedSchemas))
	for _, schema := range qd.cache.schemas {
		if qd.selectedSchemas[schema.String()] {
			selected = append(selected, schema)
			keys = append(keys, schema.String())
		}
	}

	if len(selected) == 0 {
		qd.cache.query = nil
		qd.cache.lastSelectionKey = ""
		return nil
	}

	key := strings.Join(keys, ",")
	if qd.cache.query == nil || key != qd.cache.lastSelectionKey {
		qd.cache.query = ecs.NewQuery(selected...)
		qd.cache.lastSelectionKey = key
	}
	return qd.cache.query
}

func (qd *QueryDebuggerComponent) findMatchingArchetypes(store *ecs.Store, query *ecs.Query) []*ecs.Archetype {
	matching := make([]*ecs.Archetype, 0)

	for _, archetype := range store.Archetypes() {
		if query.Matches(archetype) {
			matching = append(matching, archetype)
		}
	}

	return matching
}
