package main

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/lattice/ecs"
)

// Report collects the results of a stress run.
type Report struct {
	Duration       time.Duration
	Entities       int
	Schemas        int
	Systems        int
	GCPauseMetrics bool

	Elapsed   time.Duration
	Frames    FrameTimes
	MemStart  runtime.MemStats
	MemEnd    runtime.MemStats
	Storage   *ecs.StorageStats
	Scheduler *ecs.SchedulerStats
}

// FrameTimes records how long each world step took.
type FrameTimes struct {
	samples []time.Duration
	sorted  bool
}

func (f *FrameTimes) Add(d time.Duration) {
	f.samples = append(f.samples, d)
	f.sorted = false
}

func (f *FrameTimes) Count() int { return len(f.samples) }

// Percentile returns the sample at or below which p percent of frames fall.
func (f *FrameTimes) Percentile(p float64) time.Duration {
	if len(f.samples) == 0 {
		return 0
	}
	if !f.sorted {
		slices.Sort(f.samples)
		f.sorted = true
	}
	i := int(p / 100 * float64(len(f.samples)-1))
	return f.samples[max(0, min(i, len(f.samples)-1))]
}

func (f *FrameTimes) Min() time.Duration { return f.Percentile(0) }
func (f *FrameTimes) Max() time.Duration { return f.Percentile(100) }

func (f *FrameTimes) Avg() time.Duration {
	if len(f.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range f.samples {
		total += d
	}
	return total / time.Duration(len(f.samples))
}

// SlowestSystems returns up to n systems ordered by average duration.
func (r *Report) SlowestSystems(n int) []ecs.SystemStats {
	if r.Scheduler == nil {
		return nil
	}
	systems := slices.Clone(r.Scheduler.Systems)
	slices.SortStableFunc(systems, func(a, b ecs.SystemStats) int {
		return cmp.Compare(b.AvgDuration, a.AvgDuration)
	})
	return systems[:min(n, len(systems))]
}

type memoryRow struct {
	Name       string
	Start, End string
	Delta      string
}

func megabytes(v int64) string {
	return fmt.Sprintf("%.2f", float64(v)/(1<<20))
}

// Memory lists heap figures at the start and end of the run.
func (r *Report) Memory() []memoryRow {
	row := func(name string, start, end uint64) memoryRow {
		return memoryRow{
			Name:  name,
			Start: megabytes(int64(start)),
			End:   megabytes(int64(end)),
			Delta: megabytes(int64(end) - int64(start)),
		}
	}
	return []memoryRow{
		row("Heap alloc", r.MemStart.HeapAlloc, r.MemEnd.HeapAlloc),
		row("Total alloc", r.MemStart.TotalAlloc, r.MemEnd.TotalAlloc),
		row("Sys", r.MemStart.Sys, r.MemEnd.Sys),
	}
}

func (r *Report) GCCycles() uint32 { return r.MemEnd.NumGC - r.MemStart.NumGC }

func (r *Report) GCPause() time.Duration {
	return time.Duration(r.MemEnd.PauseTotalNs - r.MemStart.PauseTotalNs)
}

var reportTemplate = template.Must(template.New("report").Parse(`# Lattice Stress Report

Ran {{.Frames.Count}} ticks in {{.Elapsed}} (budget {{.Duration}}) over {{.Entities}} initial entities, {{.Schemas}} schemas and {{.Systems}} query systems.

## Tick Time
| Min | Avg | p95 | Max |
|-----|-----|-----|-----|
| {{.Frames.Min}} | {{.Frames.Avg}} | {{.Frames.Percentile 95}} | {{.Frames.Max}} |
{{with .Storage}}
## Store
| Live entities | Archetypes | Schemas | Query indexes |
|---------------|------------|---------|---------------|
| {{.TotalEntityCount}} | {{.ArchetypeCount}} | {{.SchemaCount}} | {{.QueryIndexCount}} |
{{end}}{{with .SlowestSystems 5}}
## Slowest Systems
| System | Runs | Avg | Max |
|--------|------|-----|-----|
{{range .}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
## Memory (MB)
| | Start | End | Delta |
|-|-------|-----|-------|
{{range .Memory}}| {{.Name}} | {{.Start}} | {{.End}} | {{.Delta}} |
{{end}}{{if .GCPauseMetrics}}
## GC
{{.GCCycles}} cycles, {{.GCPause}} total pause.
{{end}}`))

func (r *Report) Generate(w io.Writer) error {
	return reportTemplate.Execute(w, r)
}
