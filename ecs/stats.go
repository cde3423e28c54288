package ecs

import "time"

// SchedulerStats provides statistics about system execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// Stats returns statistics about system execution.
func (w *World) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(w.systems),
		Systems:     make([]SystemStats, len(w.systems)),
	}

	var totalExecs int64
	for i, entry := range w.systems {
		internal := entry.stats

		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Systems[i] = SystemStats{
			Name:           entry.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}

// StorageStats summarizes the contents of a store.
type StorageStats struct {
	TotalEntityCount   int
	ArchetypeCount     int
	SchemaCount        int
	QueryIndexCount    int
	ArchetypeBreakdown []ArchetypeStats
}

// ArchetypeStats describes one archetype. Empty archetypes are still listed.
type ArchetypeStats struct {
	ID          uint32
	Schemas     []string
	EntityCount int
}

// CollectStats walks the store's archetypes and reports entity counts.
func (s *Store) CollectStats() *StorageStats {
	stats := &StorageStats{
		TotalEntityCount:   s.live,
		ArchetypeCount:     len(s.archetypes),
		SchemaCount:        len(s.registry.ordered),
		QueryIndexCount:    s.queries.Len(),
		ArchetypeBreakdown: make([]ArchetypeStats, 0, len(s.archetypes)),
	}

	for _, archetype := range s.archetypes {
		names := make([]string, len(archetype.schemas))
		for i, schema := range archetype.schemas {
			names[i] = schema.name
		}
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:          archetype.id,
			Schemas:     names,
			EntityCount: archetype.Len(),
		})
	}
	return stats
}
