package ecs

import "github.com/kamstrup/intmap"

// MatchFunc receives an entity that began matching a monitored query along
// with its component data in query order.
type MatchFunc func(e Entity, components []any) error

type monitorOptions struct {
	onUnmatch func(Entity)
}

// MonitorOption configures a single Poll.
type MonitorOption func(*monitorOptions)

// OnUnmatch registers a callback for entities that stopped matching since the
// previous poll, either because they were destroyed or lost a component.
func OnUnmatch(fn func(Entity)) MonitorOption {
	return func(o *monitorOptions) {
		o.onUnmatch = fn
	}
}

// Monitor wraps a query and reports only the entities that began matching it
// since the last poll.
type Monitor struct {
	query *Query
	known *intmap.Map[Entity, struct{}]
	order []Entity
}

// NewMonitor creates a monitor that has not seen any entity yet.
func NewMonitor(q *Query) *Monitor {
	return &Monitor{
		query: q,
		known: intmap.New[Entity, struct{}](64),
	}
}

// Query returns the monitored query.
func (m *Monitor) Query() *Query {
	return m.query
}

// Known reports whether e was matching at the last poll.
func (m *Monitor) Known(e Entity) bool {
	_, ok := m.known.Get(e)
	return ok
}

// Len returns the number of entities recorded at the last poll.
func (m *Monitor) Len() int {
	return len(m.order)
}

// Poll evaluates the query and calls onMatch once for every matching entity
// the monitor has not recorded, in query order. The recorded set is then
// replaced by the current matching set, so an entity that stops matching is
// reported again when it matches again.
//
// If onMatch fails, the remaining new entities are not reported and stay
// unrecorded, departures are still processed and the error is returned. The
// failing entity is reported again on the next poll.
func (m *Monitor) Poll(ev Evaluator, onMatch MatchFunc, opts ...MonitorOption) error {
	var options monitorOptions
	for _, opt := range opts {
		opt(&options)
	}

	seq, err := ev.Evaluate(m.query)
	if err != nil {
		return err
	}

	current := intmap.New[Entity, struct{}](len(m.order) + 8)
	order := make([]Entity, 0, len(m.order))
	var failure error

	for e, data := range seq {
		if !m.Known(e) {
			if failure != nil {
				continue
			}
			if err := onMatch(e, data); err != nil {
				failure = err
				continue
			}
		}
		current.Put(e, struct{}{})
		order = append(order, e)
	}

	for _, e := range m.order {
		if _, still := current.Get(e); !still && options.onUnmatch != nil {
			options.onUnmatch(e)
		}
	}

	m.known = current
	m.order = order
	return failure
}
