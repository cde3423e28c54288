package ecs

import (
	"fmt"
	"time"
)

type hookKind uint8

const (
	hookInit hookKind = iota + 1
	hookMonitor
	hookRef
	hookInterval
)

func (k hookKind) String() string {
	switch k {
	case hookInit:
		return "UseInit"
	case hookMonitor:
		return "UseMonitor"
	case hookRef:
		return "UseRef"
	case hookInterval:
		return "UseInterval"
	}
	return "unknown hook"
}

type hookCell struct {
	kind  hookKind
	value any
}

// hookState is the private state table of one system registration. Cells are
// addressed by the order in which the system calls hooks during a tick.
type hookState struct {
	cells  []hookCell
	cursor int
}

func (h *hookState) next(system string, kind hookKind, init func() any) any {
	slot := h.cursor
	h.cursor++

	if slot == len(h.cells) {
		h.cells = append(h.cells, hookCell{kind: kind, value: init()})
	}

	cell := h.cells[slot]
	if cell.kind != kind {
		panic(fmt.Sprintf("system %q: hook slot %d was %s and is now %s; hooks must be called in the same order every tick",
			system, slot, cell.kind, kind))
	}
	return cell.value
}

type intervalState struct {
	accumulated time.Duration
}

// UseInit returns true the first time the calling system runs and false on
// every later tick of the same registration.
func (c *Context) UseInit() bool {
	used := c.system.hooks.next(c.system.name, hookInit, func() any {
		return new(bool)
	}).(*bool)

	if *used {
		return false
	}
	*used = true
	return true
}

// UseMonitor polls a monitor private to this call site of the system, calling
// onMatch for entities that began matching q since the system last ran.
func (c *Context) UseMonitor(q *Query, onMatch MatchFunc, opts ...MonitorOption) error {
	m := c.system.hooks.next(c.system.name, hookMonitor, func() any {
		return NewMonitor(q)
	}).(*Monitor)

	if m.query != q {
		panic(fmt.Sprintf("system %q: UseMonitor call site switched queries", c.system.name))
	}
	return m.Poll(c, onMatch, opts...)
}

// UseInterval returns true on ticks where the elapsed time accumulated by this
// call site reaches d.
func (c *Context) UseInterval(d time.Duration) bool {
	if d <= 0 {
		panic("UseInterval requires a positive duration")
	}

	state := c.system.hooks.next(c.system.name, hookInterval, func() any {
		return &intervalState{}
	}).(*intervalState)

	state.accumulated += c.tick.Elapsed
	if state.accumulated < d {
		return false
	}
	state.accumulated %= d
	return true
}

// UseRef returns a value that persists across ticks for this call site of the
// system, starting at initial.
func UseRef[T any](c *Context, initial T) *T {
	value := c.system.hooks.next(c.system.name, hookRef, func() any {
		ref := new(T)
		*ref = initial
		return ref
	})

	ref, ok := value.(*T)
	if !ok {
		panic(fmt.Sprintf("system %q: UseRef call site switched from %T to %T", c.system.name, value, ref))
	}
	return ref
}
