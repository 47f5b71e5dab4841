// Package periph implements the capability dispatch mechanism shared by
// all peripheral back-ends: a handle carrying an opaque backing instance
// plus an immutable table of operation entry points. Call sites written
// against a Handle work over any concrete peripheral without knowing its
// type; gaps in a back-end's table degrade to a documented default
// instead of faulting.
package periph

import (
	"sync/atomic"

	"serialcore-go/errcode"
)

// Op names one abstract operation in a capability table.
type Op string

// OpFunc is a table entry. The backing instance is prepended to the
// caller's arguments by Invoke.
type OpFunc func(inst any, args ...any) (any, error)

// Table is an immutable set of operations for one concrete type.
// Construct it once in the concrete type's package and share it across
// every instance of that type.
type Table struct {
	kind string
	ops  map[Op]OpFunc
}

// NewTable copies ops so later mutation of the caller's map cannot
// reach a published table.
func NewTable(kind string, ops map[Op]OpFunc) *Table {
	t := &Table{kind: kind, ops: make(map[Op]OpFunc, len(ops))}
	for k, v := range ops {
		if v != nil {
			t.ops[k] = v
		}
	}
	return t
}

// Kind names the concrete type behind the table.
func (t *Table) Kind() string { return t.kind }

// Ops lists the wired operations, for discovery/info documents.
func (t *Table) Ops() []Op {
	out := make([]Op, 0, len(t.ops))
	for k := range t.ops {
		out = append(out, k)
	}
	return out
}

// binding pairs the instance with its table so both publish in one
// pointer-sized store: a handle is never observed half-bound.
type binding struct {
	inst any
	tab  *Table
}

// Handle is an abstract peripheral instance. The zero value is valid
// and unbound; every Invoke on it returns the unsupported default.
type Handle struct {
	b atomic.Pointer[binding]
}

// Bind associates the handle with a concrete instance and its table.
// It is a silent no-op when either argument is nil or the handle is
// already bound; only the concrete type's constructor should call it,
// exactly once, while the instance/table pairing is still type-checked.
func (h *Handle) Bind(inst any, tab *Table) {
	if inst == nil || tab == nil {
		return
	}
	h.b.CompareAndSwap(nil, &binding{inst: inst, tab: tab})
}

// Bound reports whether the handle is usable.
func (h *Handle) Bound() bool { return h.b.Load() != nil }

// Kind returns the bound table's kind, or "" when unbound.
func (h *Handle) Kind() string {
	if b := h.b.Load(); b != nil {
		return b.tab.kind
	}
	return ""
}

// Invoke dispatches op through the table with the backing instance
// prepended to args. An unbound handle or a missing table entry yields
// (nil, errcode.Unsupported); dispatch never panics on an incomplete
// back-end. Validating capability coverage is the concrete
// implementation's job, not the dispatch layer's.
func (h *Handle) Invoke(op Op, args ...any) (any, error) {
	b := h.b.Load()
	if b == nil {
		return nil, errcode.Unsupported
	}
	fn, ok := b.tab.ops[op]
	if !ok {
		return nil, errcode.Unsupported
	}
	return fn(b.inst, args...)
}
