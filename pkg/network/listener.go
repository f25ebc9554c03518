package network

import (
	"slices"
	"time"

	"github.com/matzehuels/obvious/pkg/observability"
	"github.com/matzehuels/obvious/pkg/table"
)

// EventKind classifies a network change.
type EventKind int

// Event kinds. Deletions are negative, matching [table.Delete].
const (
	DeleteEdge EventKind = -2
	DeleteNode EventKind = -1
	UpdateNode EventKind = 0
	UpdateEdge EventKind = 1
	InsertNode EventKind = 2
	InsertEdge EventKind = 3
)

// String returns the event name, e.g. "insert_node".
func (k EventKind) String() string {
	switch k {
	case DeleteEdge:
		return "delete_edge"
	case DeleteNode:
		return "delete_node"
	case UpdateNode:
		return "update_node"
	case UpdateEdge:
		return "update_edge"
	case InsertNode:
		return "insert_node"
	case InsertEdge:
		return "insert_edge"
	}
	return "unknown"
}

// IsNode reports whether the event concerns node rows.
func (k EventKind) IsNode() bool { return k == DeleteNode || k == UpdateNode || k == InsertNode }

// Listener observes a network. NetworkChanged receives the inclusive row
// range of the node or edge table that changed, the column (or
// [table.AllColumns]) and the kind of change. Calls are synchronous and
// happen after the change is applied and all derived indexes are updated.
//
// A listener that also implements [table.InvariantChecker] takes part in
// validating edit brackets.
type Listener interface {
	BeginEdit(col int)
	EndEdit(col int)
	NetworkChanged(nw *Network, start, end, col int, kind EventKind)
}

// Edit is an open network edit bracket. It also holds brackets on both
// backing tables so that their listeners see the same batch.
type Edit struct {
	nw      *Network
	col     int
	started time.Time
	tables  []*table.Edit
	done    bool
	valid   bool
}

// BeginEdit opens an edit bracket on column col (or [table.AllColumns]).
func (nw *Network) BeginEdit(col int) *Edit {
	e := &Edit{
		nw:      nw,
		col:     col,
		started: time.Now(),
		tables:  []*table.Edit{nw.nodes.BeginEdit(col), nw.edges.BeginEdit(col)},
	}
	nw.editing++
	for _, l := range slices.Clone(nw.listeners) {
		l.BeginEdit(col)
	}
	return e
}

// End closes the bracket and reports whether the table brackets and every
// listener implementing [table.InvariantChecker] accepted the result.
// Further calls return the first result.
func (e *Edit) End() bool {
	if e.done {
		return e.valid
	}
	e.done = true

	nw := e.nw
	e.valid = true
	for _, te := range e.tables {
		if !te.End() {
			e.valid = false
		}
	}
	nw.editing--
	listeners := slices.Clone(nw.listeners)
	for _, l := range listeners {
		l.EndEdit(e.col)
	}
	for _, l := range listeners {
		if c, ok := l.(table.InvariantChecker); ok && !c.CheckInvariants() {
			e.valid = false
		}
	}
	observability.Data().OnEditComplete(nw.name, e.col, e.valid, time.Since(e.started))
	return e.valid
}

// IsEditing reports whether a network edit bracket is open.
func (nw *Network) IsEditing() bool { return nw.editing > 0 }

// AddListener registers l. Listeners must be comparable.
func (nw *Network) AddListener(l Listener) {
	if l != nil {
		nw.listeners = append(nw.listeners, l)
	}
}

// RemoveListener unregisters l and reports whether it was registered.
func (nw *Network) RemoveListener(l Listener) bool {
	i := slices.Index(nw.listeners, l)
	if i < 0 {
		return false
	}
	nw.listeners = slices.Delete(nw.listeners, i, i+1)
	return true
}

// Listeners returns a copy of the registered listeners.
func (nw *Network) Listeners() []Listener { return slices.Clone(nw.listeners) }

// FireEvent notifies every listener of a change to rows start through end.
func (nw *Network) FireEvent(start, end, col int, kind EventKind) {
	if len(nw.listeners) == 0 {
		return
	}
	nw.notifying++
	defer func() { nw.notifying-- }()
	for _, l := range slices.Clone(nw.listeners) {
		l.NetworkChanged(nw, start, end, col, kind)
	}
}
