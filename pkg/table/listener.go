package table

import (
	"slices"
	"time"

	"github.com/matzehuels/obvious/pkg/observability"
)

// EventKind classifies a table change.
type EventKind int

const (
	// Delete reports removed rows.
	Delete EventKind = -1
	// Update reports changed values in existing rows.
	Update EventKind = 0
	// Insert reports added rows.
	Insert EventKind = 1
)

// AllColumns is the column argument of events that affect whole rows.
const AllColumns = -1

// String returns "insert", "update" or "delete".
func (k EventKind) String() string {
	switch k {
	case Delete:
		return "delete"
	case Update:
		return "update"
	case Insert:
		return "insert"
	}
	return "unknown"
}

// Listener observes a table. TableChanged is called synchronously after each
// successful mutation with the inclusive row range affected, the column
// (or [AllColumns]) and the kind of change.
//
// BeginEdit and EndEdit forward the table's edit brackets so that a listener
// can batch or suppress work between them. Events are delivered inside
// brackets too; what to do with them is up to the listener.
//
// A listener must not mutate the table that is notifying it.
type Listener interface {
	BeginEdit(col int)
	EndEdit(col int)
	TableChanged(t *Table, start, end, col int, kind EventKind)
}

// InvariantChecker is implemented by listeners that validate state when an
// edit bracket closes. Returning false marks the edit as failed.
type InvariantChecker interface {
	CheckInvariants() bool
}

// Edit is an open edit bracket returned by [Table.BeginEdit].
// Call End exactly once; further calls are no-ops returning the first result.
//
//	edit := t.BeginEdit(table.AllColumns)
//	defer edit.End()
type Edit struct {
	table   *Table
	col     int
	started time.Time
	done    bool
	valid   bool
}

// BeginEdit opens an edit bracket on column col (or [AllColumns]) and
// forwards it to the listeners. Mutations inside the bracket apply
// immediately; the bracket is advisory and never rolls anything back.
func (t *Table) BeginEdit(col int) *Edit {
	t.edits[col]++
	for _, l := range slices.Clone(t.listeners) {
		l.BeginEdit(col)
	}
	return &Edit{table: t, col: col, started: time.Now()}
}

// IsEditing reports whether an edit bracket is open on col.
func (t *Table) IsEditing(col int) bool { return t.edits[col] > 0 }

// End closes the bracket, forwards EndEdit to the listeners and reports
// whether every listener implementing [InvariantChecker] accepted the
// resulting state.
func (e *Edit) End() bool {
	if e.done {
		return e.valid
	}
	e.done = true

	t := e.table
	if t.edits[e.col]--; t.edits[e.col] <= 0 {
		delete(t.edits, e.col)
	}
	listeners := slices.Clone(t.listeners)
	for _, l := range listeners {
		l.EndEdit(e.col)
	}
	e.valid = true
	for _, l := range listeners {
		if c, ok := l.(InvariantChecker); ok && !c.CheckInvariants() {
			e.valid = false
		}
	}
	observability.Data().OnEditComplete(t.name, e.col, e.valid, time.Since(e.started))
	if !e.valid {
		t.logger.Warn("edit failed invariant check", "table", t.name, "col", e.col)
	}
	return e.valid
}

// Column returns the column the bracket was opened on.
func (e *Edit) Column() int { return e.col }
