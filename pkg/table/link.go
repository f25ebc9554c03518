package table

import (
	"errors"

	"github.com/charmbracelet/log"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Link mirrors the inserts, updates and deletes of one table into another.
// It is registered as a listener on the source table; values are copied by
// column name, and the target keeps its own row ids.
//
// While the source has an edit bracket open, changes are queued and replayed
// when the last bracket closes, so a batch of source edits reaches the
// target as one target edit.
type Link struct {
	target  *Table
	logger  *log.Logger
	rows    map[int]int // source row -> target row
	inhibit int
	pending []linkEvent
	errs    []error
}

type linkEvent struct {
	source     *Table
	start, end int
	col        int
	kind       EventKind
}

// NewLink returns a listener that mirrors changes into target.
// Register it on the source with AddListener, or use [LinkTables].
func NewLink(target *Table) *Link {
	return &Link{target: target, logger: target.logger, rows: make(map[int]int)}
}

// LinkTables copies every row of source into target and keeps target in
// step with later changes to source.
func LinkTables(source, target *Table) (*Link, error) {
	l := NewLink(target)
	for _, row := range source.RowIDs() {
		if err := l.insertRow(source, row); err != nil {
			return nil, err
		}
	}
	source.AddListener(l)
	return l, nil
}

// Target returns the mirrored table.
func (l *Link) Target() *Table { return l.target }

// TargetRow returns the target row mirroring a source row.
func (l *Link) TargetRow(sourceRow int) (int, bool) {
	r, ok := l.rows[sourceRow]
	return r, ok
}

// Err returns the errors met while mirroring, joined, or nil.
func (l *Link) Err() error { return errors.Join(l.errs...) }

// BeginEdit implements [Listener].
func (l *Link) BeginEdit(col int) { l.inhibit++ }

// EndEdit implements [Listener]. Queued changes are replayed once the last
// open bracket closes.
func (l *Link) EndEdit(col int) {
	if l.inhibit--; l.inhibit > 0 {
		return
	}
	l.inhibit = 0
	pending := l.pending
	l.pending = nil
	if len(pending) == 0 {
		return
	}
	edit := l.target.BeginEdit(AllColumns)
	defer edit.End()
	for _, ev := range pending {
		l.apply(ev)
	}
}

// TableChanged implements [Listener].
func (l *Link) TableChanged(t *Table, start, end, col int, kind EventKind) {
	ev := linkEvent{source: t, start: start, end: end, col: col, kind: kind}
	if l.inhibit > 0 {
		l.pending = append(l.pending, ev)
		return
	}
	edit := l.target.BeginEdit(col)
	defer edit.End()
	l.apply(ev)
}

func (l *Link) apply(ev linkEvent) {
	for row := ev.start; row <= ev.end; row++ {
		var err error
		switch ev.kind {
		case Insert:
			if _, mirrored := l.rows[row]; !mirrored && ev.source.IsValidRow(row) {
				err = l.insertRow(ev.source, row)
			}
		case Update:
			err = l.updateRow(ev.source, row, ev.col)
		case Delete:
			if ev.col == AllColumns && !ev.source.IsValidRow(row) {
				if tr, ok := l.rows[row]; ok {
					if l.target.RemoveRow(tr) {
						delete(l.rows, row)
					} else {
						err = oerrors.New(oerrors.ErrCodeUnsupported, "table %s refused to remove row %d", l.target.Name(), tr)
					}
				}
			}
		}
		if err != nil {
			l.errs = append(l.errs, err)
			l.logger.Warn("link mirror failed", "source", ev.source.Name(), "target", l.target.Name(), "row", row, "err", err)
		}
	}
}

func (l *Link) insertRow(source *Table, row int) error {
	tp, ok := source.Tuple(row)
	if !ok {
		return nil
	}
	tr, err := l.target.AddTuple(tp)
	if err != nil {
		return err
	}
	l.rows[row] = tr
	return nil
}

func (l *Link) updateRow(source *Table, row, col int) error {
	tr, ok := l.rows[row]
	if !ok || !source.IsValidRow(row) || !l.target.IsValidRow(tr) {
		return nil
	}
	cols := []int{col}
	if col == AllColumns {
		cols = cols[:0]
		for c := range source.Schema().ColumnCount() {
			cols = append(cols, c)
		}
	}
	for _, c := range cols {
		name := source.Schema().ColumnName(c)
		if !l.target.Schema().HasColumn(name) {
			continue
		}
		v, err := source.Value(row, c)
		if err != nil {
			return err
		}
		if err := l.target.SetField(tr, name, v); err != nil {
			return err
		}
	}
	return nil
}
