package table

import (
	"regexp"
)

// Predicate selects rows of a table.
type Predicate interface {
	Apply(t *Table, row int) bool
}

// PredicateFunc adapts a function to [Predicate].
type PredicateFunc func(t *Table, row int) bool

// Apply calls f(t, row).
func (f PredicateFunc) Apply(t *Table, row int) bool { return f(t, row) }

// FieldEquals matches rows whose named column equals v.
func FieldEquals(field string, v any) Predicate {
	return PredicateFunc(func(t *Table, row int) bool {
		got, err := t.FieldValue(row, field)
		return err == nil && valuesEqual(got, v)
	})
}

// FieldMatches matches rows whose named column is a string matching re.
func FieldMatches(field string, re *regexp.Regexp) Predicate {
	return PredicateFunc(func(t *Table, row int) bool {
		got, err := t.FieldValue(row, field)
		if err != nil {
			return false
		}
		s, ok := got.(string)
		return ok && re.MatchString(s)
	})
}

// And matches rows satisfying every predicate. With no predicates it
// matches every row.
func And(ps ...Predicate) Predicate {
	return PredicateFunc(func(t *Table, row int) bool {
		for _, p := range ps {
			if !p.Apply(t, row) {
				return false
			}
		}
		return true
	})
}

// Or matches rows satisfying at least one predicate.
func Or(ps ...Predicate) Predicate {
	return PredicateFunc(func(t *Table, row int) bool {
		for _, p := range ps {
			if p.Apply(t, row) {
				return true
			}
		}
		return false
	})
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return PredicateFunc(func(t *Table, row int) bool { return !p.Apply(t, row) })
}

// RowIterator walks valid row ids in increasing order, optionally filtered
// by a predicate. It is lazy: each call to Next scans forward to the next
// matching live row. It cannot be restarted; ask the table for a new one.
//
//	it := t.Filter(table.FieldEquals("kind", "leaf"))
//	for it.Next() {
//	    use(it.Row())
//	}
type RowIterator struct {
	table *Table
	pred  Predicate
	next  uint
	row   int
	done  bool
}

// Next advances to the next matching row and reports whether there is one.
func (it *RowIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		i, ok := it.table.live.NextSet(it.next)
		if !ok {
			it.done = true
			return false
		}
		it.next = i + 1
		if it.pred == nil || it.pred.Apply(it.table, int(i)) {
			it.row = int(i)
			return true
		}
	}
}

// Row returns the current row id. It is only meaningful after Next returned
// true.
func (it *RowIterator) Row() int { return it.row }

// Collect drains the iterator and returns the remaining row ids.
func (it *RowIterator) Collect() []int {
	var rows []int
	for it.Next() {
		rows = append(rows, it.Row())
	}
	return rows
}
