package table

import (
	"fmt"
	"strings"
	"time"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Tuple is a single-row view. A bound tuple addresses a row of a [Table] and
// reads and writes through it. A detached tuple, built with [NewTuple], owns
// a private copy of its schema and a fixed set of values; it acquires a row
// id only when inserted with [Table.AddTuple].
//
// Two tuples are equal when they have the same number of columns and every
// column holds an equal value (see [Tuple.Equal]). Row ids play no part.
type Tuple struct {
	table  *Table
	schema *Schema
	row    int
	values []any // detached only
}

// NewTuple builds a detached tuple over a private copy of schema. Values are
// given in column order; missing trailing values take the column defaults.
// It fails with SCHEMA_MISMATCH when more values than columns are given or a
// value does not fit its column.
func NewTuple(schema *Schema, values ...any) (*Tuple, error) {
	if schema == nil {
		schema = &Schema{}
	}
	if len(values) > schema.ColumnCount() {
		return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch, "%d values for %d columns", len(values), schema.ColumnCount())
	}
	s := schema.Clone()
	vals := make([]any, s.ColumnCount())
	for c := range vals {
		if c >= len(values) {
			vals[c] = s.columns[c].Default
			continue
		}
		v, err := s.convert(c, values[c])
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeSchemaMismatch, err, "tuple value %d", c)
		}
		vals[c] = v
	}
	return &Tuple{schema: s, row: -1, values: vals}, nil
}

// MustTuple is like [NewTuple] but panics on error.
func MustTuple(schema *Schema, values ...any) *Tuple {
	tp, err := NewTuple(schema, values...)
	if err != nil {
		panic(err)
	}
	return tp
}

// TupleFromMap builds a detached tuple from a column-name keyed map.
// Columns absent from the map take their defaults.
func TupleFromMap(schema *Schema, fields map[string]any) (*Tuple, error) {
	tp, err := NewTuple(schema)
	if err != nil {
		return nil, err
	}
	for name, v := range fields {
		col := tp.schema.ColumnIndex(name)
		if col < 0 {
			return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch, "schema has no column %q", name)
		}
		if err := tp.Set(col, v); err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeSchemaMismatch, err, "field %q", name)
		}
	}
	return tp, nil
}

// Schema returns the schema the tuple conforms to.
func (tp *Tuple) Schema() *Schema { return tp.schema }

// Table returns the backing table, or nil for a detached tuple.
func (tp *Tuple) Table() *Table { return tp.table }

// Row returns the row id, or -1 for a detached tuple.
func (tp *Tuple) Row() int { return tp.row }

// IsDetached reports whether the tuple is not bound to a table row.
func (tp *Tuple) IsDetached() bool { return tp.table == nil }

// IsValid reports whether the tuple can be read: always true when detached,
// otherwise true while its row is valid.
func (tp *Tuple) IsValid() bool {
	return tp.table == nil || tp.table.IsValidRow(tp.row)
}

// ColumnCount returns the number of columns.
func (tp *Tuple) ColumnCount() int { return tp.schema.ColumnCount() }

// Get returns the value of column col.
func (tp *Tuple) Get(col int) (any, error) {
	if tp.table != nil {
		return tp.table.Value(tp.row, col)
	}
	if !tp.schema.validColumn(col) {
		return nil, oerrors.New(oerrors.ErrCodeInvalidReference, "tuple has no column %d", col)
	}
	return tp.values[col], nil
}

// GetField returns the value of the named column.
func (tp *Tuple) GetField(field string) (any, error) {
	col, err := tp.column(field)
	if err != nil {
		return nil, err
	}
	return tp.Get(col)
}

// Set stores v in column col. Bound tuples write through to the table and
// fire its update event.
func (tp *Tuple) Set(col int, v any) error {
	if tp.table != nil {
		return tp.table.Set(tp.row, col, v)
	}
	v, err := tp.schema.convert(col, v)
	if err != nil {
		return err
	}
	tp.values[col] = v
	return nil
}

// SetField stores v in the named column.
func (tp *Tuple) SetField(field string, v any) error {
	col, err := tp.column(field)
	if err != nil {
		return err
	}
	return tp.Set(col, v)
}

// Default returns the schema default of the named column, or nil.
func (tp *Tuple) Default(field string) any {
	return tp.schema.ColumnDefault(tp.schema.ColumnIndex(field))
}

// RevertToDefault resets the named column to its schema default.
func (tp *Tuple) RevertToDefault(field string) error {
	col, err := tp.column(field)
	if err != nil {
		return err
	}
	return tp.Set(col, tp.schema.columns[col].Default)
}

// Values returns the values in column order, or nil when the tuple's row has
// been removed.
func (tp *Tuple) Values() []any {
	if !tp.IsValid() {
		return nil
	}
	out := make([]any, tp.schema.ColumnCount())
	for c := range out {
		out[c], _ = tp.Get(c)
	}
	return out
}

// Fields returns the values keyed by column name.
func (tp *Tuple) Fields() map[string]any {
	vals := tp.Values()
	out := make(map[string]any, len(vals))
	for c, v := range vals {
		out[tp.schema.columns[c].Name] = v
	}
	return out
}

// Equal reports whether both tuples have the same column count and equal
// values in every column, matched by column name. Nil equals only nil.
func (tp *Tuple) Equal(other *Tuple) bool {
	if tp == other {
		return true
	}
	if other == nil {
		return false
	}
	return tuplesEqual(tp, other)
}

// Hash returns a hash consistent with [Tuple.Equal].
func (tp *Tuple) Hash() uint64 { return tupleHash(tp) }

// String formats the tuple as "{name=value, ...}".
func (tp *Tuple) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for c, v := range tp.Values() {
		if c > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", tp.schema.columns[c].Name, v)
	}
	b.WriteByte('}')
	return b.String()
}

func (tp *Tuple) column(field string) (int, error) {
	col := tp.schema.ColumnIndex(field)
	if col < 0 {
		return -1, oerrors.New(oerrors.ErrCodeInvalidReference, "tuple has no column %q", field)
	}
	return col, nil
}

// Typed accessors. A nil value reads as the zero value of the requested type;
// a value of another type is a TYPE_MISMATCH error, never a truncation.

func typedAt[T any](tp *Tuple, col int, typ Type) (T, error) {
	var zero T
	v, err := tp.Get(col)
	if err != nil || v == nil {
		return zero, err
	}
	if x, ok := v.(T); ok {
		return x, nil
	}
	if w, err := convertValue(typ, v); err == nil {
		if x, ok := w.(T); ok {
			return x, nil
		}
	}
	return zero, oerrors.New(oerrors.ErrCodeTypeMismatch, "column %q holds %T, not %s", tp.schema.ColumnName(col), v, typ)
}

func typedField[T any](tp *Tuple, field string, typ Type) (T, error) {
	col, err := tp.column(field)
	if err != nil {
		var zero T
		return zero, err
	}
	return typedAt[T](tp, col, typ)
}

// GetIntAt returns column col as an int.
func (tp *Tuple) GetIntAt(col int) (int, error) { return typedAt[int](tp, col, TypeInt) }

// GetLongAt returns column col as an int64.
func (tp *Tuple) GetLongAt(col int) (int64, error) { return typedAt[int64](tp, col, TypeLong) }

// GetFloatAt returns column col as a float32.
func (tp *Tuple) GetFloatAt(col int) (float32, error) { return typedAt[float32](tp, col, TypeFloat) }

// GetDoubleAt returns column col as a float64.
func (tp *Tuple) GetDoubleAt(col int) (float64, error) { return typedAt[float64](tp, col, TypeDouble) }

// GetBoolAt returns column col as a bool.
func (tp *Tuple) GetBoolAt(col int) (bool, error) { return typedAt[bool](tp, col, TypeBool) }

// GetStringAt returns column col as a string.
func (tp *Tuple) GetStringAt(col int) (string, error) { return typedAt[string](tp, col, TypeString) }

// GetTimeAt returns column col as a time.Time.
func (tp *Tuple) GetTimeAt(col int) (time.Time, error) { return typedAt[time.Time](tp, col, TypeTime) }

// GetInt returns the named column as an int.
func (tp *Tuple) GetInt(field string) (int, error) { return typedField[int](tp, field, TypeInt) }

// GetLong returns the named column as an int64. Int values are widened.
func (tp *Tuple) GetLong(field string) (int64, error) { return typedField[int64](tp, field, TypeLong) }

// GetFloat returns the named column as a float32.
func (tp *Tuple) GetFloat(field string) (float32, error) {
	return typedField[float32](tp, field, TypeFloat)
}

// GetDouble returns the named column as a float64. Float32 values are widened.
func (tp *Tuple) GetDouble(field string) (float64, error) {
	return typedField[float64](tp, field, TypeDouble)
}

// GetBool returns the named column as a bool.
func (tp *Tuple) GetBool(field string) (bool, error) { return typedField[bool](tp, field, TypeBool) }

// GetString returns the named column as a string.
func (tp *Tuple) GetString(field string) (string, error) {
	return typedField[string](tp, field, TypeString)
}

// GetTime returns the named column as a time.Time.
func (tp *Tuple) GetTime(field string) (time.Time, error) {
	return typedField[time.Time](tp, field, TypeTime)
}

// SetInt stores an int in the named column.
func (tp *Tuple) SetInt(field string, v int) error { return tp.SetField(field, v) }

// SetLong stores an int64 in the named column.
func (tp *Tuple) SetLong(field string, v int64) error { return tp.SetField(field, v) }

// SetFloat stores a float32 in the named column.
func (tp *Tuple) SetFloat(field string, v float32) error { return tp.SetField(field, v) }

// SetDouble stores a float64 in the named column.
func (tp *Tuple) SetDouble(field string, v float64) error { return tp.SetField(field, v) }

// SetBool stores a bool in the named column.
func (tp *Tuple) SetBool(field string, v bool) error { return tp.SetField(field, v) }

// SetString stores a string in the named column.
func (tp *Tuple) SetString(field string, v string) error { return tp.SetField(field, v) }

// SetTime stores a time.Time in the named column.
func (tp *Tuple) SetTime(field string, v time.Time) error { return tp.SetField(field, v) }
