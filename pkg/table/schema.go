package table

import (
	"fmt"
	"slices"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Column describes one schema column.
type Column struct {
	Name    string // Unique within the schema
	Type    Type   // Declared semantic type
	Default any    // Value used to fill new rows (may be nil)
}

// String returns a compact "name:type" description.
func (c Column) String() string { return fmt.Sprintf("%s:%s", c.Name, c.Type) }

// schemaObserver keeps table storage in step with schema column changes.
type schemaObserver interface {
	columnAdded(col int, def any)
	columnRemoved(col int)
}

// Schema is an ordered list of named, typed columns with default values.
// It is the single source of truth for what a row may contain.
//
// A schema is owned by reference by every table built on it. Adding or
// removing a column updates the storage of those tables. Tuples reference
// a schema but never own it.
//
// The zero value is an empty, usable schema.
type Schema struct {
	columns   []Column
	index     map[string]int
	observers []schemaObserver
}

// NewSchema returns a schema holding cols in order. It fails if a column
// name is invalid or repeated, or if a default does not fit its column type.
func NewSchema(cols ...Column) (*Schema, error) {
	s := &Schema{}
	for _, c := range cols {
		if _, err := s.AddColumn(c.Name, c.Type, c.Default); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is like [NewSchema] but panics on error.
// It is intended for package-level schema literals and tests.
func MustSchema(cols ...Column) *Schema {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// ColumnCount returns the number of columns.
func (s *Schema) ColumnCount() int { return len(s.columns) }

// Columns returns a copy of the column definitions in order.
func (s *Schema) Columns() []Column { return slices.Clone(s.columns) }

// Column returns the definition at col.
func (s *Schema) Column(col int) (Column, bool) {
	if !s.validColumn(col) {
		return Column{}, false
	}
	return s.columns[col], true
}

// ColumnName returns the name of column col, or "" when col is out of range.
func (s *Schema) ColumnName(col int) string {
	if !s.validColumn(col) {
		return ""
	}
	return s.columns[col].Name
}

// ColumnType returns the type of column col, or [TypeInvalid] when col is
// out of range.
func (s *Schema) ColumnType(col int) Type {
	if !s.validColumn(col) {
		return TypeInvalid
	}
	return s.columns[col].Type
}

// ColumnDefault returns the default of column col, or nil when col is out of
// range.
func (s *Schema) ColumnDefault(col int) any {
	if !s.validColumn(col) {
		return nil
	}
	return s.columns[col].Default
}

// ColumnIndex returns the position of the named column, or -1.
func (s *Schema) ColumnIndex(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the schema has a column called name.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.index[name]
	return ok
}

// FieldType returns the type of the named column, or [TypeInvalid].
func (s *Schema) FieldType(name string) Type { return s.ColumnType(s.ColumnIndex(name)) }

// CanGet reports whether values of column col may be read as typ, that is
// whether typ equals the column type or is one of its supertypes.
// It is false for an out-of-range column or an invalid type.
func (s *Schema) CanGet(col int, typ Type) bool {
	if !s.validColumn(col) {
		return false
	}
	return typ.AssignableFrom(s.columns[col].Type)
}

// CanSet reports whether column col may be written through an accessor of
// type typ. It uses the same rule as [Schema.CanGet]; the value actually
// written is checked with [Schema.Accepts].
func (s *Schema) CanSet(col int, typ Type) bool { return s.CanGet(col, typ) }

// CanGetField is [Schema.CanGet] by column name.
func (s *Schema) CanGetField(name string, typ Type) bool {
	return s.CanGet(s.ColumnIndex(name), typ)
}

// CanSetField is [Schema.CanSet] by column name.
func (s *Schema) CanSetField(name string, typ Type) bool {
	return s.CanSet(s.ColumnIndex(name), typ)
}

// Accepts reports whether v may be stored in column col.
func (s *Schema) Accepts(col int, v any) bool {
	_, err := s.convert(col, v)
	return err == nil
}

// convert validates v against column col and returns the value to store.
func (s *Schema) convert(col int, v any) (any, error) {
	if !s.validColumn(col) {
		return nil, oerrors.New(oerrors.ErrCodeInvalidReference, "column %d out of range [0,%d)", col, len(s.columns))
	}
	out, err := convertValue(s.columns[col].Type, v)
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "column %q", s.columns[col].Name)
	}
	return out, nil
}

// AddColumn appends a column and returns its index. Names must be valid and
// unique, the type must be valid and the default must fit the type.
// Tables attached to the schema gain the column, filled with def.
func (s *Schema) AddColumn(name string, typ Type, def any) (int, error) {
	if err := oerrors.ValidateColumnName(name); err != nil {
		return -1, err
	}
	if s.HasColumn(name) {
		return -1, oerrors.New(oerrors.ErrCodeDuplicateColumn, "column %q already exists", name)
	}
	if !typ.Valid() {
		return -1, oerrors.New(oerrors.ErrCodeInvalidInput, "column %q has invalid type %s", name, typ)
	}
	def, err := convertValue(typ, def)
	if err != nil {
		return -1, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "default for column %q", name)
	}

	if s.index == nil {
		s.index = make(map[string]int)
	}
	col := len(s.columns)
	s.columns = append(s.columns, Column{Name: name, Type: typ, Default: def})
	s.index[name] = col
	for _, o := range s.observers {
		o.columnAdded(col, def)
	}
	return col, nil
}

// RemoveColumn removes column col, shifting later columns down by one.
// It returns false when col is out of range.
func (s *Schema) RemoveColumn(col int) bool {
	if !s.validColumn(col) {
		return false
	}
	s.columns = slices.Delete(s.columns, col, col+1)
	s.reindex()
	for _, o := range s.observers {
		o.columnRemoved(col)
	}
	return true
}

// RemoveField removes the named column. It returns false when absent.
func (s *Schema) RemoveField(name string) bool {
	return s.RemoveColumn(s.ColumnIndex(name))
}

// Clone returns a detached copy of the schema with no attached tables.
func (s *Schema) Clone() *Schema {
	c := &Schema{columns: slices.Clone(s.columns)}
	c.reindex()
	return c
}

// Equal reports whether both schemas have the same columns in the same order,
// with equal names, types and defaults.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if other == nil || len(s.columns) != len(other.columns) {
		return false
	}
	for i, c := range s.columns {
		o := other.columns[i]
		if c.Name != o.Name || c.Type != o.Type || !valuesEqual(c.Default, o.Default) {
			return false
		}
	}
	return true
}

// Describe returns the schema as a table with one row per column and the
// columns Name, Type and DefaultValue. The result is a snapshot: later
// schema changes are not reflected in it.
func (s *Schema) Describe() *Table {
	meta := &Schema{}
	_, _ = meta.AddColumn("Name", TypeString, nil)
	_, _ = meta.AddColumn("Type", TypeString, nil)
	_, _ = meta.AddColumn("DefaultValue", TypeAny, nil)

	t := New(meta, WithName("schema"))
	for _, c := range s.columns {
		row, _ := t.AddRow()
		t.cols[0][row] = c.Name
		t.cols[1][row] = c.Type.String()
		t.cols[2][row] = c.Default
	}
	return t
}

// String lists the columns as "name:type" pairs.
func (s *Schema) String() string { return fmt.Sprint(s.columns) }

func (s *Schema) validColumn(col int) bool { return col >= 0 && col < len(s.columns) }

func (s *Schema) reindex() {
	s.index = make(map[string]int, len(s.columns))
	for i, c := range s.columns {
		s.index[c.Name] = i
	}
}

func (s *Schema) attach(o schemaObserver) { s.observers = append(s.observers, o) }

func (s *Schema) detach(o schemaObserver) {
	s.observers = slices.DeleteFunc(s.observers, func(x schemaObserver) bool { return x == o })
}
