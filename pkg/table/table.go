package table

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/observability"
)

// Capabilities declares which structural mutations a table permits.
type Capabilities struct {
	CanAddRow    bool // AddRow, AddTuple, AddValues and AddRowAt are allowed
	CanRemoveRow bool // RemoveRow and RemoveAllRows are allowed
}

// DefaultCapabilities permits every mutation.
func DefaultCapabilities() Capabilities {
	return Capabilities{CanAddRow: true, CanRemoveRow: true}
}

// Option configures a [Table].
type Option func(*Table)

// WithName sets the table name used in logs and observability hooks.
func WithName(name string) Option {
	return func(t *Table) { t.name = name }
}

// WithCapabilities restricts the structural mutations the table allows.
func WithCapabilities(c Capabilities) Option {
	return func(t *Table) { t.caps = c }
}

// WithLogger sets the logger used for debug output. Nil keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// Table is a mutable, row-indexed collection of values conforming to a
// [Schema].
//
// Storage is an arena: values live in one slice per column, indexed by row
// id, with a bitset marking live rows. Row ids are assigned in increasing
// order and are never reused; removing a row tombstones its id for the rest
// of the table's lifetime.
//
// Every successful mutation notifies the registered listeners synchronously
// before returning. A listener must not mutate the table that is notifying
// it; such calls fail with REENTRANT.
//
// The zero value is not usable - use New. Table is not safe for concurrent
// use without external synchronization.
type Table struct {
	id     uuid.UUID
	name   string
	schema *Schema
	caps   Capabilities
	logger *log.Logger

	cols  [][]any        // column-major values, cols[col][row]
	live  *bitset.BitSet // live row ids
	size  int            // next row id
	count int            // live rows

	listeners []Listener
	edits     map[int]int // column -> open edit brackets
	notifying int
}

// New creates an empty table over schema. The table references the schema:
// later AddColumn/RemoveColumn calls on it reshape this table's storage
// until the table is closed.
// A nil schema is replaced by an empty one.
func New(schema *Schema, opts ...Option) *Table {
	if schema == nil {
		schema = &Schema{}
	}
	t := &Table{
		id:     uuid.New(),
		schema: schema,
		caps:   DefaultCapabilities(),
		logger: log.Default(),
		cols:   make([][]any, schema.ColumnCount()),
		live:   bitset.New(0),
		edits:  make(map[int]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.name == "" {
		t.name = t.id.String()[:8]
	}
	schema.attach(t)
	return t
}

// Close detaches the table from its schema and drops its listeners. Later
// column changes on a shared schema no longer reach it, and the schema stops
// referencing it. The table must not be used afterwards. Close is idempotent.
func (t *Table) Close() {
	t.schema.detach(t)
	t.listeners = nil
}

// NewFrom creates a table pre-populated with the live rows of src, keeping
// their row ids and values. The schema is copied, so later column changes
// on either table do not affect the other. Capabilities given in opts only
// restrict mutations made after construction.
func NewFrom(src *Table, opts ...Option) *Table {
	t := New(src.schema.Clone(), opts...)
	for i, ok := src.live.NextSet(0); ok; i, ok = src.live.NextSet(i + 1) {
		row := int(i)
		vals := make([]any, len(src.cols))
		for c := range src.cols {
			vals[c] = src.cols[c][row]
		}
		t.insert(row, vals)
	}
	return t
}

// ID returns the unique instance id assigned at construction.
func (t *Table) ID() uuid.UUID { return t.id }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// Capabilities returns the structural mutations the table permits.
func (t *Table) Capabilities() Capabilities { return t.caps }

// CanAddRow reports whether rows may be added.
func (t *Table) CanAddRow() bool { return t.caps.CanAddRow }

// CanRemoveRow reports whether rows may be removed.
func (t *Table) CanRemoveRow() bool { return t.caps.CanRemoveRow }

// RowCount returns the number of live rows.
func (t *Table) RowCount() int { return t.count }

// RowCapacity returns one past the highest row id ever assigned.
// Every valid row id is below it.
func (t *Table) RowCapacity() int { return t.size }

// IsValidRow reports whether row has been added and not removed.
func (t *Table) IsValidRow(row int) bool {
	return row >= 0 && row < t.size && t.live.Test(uint(row))
}

// IsValueValid reports whether (row, col) addresses a stored value.
func (t *Table) IsValueValid(row, col int) bool {
	return t.IsValidRow(row) && t.schema.validColumn(col)
}

// Value returns the value at (row, col). It fails with INVALID_REFERENCE when
// the row or column does not exist.
func (t *Table) Value(row, col int) (any, error) {
	if err := t.checkCell(row, col); err != nil {
		return nil, err
	}
	return t.cols[col][row], nil
}

// FieldValue returns the value of the named column at row.
func (t *Table) FieldValue(row int, field string) (any, error) {
	col, err := t.column(field)
	if err != nil {
		return nil, err
	}
	return t.Value(row, col)
}

// Set stores v at (row, col) and fires an update event. The value must fit
// the column type (see [Schema.Accepts]); otherwise the table is left
// unchanged and a TYPE_MISMATCH error is returned.
func (t *Table) Set(row, col int, v any) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	v, err := t.schema.convert(col, v)
	if err != nil {
		return err
	}
	t.cols[col][row] = v
	t.logger.Debug("value set", "table", t.name, "row", row, "col", col)
	t.FireEvent(row, row, col, Update)
	return nil
}

// SetField is [Table.Set] by column name.
func (t *Table) SetField(row int, field string, v any) error {
	col, err := t.column(field)
	if err != nil {
		return err
	}
	return t.Set(row, col, v)
}

// AddRow appends a row filled with the column defaults and returns its id.
// It returns -1 and an UNSUPPORTED error when the table cannot add rows.
func (t *Table) AddRow() (int, error) {
	if err := t.checkAdd(); err != nil {
		return -1, err
	}
	return t.insert(t.size, t.defaults()), nil
}

// AddRowAt appends a default row with the given id, which must not be below
// [Table.RowCapacity]. Skipped ids become permanently invalid. It is used to
// rebuild tables with their original row ids.
func (t *Table) AddRowAt(row int) (int, error) {
	if err := t.checkAdd(); err != nil {
		return -1, err
	}
	if row < t.size {
		return -1, oerrors.New(oerrors.ErrCodeInvalidReference, "row id %d already assigned (next is %d)", row, t.size)
	}
	return t.insert(row, t.defaults()), nil
}

// AddTuple appends a row holding tp's values, copied by column name, and
// returns its id. Columns of this table that tp lacks get their defaults.
// It fails with SCHEMA_MISMATCH, leaving the table unchanged, when tp has a
// column this table lacks or a value that does not fit its column type.
// A nil tuple behaves like [Table.AddRow].
func (t *Table) AddTuple(tp *Tuple) (int, error) {
	if tp == nil {
		return t.AddRow()
	}
	if !tp.IsValid() {
		return -1, oerrors.New(oerrors.ErrCodeInvalidReference, "tuple refers to removed row %d", tp.row)
	}
	return t.AddValues(tp.Fields())
}

// AddValues appends a row from a column-name keyed map and returns its id.
// It follows the rules of [Table.AddTuple].
func (t *Table) AddValues(values map[string]any) (int, error) {
	if err := t.checkAdd(); err != nil {
		return -1, err
	}
	row, err := t.prepare(values)
	if err != nil {
		return -1, err
	}
	return t.insert(t.size, row), nil
}

// RemoveRow removes row and fires a delete event. It returns false when the
// row is not valid, the table cannot remove rows, or the table is currently
// notifying listeners.
func (t *Table) RemoveRow(row int) bool {
	if !t.caps.CanRemoveRow || !t.IsValidRow(row) {
		return false
	}
	if err := t.checkMutable(); err != nil {
		t.logger.Warn("remove rejected", "table", t.name, "row", row, "err", err)
		return false
	}
	t.tombstone(row)
	t.logger.Debug("row removed", "table", t.name, "row", row)
	t.FireEvent(row, row, AllColumns, Delete)
	return true
}

// RemoveAllRows removes every live row, keeping the schema, and returns the
// number removed. One delete event fires per contiguous run of removed ids.
func (t *Table) RemoveAllRows() int {
	if !t.caps.CanRemoveRow || t.count == 0 {
		return 0
	}
	if err := t.checkMutable(); err != nil {
		t.logger.Warn("remove all rejected", "table", t.name, "err", err)
		return 0
	}

	var runs [][2]int
	for i, ok := t.live.NextSet(0); ok; i, ok = t.live.NextSet(i + 1) {
		row := int(i)
		if n := len(runs); n > 0 && runs[n-1][1] == row-1 {
			runs[n-1][1] = row
		} else {
			runs = append(runs, [2]int{row, row})
		}
	}
	removed := t.count
	for _, r := range runs {
		for row := r[0]; row <= r[1]; row++ {
			t.tombstone(row)
		}
	}
	t.logger.Debug("rows cleared", "table", t.name, "count", removed)
	for _, r := range runs {
		t.FireEvent(r[0], r[1], AllColumns, Delete)
	}
	return removed
}

// Tuple returns a view bound to row, or false when the row is not valid.
func (t *Table) Tuple(row int) (*Tuple, bool) {
	if !t.IsValidRow(row) {
		return nil, false
	}
	return &Tuple{table: t, schema: t.schema, row: row}, true
}

// Rows returns an iterator over the valid row ids in increasing order.
func (t *Table) Rows() *RowIterator { return &RowIterator{table: t} }

// Filter returns an iterator over the valid row ids whose row satisfies p.
// The predicate is evaluated lazily as the iterator advances.
func (t *Table) Filter(p Predicate) *RowIterator { return &RowIterator{table: t, pred: p} }

// RowIDs returns the valid row ids in increasing order.
func (t *Table) RowIDs() []int { return t.Rows().Collect() }

// AddColumn adds a column to the table's schema. Every table sharing the
// schema gains the column, filled with def.
func (t *Table) AddColumn(name string, typ Type, def any) (int, error) {
	if err := t.checkMutable(); err != nil {
		return -1, err
	}
	return t.schema.AddColumn(name, typ, def)
}

// RemoveColumn removes a column from the table's schema by index.
func (t *Table) RemoveColumn(col int) bool {
	if t.notifying > 0 {
		return false
	}
	return t.schema.RemoveColumn(col)
}

// AddListener registers l. Listeners must be comparable (typically
// pointers) so that they can be removed again.
func (t *Table) AddListener(l Listener) {
	if l != nil {
		t.listeners = append(t.listeners, l)
	}
}

// RemoveListener unregisters l and reports whether it was registered.
func (t *Table) RemoveListener(l Listener) bool {
	i := slices.Index(t.listeners, l)
	if i < 0 {
		return false
	}
	t.listeners = slices.Delete(t.listeners, i, i+1)
	return true
}

// Listeners returns a copy of the registered listeners.
func (t *Table) Listeners() []Listener { return slices.Clone(t.listeners) }

// FireEvent notifies every listener that rows start through end (inclusive)
// changed in column col. The table calls it after each mutation; adapters
// that change storage behind the table's back may call it themselves.
func (t *Table) FireEvent(start, end, col int, kind EventKind) {
	observability.Data().OnMutation(t.name, kind.String(), start, end)
	if len(t.listeners) == 0 {
		return
	}
	t.notifying++
	defer func() { t.notifying-- }()
	for _, l := range slices.Clone(t.listeners) {
		l.TableChanged(t, start, end, col, kind)
	}
}

// Notifying reports whether the table is currently delivering an event.
func (t *Table) Notifying() bool { return t.notifying > 0 }

// insert stores vals at row, extending storage, and fires an insert event.
func (t *Table) insert(row int, vals []any) int {
	if row >= t.size {
		n := row + 1
		for c := range t.cols {
			col := slices.Grow(t.cols[c], n-len(t.cols[c]))[:n]
			clear(col[t.size:])
			t.cols[c] = col
		}
		t.size = n
	}
	for c, v := range vals {
		t.cols[c][row] = v
	}
	t.live.Set(uint(row))
	t.count++
	t.logger.Debug("row added", "table", t.name, "row", row)
	t.FireEvent(row, row, AllColumns, Insert)
	return row
}

func (t *Table) tombstone(row int) {
	for c := range t.cols {
		t.cols[c][row] = nil
	}
	t.live.Clear(uint(row))
	t.count--
}

func (t *Table) defaults() []any {
	vals := make([]any, t.schema.ColumnCount())
	for c := range vals {
		vals[c] = t.schema.columns[c].Default
	}
	return vals
}

// prepare validates a name-keyed row against the schema and returns it in
// column order, defaults filled in.
func (t *Table) prepare(values map[string]any) ([]any, error) {
	row := t.defaults()
	for name, v := range values {
		col := t.schema.ColumnIndex(name)
		if col < 0 {
			return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch, "table %s has no column %q", t.name, name)
		}
		cv, err := t.schema.convert(col, v)
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeSchemaMismatch, err, "table %s", t.name)
		}
		row[col] = cv
	}
	return row, nil
}

func (t *Table) column(field string) (int, error) {
	col := t.schema.ColumnIndex(field)
	if col < 0 {
		return -1, oerrors.New(oerrors.ErrCodeInvalidReference, "table %s has no column %q", t.name, field)
	}
	return col, nil
}

func (t *Table) checkCell(row, col int) error {
	if !t.IsValidRow(row) {
		return oerrors.New(oerrors.ErrCodeInvalidReference, "table %s has no row %d", t.name, row)
	}
	if !t.schema.validColumn(col) {
		return oerrors.New(oerrors.ErrCodeInvalidReference, "table %s has no column %d", t.name, col)
	}
	return nil
}

func (t *Table) checkMutable() error {
	if t.notifying > 0 {
		return oerrors.New(oerrors.ErrCodeReentrant, "table %s is notifying listeners", t.name)
	}
	return nil
}

func (t *Table) checkAdd() error {
	if !t.caps.CanAddRow {
		return oerrors.New(oerrors.ErrCodeUnsupported, "table %s does not allow adding rows", t.name)
	}
	return t.checkMutable()
}

// columnAdded extends storage after the schema gained a column.
func (t *Table) columnAdded(col int, def any) {
	vals := make([]any, t.size)
	for i, ok := t.live.NextSet(0); ok; i, ok = t.live.NextSet(i + 1) {
		vals[i] = def
	}
	t.cols = slices.Insert(t.cols, col, vals)
	if t.count > 0 {
		t.FireEvent(0, t.size-1, col, Update)
	}
}

// columnRemoved drops storage after the schema lost a column.
func (t *Table) columnRemoved(col int) {
	t.cols = slices.Delete(t.cols, col, col+1)
	if t.count > 0 {
		t.FireEvent(0, t.size-1, AllColumns, Update)
	}
}
