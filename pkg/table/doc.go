// Package table provides the schema-governed tabular data model.
//
// # Overview
//
// A [Schema] is an ordered list of named, typed columns with defaults. A
// [Table] stores rows conforming to a schema and notifies registered
// [Listener] values of every change. A [Tuple] is a view of a single row,
// either bound to a table or detached and awaiting insertion.
//
// # Row Identity
//
// Rows are identified by non-negative integer ids assigned in increasing
// order. Ids are stable: removing a row tombstones its id forever and never
// renumbers other rows. [Table.RowCount] counts live rows only, while
// [Table.RowCapacity] bounds the ids ever assigned.
//
//	s := table.MustSchema(table.Column{Name: "name", Type: table.TypeString, Default: "node_default"})
//	t := table.New(s)
//	row, _ := t.AddRow()            // row 0, name == "node_default"
//	_ = t.SetField(row, "name", "Alice")
//	t.RemoveRow(row)                // RowCount() == 0, IsValidRow(0) == false
//
// # Types
//
// Column types form a small hierarchy: [TypeAny] is a supertype of all
// types and [TypeNumber] of the numeric ones. [Schema.CanGet] and
// [Schema.CanSet] answer whether an accessor type fits a column; writes are
// checked value by value and rejected with a TYPE_MISMATCH error rather than
// stored or truncated. Nil is the null value and fits every column.
//
// # Events
//
// Every successful mutation calls [Listener.TableChanged] synchronously with
// the inclusive row range, the column (or [AllColumns]) and the [EventKind].
// [Table.BeginEdit] opens an advisory edit bracket; listeners see it through
// BeginEdit/EndEdit and may batch work until it closes. [Edit.End] reports
// whether listeners implementing [InvariantChecker] accept the result. No
// rollback is performed.
//
// Listeners must not mutate the table that is notifying them: such calls
// fail with a REENTRANT error (or return false for boolean operations).
//
// # Errors
//
// Queries and removals follow a neutral-result contract (false or ok=false
// for missing rows and columns). Operations that create or write return
// errors from [github.com/matzehuels/obvious/pkg/errors] carrying codes such
// as INVALID_REFERENCE, SCHEMA_MISMATCH, TYPE_MISMATCH and UNSUPPORTED.
package table
