// Package io provides JSON import and export for tables, networks and trees.
//
// # Overview
//
// Documents are self-describing: a table document carries its schema, and a
// network document carries both tables plus the endpoint layout. The format
// is used by the snapshot store and by the CLI, and is meant for:
//
//   - Round-trip preservation: row ids, column types and edge types survive
//   - Exchange with external tools that produce or consume tabular data
//   - Inspection of snapshots with ordinary JSON tooling
//
// # Table Format
//
//	{
//	  "name": "people",
//	  "columns": [
//	    {"name": "name", "type": "string"},
//	    {"name": "age", "type": "int", "default": 0}
//	  ],
//	  "rows": [
//	    {"row": 0, "values": ["ada", 36]},
//	    {"row": 2, "values": ["cy", null]}
//	  ]
//	}
//
// Rows are written with their ids. Gaps left by removed rows are kept on
// import, so references held in other tables stay valid. Row ids past the
// row count plus [MaxRowGap] are rejected.
//
// # Network Format
//
//	{
//	  "name": "deps",
//	  "node_key": "name",
//	  "source_column": "source",
//	  "target_column": "target",
//	  "default_type": "directed",
//	  "nodes": { ...table... },
//	  "edges": { ...table... },
//	  "edge_types": {"3": "undirected"}
//	}
//
// edge_types lists only edges whose type differs from default_type.
//
// # Import
//
// Use [ReadTable], [ReadNetwork] or [ReadTree] with any io.Reader, or
// [ImportTable] and [ImportNetwork] with a file path. Values are converted
// to the Go type of their column; a value that does not fit is a
// TYPE_MISMATCH error naming the row and column. Reading a tree fails with
// MALFORMED_TREE when the edges do not form a forest.
//
// # Export
//
// Use [WriteTable] and [WriteNetwork] with any io.Writer, or [ExportTable]
// and [ExportNetwork] with a file path. Output is indented JSON.
//
// # Concurrency
//
// Writers only read their argument and may run concurrently with other
// readers of the same table, but not with modifications to it.
package io
