// Package pkg provides the core libraries of the obvious data model.
//
// # Overview
//
// Obvious stores everything in tables. A table is a typed schema plus rows
// addressed by stable integer ids; a network is two tables, one row per node
// and one row per edge, with the edge endpoints kept in two columns of the
// edge table. Changes are announced to listeners inside begin/end edit
// brackets so views and mirrors can batch their work. The pkg directory is
// organized into four areas:
//
//  1. [table] and [network] - The data model (schemas, tables, tuples, graphs, trees)
//  2. [factory] - Backends that construct tables and networks from parameters
//  3. [io] and [store] - JSON documents and snapshot persistence
//  4. [config], [errors], [observability] - Ambient support
//
// # Architecture
//
// The typical data flow:
//
//	JSON document / code
//	         ↓
//	    [factory] package (backend chosen by config)
//	         ↓
//	    [table] / [network] packages (mutations, listeners, queries)
//	         ↓
//	    [store] package (file or redis snapshots via [io] documents)
//
// # Quick Start
//
// Build a small dependency network and query it:
//
//	import (
//	    "github.com/matzehuels/obvious/pkg/network"
//	    "github.com/matzehuels/obvious/pkg/table"
//	)
//
//	// 1. Describe the node rows
//	nodes := table.MustSchema(table.Column{Name: "name", Type: table.TypeString})
//
//	// 2. Create a keyed network
//	nw, _ := network.New(nodes, nil, network.WithNodeKey("name"))
//
//	// 3. Add nodes and an edge
//	app, _ := nw.AddNode(table.MustTuple(nodes, "app"))
//	lib, _ := nw.AddNode(table.MustTuple(nodes, "lib"))
//	_, _ = nw.AddEdge(nil, app, lib, network.Directed)
//
//	// 4. Navigate
//	deps := nw.Successors(app)
//
// # Main Packages
//
// ## Data Model
//
// [table] - Schemas with typed columns and defaults, tables with stable row
// ids and capability flags, tuples (bound or detached), filtered row
// iterators and the table listener protocol with edit brackets.
//
// [network] - Graphs stored as a node table and an edge table. Directed and
// undirected edges, keyed or row-id node references, neighbor queries, and
// [network.Tree] for parent/child structures.
//
// ## Construction
//
// [factory] - A registry of named backends ("memory", "append-only") and a
// Factory that creates or wraps tables, networks and trees with parameter
// maps merged over config defaults.
//
// ## Persistence
//
// [io] - Self-describing JSON documents that keep row ids, column types and
// edge types.
//
// [store] - Snapshot caches (file, redis, null) and the Snapshots service
// that saves and restores documents by kind and name.
//
// ## Support
//
//   - [config]: TOML configuration with environment overrides
//   - [errors]: Coded errors shared by every package
//   - [observability]: Hooks for mutations, edit brackets and snapshot traffic
//   - [buildinfo]: Version information set at build time
//
// [table]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/table
// [network]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/network
// [network.Tree]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/network#Tree
// [factory]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/factory
// [io]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/obvious/pkg/buildinfo
package pkg
