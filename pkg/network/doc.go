// Package network layers graphs on top of [table.Table].
//
// A [Network] owns (or wraps) two tables: a node table and an edge table
// whose source and target columns hold node ids. A node id is the value of
// a configured key column ([WithNodeKey]) or, by default, the node's row id.
// [Node] and [Edge] are row views of those tables.
//
// # Consistency
//
// The network registers listeners on both tables and maintains an adjacency
// index and a per-edge [EdgeType] map from their events. Changes made
// through the network API and changes made directly to the tables are
// handled alike:
//
//   - AddEdge fails unless both endpoints are valid nodes
//   - removing a node removes every incident edge
//   - changing a node key rewrites the endpoint ids of its edges
//
// Edges inserted into the edge table with ids that do not resolve are
// reported by [Network.Validate].
//
// # Direction
//
// Directed edges run from source to target. Undirected edges count as both
// incoming and outgoing at each endpoint, and [Network.Source] and
// [Network.Target] return false for them.
//
// # Trees
//
// [Tree] is a network restricted to directed parent-to-child edges with a
// single parent per node. Depth and height computations are guarded
// against malformed (cyclic) data and report MALFORMED_TREE rather than
// looping.
//
//	tr, _ := network.NewTree(nodeSchema, nil)
//	root, _ := tr.AddNode(nil)
//	a, _, _ := tr.AddChild(root, nil, nil)
//	tr.Depth(a)  // 1
//	tr.Height()  // 1
package network
