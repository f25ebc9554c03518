package network

import (
	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/table"
)

// Tree is a network in which every edge is directed from parent to child,
// every node has at most one parent and there are no cycles.
//
// The tree API enforces these rules. Rows written directly into the backing
// tables bypass it; [Tree.Validate] detects the damage and the traversal
// methods report MALFORMED_TREE instead of looping.
type Tree struct {
	*Network
	root int // explicit root row, or -1

	height        int
	heightVersion uint64
	heightValid   bool
}

// NewTree creates an empty tree. Edges inserted directly into the edge
// table are treated as directed.
func NewTree(nodeSchema, edgeSchema *table.Schema, opts ...Option) (*Tree, error) {
	nw, err := New(nodeSchema, edgeSchema, append(opts, WithDefaultEdgeType(Directed))...)
	if err != nil {
		return nil, err
	}
	return &Tree{Network: nw, root: -1}, nil
}

// WrapTree builds a tree over existing tables and fails with MALFORMED_TREE
// when their contents do not form a forest.
func WrapTree(nodes, edges *table.Table, opts ...Option) (*Tree, error) {
	nw, err := Wrap(nodes, edges, append(opts, WithDefaultEdgeType(Directed))...)
	if err != nil {
		return nil, err
	}
	t := &Tree{Network: nw, root: -1}
	if err := t.Validate(); err != nil {
		nw.Close()
		return nil, err
	}
	return t, nil
}

// AddEdge adds a parent to child edge. Undirected edges are UNSUPPORTED; an
// edge giving child a second parent or closing a cycle is MALFORMED_TREE.
func (t *Tree) AddEdge(tp *table.Tuple, parent, child Node, typ EdgeType) (Edge, error) {
	if typ == Undirected {
		return Edge{}, oerrors.New(oerrors.ErrCodeUnsupported, "tree %s does not accept undirected edges", t.name)
	}
	if !t.contains(parent) || !t.contains(child) {
		return Edge{}, oerrors.New(oerrors.ErrCodeInvalidReference, "endpoint is not a node of tree %s", t.name)
	}
	if len(t.in[child.Row()]) > 0 {
		return Edge{}, oerrors.New(oerrors.ErrCodeMalformedTree, "node %d already has a parent", child.Row())
	}
	if t.isAncestor(child.Row(), parent.Row()) {
		return Edge{}, oerrors.New(oerrors.ErrCodeMalformedTree, "edge %d->%d would close a cycle", parent.Row(), child.Row())
	}
	return t.Network.AddEdge(tp, parent, child, Directed)
}

// AddEdgeNodes is AddEdge with the endpoints given as a slice. Self-loops
// are rejected.
func (t *Tree) AddEdgeNodes(tp *table.Tuple, nodes []Node, typ EdgeType) (Edge, error) {
	if len(nodes) != 2 {
		return Edge{}, oerrors.New(oerrors.ErrCodeMalformedTree, "a tree edge needs a parent and a child, got %d nodes", len(nodes))
	}
	return t.AddEdge(tp, nodes[0], nodes[1], typ)
}

// SetEdgeType refuses to make an edge undirected.
func (t *Tree) SetEdgeType(e Edge, typ EdgeType) bool {
	if typ == Undirected {
		return false
	}
	return t.Network.SetEdgeType(e, typ)
}

// AddChild adds a child node under parent, joined by an edge built from
// edge (which may be nil). When the edge cannot be added the child node is
// removed again.
func (t *Tree) AddChild(parent Node, child, edge *table.Tuple) (Node, Edge, error) {
	if !t.contains(parent) {
		return Node{}, Edge{}, oerrors.New(oerrors.ErrCodeInvalidReference, "parent is not a node of tree %s", t.name)
	}
	n, err := t.AddNode(child)
	if err != nil {
		return Node{}, Edge{}, err
	}
	e, err := t.AddEdge(edge, parent, n, Directed)
	if err != nil {
		t.nodes.RemoveRow(n.Row())
		return Node{}, Edge{}, err
	}
	return n, e, nil
}

// SetRoot designates the root. The node must have no parent.
func (t *Tree) SetRoot(n Node) error {
	if !t.contains(n) {
		return oerrors.New(oerrors.ErrCodeInvalidReference, "root is not a node of tree %s", t.name)
	}
	if len(t.in[n.Row()]) > 0 {
		return oerrors.New(oerrors.ErrCodeMalformedTree, "node %d has a parent and cannot be the root", n.Row())
	}
	t.root = n.Row()
	t.heightValid = false
	return nil
}

// Root returns the designated root if it is still a valid parentless node,
// otherwise the first node (by row) without a parent.
func (t *Tree) Root() (Node, bool) {
	if t.root >= 0 && t.nodes.IsValidRow(t.root) && len(t.in[t.root]) == 0 {
		return t.node(t.root), true
	}
	for _, row := range t.nodes.RowIDs() {
		if len(t.in[row]) == 0 {
			return t.node(row), true
		}
	}
	return Node{}, false
}

// Roots returns every node without a parent, by row.
func (t *Tree) Roots() []Node {
	var out []Node
	for _, row := range t.nodes.RowIDs() {
		if len(t.in[row]) == 0 {
			out = append(out, t.node(row))
		}
	}
	return out
}

// ParentEdge returns the edge from n's parent, or false for a root.
func (t *Tree) ParentEdge(n Node) (Edge, bool) {
	if !t.contains(n) || len(t.in[n.Row()]) == 0 {
		return Edge{}, false
	}
	return t.edge(t.in[n.Row()][0]), true
}

// ParentNode returns n's parent, or false for a root.
func (t *Tree) ParentNode(n Node) (Node, bool) {
	if !t.contains(n) {
		return Node{}, false
	}
	p, ok := t.parentRow(n.Row())
	if !ok {
		return Node{}, false
	}
	return t.node(p), true
}

// ChildEdges returns the edges to n's children.
func (t *Tree) ChildEdges(n Node) []Edge {
	if !t.contains(n) {
		return nil
	}
	return t.edgesOf(t.out[n.Row()])
}

// ChildNodes returns n's children.
func (t *Tree) ChildNodes(n Node) []Node {
	if !t.contains(n) {
		return nil
	}
	rows := t.out[n.Row()]
	out := make([]Node, 0, len(rows))
	for _, e := range rows {
		out = append(out, t.node(t.ends[e][1]))
	}
	return out
}

// Depth returns the number of edges between n and its root. It fails with
// MALFORMED_TREE when the parent chain does not end within NodeCount steps.
func (t *Tree) Depth(n Node) (int, error) {
	if !t.contains(n) {
		return -1, oerrors.New(oerrors.ErrCodeInvalidReference, "node is not in tree %s", t.name)
	}
	limit := t.NodeCount()
	row := n.Row()
	for depth := 0; depth <= limit; depth++ {
		p, ok := t.parentRow(row)
		if !ok {
			return depth, nil
		}
		row = p
	}
	return -1, oerrors.New(oerrors.ErrCodeMalformedTree, "parent chain of node %d has a cycle", n.Row())
}

// Height returns the number of edges on the longest root-to-leaf path over
// every root of the forest, 0 for a single node or an empty tree. Nodes that
// no root reaches sit on a cycle and make the tree MALFORMED_TREE. The
// result is cached until the tree changes.
func (t *Tree) Height() (int, error) {
	if t.heightValid && t.heightVersion == t.version {
		return t.height, nil
	}
	roots := t.Roots()
	if len(roots) == 0 {
		if t.NodeCount() > 0 {
			return -1, oerrors.New(oerrors.ErrCodeMalformedTree, "tree %s has no root", t.name)
		}
		return 0, nil
	}

	type item struct{ row, depth int }
	seen := make(map[int]bool, t.NodeCount())
	queue := make([]item, 0, len(roots))
	for _, r := range roots {
		seen[r.Row()] = true
		queue = append(queue, item{r.Row(), 0})
	}
	height := 0
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		height = max(height, it.depth)
		for _, e := range t.out[it.row] {
			child := t.ends[e][1]
			if seen[child] {
				return -1, oerrors.New(oerrors.ErrCodeMalformedTree, "node %d is reachable twice", child)
			}
			seen[child] = true
			queue = append(queue, item{child, it.depth + 1})
		}
	}
	if len(seen) < t.NodeCount() {
		return -1, oerrors.New(oerrors.ErrCodeMalformedTree, "%d nodes of tree %s are not reachable from a root", t.NodeCount()-len(seen), t.name)
	}
	t.height, t.heightVersion, t.heightValid = height, t.version, true
	return height, nil
}

// Validate checks the network invariants plus the tree rules: directed
// edges only, at most one parent per node, no cycles.
func (t *Tree) Validate() error {
	if err := t.Network.Validate(); err != nil {
		return err
	}
	for row, typ := range t.edgeTypes {
		if typ == Undirected {
			return oerrors.New(oerrors.ErrCodeMalformedTree, "edge %d is undirected", row)
		}
	}
	for row, edges := range t.in {
		if len(edges) > 1 {
			return oerrors.New(oerrors.ErrCodeMalformedTree, "node %d has %d parents", row, len(edges))
		}
	}
	for _, n := range t.Nodes() {
		if _, err := t.Depth(n); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) parentRow(row int) (int, bool) {
	in := t.in[row]
	if len(in) == 0 {
		return -1, false
	}
	return t.ends[in[0]][0], true
}

// isAncestor reports whether a is b or one of b's ancestors.
func (t *Tree) isAncestor(a, b int) bool {
	row := b
	for range t.NodeCount() + 1 {
		if row == a {
			return true
		}
		p, ok := t.parentRow(row)
		if !ok {
			return false
		}
		row = p
	}
	return true
}
