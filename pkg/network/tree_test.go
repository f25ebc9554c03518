package network

import (
	"testing"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/table"
)

func mustTree(t *testing.T) *Tree {
	t.Helper()
	tr, err := NewTree(labelSchema(), nil)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tr
}

func TestTreeDepthHeight(t *testing.T) {
	tr := mustTree(t)
	root, _ := tr.AddNode(nil)
	a, _, err := tr.AddChild(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := tr.AddChild(a, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		node Node
		want int
	}{
		{"Root", root, 0},
		{"A", a, 1},
		{"B", b, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Depth(tt.node)
			if err != nil || got != tt.want {
				t.Errorf("Depth = %d, %v; want %d", got, err, tt.want)
			}
		})
	}

	h, err := tr.Height()
	if err != nil || h != 2 {
		t.Errorf("Height() = %d, %v; want 2", h, err)
	}

	// The cached height follows later changes.
	c, _, _ := tr.AddChild(b, nil, nil)
	if h, _ := tr.Height(); h != 3 {
		t.Errorf("Height() after growth = %d, want 3", h)
	}
	tr.RemoveNode(c)
	if h, _ := tr.Height(); h != 2 {
		t.Errorf("Height() after removal = %d, want 2", h)
	}
}

func TestForestHeight(t *testing.T) {
	tr := mustTree(t)
	lone, _ := tr.AddNode(nil)
	r, _ := tr.AddNode(nil)
	a, _, err := tr.AddChild(r, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := tr.AddChild(a, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(tr.Roots()); got != 2 {
		t.Fatalf("len(Roots()) = %d, want 2", got)
	}
	if root, _ := tr.Root(); root.Row() != lone.Row() {
		t.Fatalf("Root() = %d, want the lone node %d", root.Row(), lone.Row())
	}
	if d, _ := tr.Depth(b); d != 2 {
		t.Errorf("Depth(b) = %d, want 2", d)
	}
	if h, err := tr.Height(); err != nil || h != 2 {
		t.Errorf("Height() = %d, %v; want 2 from the deepest root", h, err)
	}

	tr.RemoveNode(r)
	if h, err := tr.Height(); err != nil || h != 1 {
		t.Errorf("Height() after removing a root = %d, %v; want 1", h, err)
	}
}

func TestTreeNavigation(t *testing.T) {
	tr := mustTree(t)
	root, _ := tr.AddNode(nil)
	a, ea, _ := tr.AddChild(root, nil, nil)
	b, _, _ := tr.AddChild(root, nil, nil)

	got, ok := tr.Root()
	if !ok || !got.Same(root) {
		t.Error("Root() should be the first parentless node")
	}
	if _, ok := tr.ParentNode(root); ok {
		t.Error("the root has no parent")
	}
	if p, ok := tr.ParentNode(b); !ok || !p.Same(root) {
		t.Error("ParentNode(b) should be root")
	}
	if pe, ok := tr.ParentEdge(a); !ok || !pe.Same(ea) {
		t.Error("ParentEdge(a) mismatch")
	}
	if kids := rowsOf(tr.ChildNodes(root)); !equalInts(kids, []int{a.Row(), b.Row()}) {
		t.Errorf("ChildNodes(root) = %v", kids)
	}
	if len(tr.ChildEdges(root)) != 2 || len(tr.ChildEdges(a)) != 0 {
		t.Error("ChildEdges mismatch")
	}
}

func TestTreeRejectsMalformedEdges(t *testing.T) {
	tr := mustTree(t)
	root, _ := tr.AddNode(nil)
	a, _, _ := tr.AddChild(root, nil, nil)
	b, _, _ := tr.AddChild(a, nil, nil)
	loose, _ := tr.AddNode(nil)

	tests := []struct {
		name     string
		parent   Node
		child    Node
		typ      EdgeType
		wantCode oerrors.Code
	}{
		{"Undirected", root, loose, Undirected, oerrors.ErrCodeUnsupported},
		{"SecondParent", loose, b, Directed, oerrors.ErrCodeMalformedTree},
		{"Cycle", b, root, Directed, oerrors.ErrCodeMalformedTree},
		{"SelfLoop", loose, loose, Directed, oerrors.ErrCodeMalformedTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tr.AddEdge(nil, tt.parent, tt.child, tt.typ); !oerrors.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("rejected edges must leave a valid tree: %v", err)
	}
	if tr.SetEdgeType(tr.Edges()[0], Undirected) {
		t.Error("SetEdgeType(Undirected) should be refused")
	}
}

func TestTreeCycleGuard(t *testing.T) {
	tr := mustTree(t)
	a, _ := tr.AddNode(nil)
	b, _ := tr.AddNode(nil)
	_, _ = tr.AddEdge(nil, a, b, Directed)

	// Close the cycle behind the tree's back.
	_, err := tr.EdgeTable().AddValues(map[string]any{DefaultSourceColumn: b.Row(), DefaultTargetColumn: a.Row()})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Depth(a); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("Depth on a cycle: err = %v", err)
	}
	if _, err := tr.Height(); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("Height on a cycle: err = %v", err)
	}
	if err := tr.Validate(); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("Validate on a cycle: err = %v", err)
	}
}

func TestTreeRootsAndSetRoot(t *testing.T) {
	tr := mustTree(t)
	r1, _ := tr.AddNode(nil)
	r2, _ := tr.AddNode(nil)
	child, _, _ := tr.AddChild(r2, nil, nil)

	if roots := rowsOf(tr.Roots()); !equalInts(roots, []int{r1.Row(), r2.Row()}) {
		t.Errorf("Roots() = %v", roots)
	}
	if err := tr.SetRoot(r2); err != nil {
		t.Fatal(err)
	}
	if got, _ := tr.Root(); !got.Same(r2) {
		t.Error("Root() should honour SetRoot")
	}
	if err := tr.SetRoot(child); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("SetRoot(child): err = %v", err)
	}
	if h, _ := tr.Height(); h != 1 {
		t.Errorf("Height() from r2 = %d, want 1", h)
	}
}

func TestWrapTreeValidates(t *testing.T) {
	nodes := table.New(labelSchema())
	for range 3 {
		_, _ = nodes.AddRow()
	}
	es := table.MustSchema(
		table.Column{Name: DefaultSourceColumn, Type: table.TypeInt},
		table.Column{Name: DefaultTargetColumn, Type: table.TypeInt},
	)
	edges := table.New(es)
	_, _ = edges.AddValues(map[string]any{DefaultSourceColumn: 0, DefaultTargetColumn: 2})
	_, _ = edges.AddValues(map[string]any{DefaultSourceColumn: 1, DefaultTargetColumn: 2})

	if _, err := WrapTree(nodes, edges); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("two parents: err = %v", err)
	}
	if len(nodes.Listeners()) != 0 || len(edges.Listeners()) != 0 {
		t.Error("a rejected tree must not stay registered on its tables")
	}

	edges.RemoveRow(1)
	tr, err := WrapTree(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := tr.Depth(tr.Nodes()[2]); d != 1 {
		t.Errorf("Depth(2) = %d, want 1", d)
	}
}

func TestTreeAddChildRollsBack(t *testing.T) {
	tr := mustTree(t)
	root, _ := tr.AddNode(nil)
	es := tr.EdgeTable().Schema()
	bad := table.MustTuple(table.MustSchema(table.Column{Name: "weight", Type: table.TypeDouble}), 1.0)
	if es.HasColumn("weight") {
		t.Fatal("test expects no weight column")
	}
	if _, _, err := tr.AddChild(root, nil, bad); !oerrors.Is(err, oerrors.ErrCodeSchemaMismatch) {
		t.Errorf("err = %v, want SCHEMA_MISMATCH", err)
	}
	if tr.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, the child should be rolled back", tr.NodeCount())
	}
}
