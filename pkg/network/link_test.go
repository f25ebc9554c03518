package network

import (
	"testing"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/table"
)

func weightSchema() *table.Schema {
	return table.MustSchema(table.Column{Name: "weight", Type: table.TypeInt, Default: 0})
}

func idSchema() *table.Schema {
	return table.MustSchema(table.Column{Name: "id", Type: table.TypeString})
}

func TestNetworkLinkMirrorsChanges(t *testing.T) {
	ns, es := idSchema(), weightSchema()
	src, err := New(ns, es, WithName("src"), WithNodeKey("id"))
	if err != nil {
		t.Fatal(err)
	}
	// The target references nodes by row id, so endpoints are translated.
	dst, err := New(idSchema(), weightSchema(), WithName("dst"))
	if err != nil {
		t.Fatal(err)
	}

	a, _ := src.AddNode(table.MustTuple(ns, "a"))
	b, _ := src.AddNode(table.MustTuple(ns, "b"))
	ab, _ := src.AddEdge(table.MustTuple(es, 1), a, b, Directed)

	link, err := LinkNetworks(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if dst.NodeCount() != 2 || dst.EdgeCount() != 1 {
		t.Fatalf("existing graph not copied: %d nodes, %d edges", dst.NodeCount(), dst.EdgeCount())
	}
	tab, ok := link.TargetEdge(ab.Row())
	if !ok {
		t.Fatal("no target edge recorded for a->b")
	}
	ta, _ := link.TargetNode(a.Row())
	if s, ok := dst.Source(tab); !ok || !s.Same(ta) {
		t.Error("target edge should start at the mirror of a")
	}

	c, _ := src.AddNode(table.MustTuple(ns, "c"))
	bc, err := src.AddEdge(table.MustTuple(es, 2), b, c, Undirected)
	if err != nil {
		t.Fatal(err)
	}
	tbc, ok := link.TargetEdge(bc.Row())
	if !ok {
		t.Fatal("insert edge not mirrored")
	}
	if typ, _ := dst.EdgeType(tbc); typ != Undirected {
		t.Errorf("mirrored edge type = %v, want undirected", typ)
	}

	tests := []struct {
		name  string
		apply func() error
		check func() bool
	}{
		{
			"node value",
			func() error { return c.SetField("id", "cc") },
			func() bool {
				tc, _ := link.TargetNode(c.Row())
				v, _ := tc.GetField("id")
				return v == "cc"
			},
		},
		{
			"edge value",
			func() error { return ab.SetField("weight", 5) },
			func() bool { v, _ := tab.GetField("weight"); return v == 5 },
		},
		{
			"edge endpoint",
			func() error { return ab.SetField(DefaultTargetColumn, "cc") },
			func() bool {
				tc, _ := link.TargetNode(c.Row())
				tgt, ok := dst.Target(tab)
				return ok && tgt.Same(tc)
			},
		},
		{
			"edge type",
			func() error {
				if !src.SetEdgeType(ab, Undirected) {
					return oerrors.New(oerrors.ErrCodeUnsupported, "SetEdgeType refused")
				}
				return nil
			},
			func() bool { typ, _ := dst.EdgeType(tab); return typ == Undirected },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.apply(); err != nil {
				t.Fatal(err)
			}
			if !tt.check() {
				t.Error("change not mirrored")
			}
		})
	}

	if !src.RemoveNode(a) {
		t.Fatal("RemoveNode(a) failed")
	}
	if dst.NodeCount() != 2 || dst.EdgeCount() != 1 {
		t.Errorf("delete not mirrored: %d nodes, %d edges", dst.NodeCount(), dst.EdgeCount())
	}
	if _, ok := link.TargetNode(a.Row()); ok {
		t.Error("removed node keeps a mirror")
	}
	if err := link.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if err := dst.Validate(); err != nil {
		t.Errorf("target Validate() = %v", err)
	}
}

func TestNetworkLinkBatchesInsideEditBracket(t *testing.T) {
	src := mustNetwork(t)
	dst := mustNetwork(t)
	if _, err := LinkNetworks(src, dst); err != nil {
		t.Fatal(err)
	}
	rec := &netRecorder{ok: true}
	dst.AddListener(rec)

	edit := src.BeginEdit(table.AllColumns)
	nodes := addNodes(t, src, 2)
	if _, err := src.AddEdge(nil, nodes[0], nodes[1], Directed); err != nil {
		t.Fatal(err)
	}
	src.RemoveNode(nodes[1])
	if dst.NodeCount() != 0 || dst.EdgeCount() != 0 {
		t.Fatalf("changes inside a bracket are queued, dst has %d nodes", dst.NodeCount())
	}
	if !edit.End() {
		t.Fatal("edit bracket rejected")
	}

	if dst.NodeCount() != 1 || dst.EdgeCount() != 0 {
		t.Errorf("after replay dst has %d nodes and %d edges, want 1 and 0", dst.NodeCount(), dst.EdgeCount())
	}
	if rec.begins != 1 || rec.ends != 1 {
		t.Errorf("replay should run in one target bracket: begins=%d ends=%d", rec.begins, rec.ends)
	}
}

func TestNetworkLinkRecordsRefusedDelete(t *testing.T) {
	src := mustNetwork(t)
	dst := mustNetwork(t, WithTableOptions(table.WithCapabilities(table.Capabilities{CanAddRow: true})))
	n := addNodes(t, src, 1)[0]
	link, err := LinkNetworks(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	src.RemoveNode(n)
	if err := link.Err(); !oerrors.Is(err, oerrors.ErrCodeUnsupported) {
		t.Errorf("Err() = %v, want UNSUPPORTED", err)
	}
	if _, ok := link.TargetNode(n.Row()); !ok {
		t.Error("mapping of a node the target kept should survive")
	}
}
