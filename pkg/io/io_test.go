package io

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

func peopleTable(t *testing.T) *table.Table {
	t.Helper()
	schema := table.MustSchema(
		table.Column{Name: "name", Type: table.TypeString},
		table.Column{Name: "age", Type: table.TypeInt, Default: 0},
		table.Column{Name: "score", Type: table.TypeFloat},
		table.Column{Name: "joined", Type: table.TypeTime},
		table.Column{Name: "extra", Type: table.TypeAny},
	)
	tbl := table.New(schema, table.WithName("people"))
	joined := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	rows := [][]any{
		{"ada", 36, float32(1.5), joined, int64(7)},
		{"bob", 41, float32(2), joined, "x"},
		{"cy", nil, nil, nil, nil},
	}
	for _, vals := range rows {
		if _, err := tbl.AddTuple(table.MustTuple(schema, vals...)); err != nil {
			t.Fatalf("AddTuple: %v", err)
		}
	}
	tbl.RemoveRow(1)
	return tbl
}

func TestTableRoundTrip(t *testing.T) {
	src := peopleTable(t)

	var buf bytes.Buffer
	if err := WriteTable(src, &buf); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if got.Name() != "people" {
		t.Errorf("Name = %q", got.Name())
	}
	if !got.Schema().Equal(src.Schema()) {
		t.Errorf("Schema = %v, want %v", got.Schema(), src.Schema())
	}
	ids := got.RowIDs()
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 2 {
		t.Fatalf("RowIDs = %v, want [0 2]", ids)
	}
	for _, row := range ids {
		want, _ := src.Tuple(row)
		have, _ := got.Tuple(row)
		if !have.Equal(want) {
			t.Errorf("row %d = %v, want %v", row, have, want)
		}
	}

	age, err := got.Value(0, 1)
	if err != nil || age != 36 {
		t.Errorf("age = %#v (%v), want int 36", age, err)
	}
	extra, _ := got.Value(0, 4)
	if extra != int64(7) {
		t.Errorf("any-typed number = %#v, want int64 7", extra)
	}
	if d := got.Schema().ColumnDefault(1); d != 0 {
		t.Errorf("default = %#v, want int 0", d)
	}
}

func TestReadTableOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(peopleTable(t), &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTable(&buf, table.WithCapabilities(table.Capabilities{}))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", got.RowCount())
	}
	if got.CanAddRow() || got.CanRemoveRow() {
		t.Error("options should apply to the returned table")
	}
	if got.Name() != "people" {
		t.Errorf("Name = %q, want the document name", got.Name())
	}
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code oerrors.Code
	}{
		{"malformed", `{"columns": [`, oerrors.ErrCodeInvalidInput},
		{"unknown type", `{"columns": [{"name": "a", "type": "blob"}], "rows": []}`, oerrors.ErrCodeInvalidInput},
		{"string in int column", `{"columns": [{"name": "a", "type": "int"}], "rows": [{"row": 0, "values": ["x"]}]}`, oerrors.ErrCodeTypeMismatch},
		{"number in string column", `{"columns": [{"name": "a", "type": "string"}], "rows": [{"row": 0, "values": [1]}]}`, oerrors.ErrCodeTypeMismatch},
		{"fraction in long column", `{"columns": [{"name": "a", "type": "long"}], "rows": [{"row": 0, "values": [1.5]}]}`, oerrors.ErrCodeTypeMismatch},
		{"bad time", `{"columns": [{"name": "a", "type": "time"}], "rows": [{"row": 0, "values": ["yesterday"]}]}`, oerrors.ErrCodeTypeMismatch},
		{"too many values", `{"columns": [{"name": "a", "type": "int"}], "rows": [{"row": 0, "values": [1, 2]}]}`, oerrors.ErrCodeSchemaMismatch},
		{"duplicate column", `{"columns": [{"name": "a", "type": "int"}, {"name": "a", "type": "int"}], "rows": []}`, oerrors.ErrCodeDuplicateColumn},
		{"row id far past row count", `{"columns": [{"name": "a", "type": "int"}], "rows": [{"row": 30000000, "values": [1]}]}`, oerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.doc))
			if !oerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadTableRowGap(t *testing.T) {
	doc := fmt.Sprintf(`{"columns": [{"name": "a", "type": "int"}], "rows": [
		{"row": 0, "values": [1]},
		{"row": %d, "values": [2]}
	]}`, MaxRowGap+1)
	tbl, err := ReadTable(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got, want := tbl.RowCapacity(), MaxRowGap+2; got != want {
		t.Errorf("RowCapacity() = %d, want %d", got, want)
	}
	if v, _ := tbl.Value(MaxRowGap+1, 0); v != 2 {
		t.Errorf("Value(last) = %v, want 2", v)
	}
	if tbl.IsValidRow(1) {
		t.Error("row 1 should be a gap")
	}

	doc = fmt.Sprintf(`{"columns": [{"name": "a", "type": "int"}], "rows": [
		{"row": 0, "values": [1]},
		{"row": %d, "values": [2]}
	]}`, MaxRowGap+2)
	if _, err := ReadTable(strings.NewReader(doc)); !oerrors.Is(err, oerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestNetworkRoundTrip(t *testing.T) {
	nodes := table.MustSchema(table.Column{Name: "name", Type: table.TypeString})
	edges := table.MustSchema(table.Column{Name: "weight", Type: table.TypeDouble})
	nw, err := network.New(nodes, edges, network.WithName("deps"), network.WithNodeKey("name"))
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]network.Node{}
	for _, name := range []string{"a", "b", "c"} {
		n, err := nw.AddNode(table.MustTuple(nodes, name))
		if err != nil {
			t.Fatal(err)
		}
		byName[name] = n
	}
	if _, err := nw.AddEdge(table.MustTuple(edges, 1.0), byName["a"], byName["b"], network.Directed); err != nil {
		t.Fatal(err)
	}
	if _, err := nw.AddEdge(table.MustTuple(edges, 2.5), byName["b"], byName["c"], network.Undirected); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteNetwork(nw, &buf); err != nil {
		t.Fatalf("WriteNetwork: %v", err)
	}
	got, err := ReadNetwork(&buf)
	if err != nil {
		t.Fatalf("ReadNetwork: %v", err)
	}

	if got.Name() != "deps" || got.NodeKey() != "name" {
		t.Errorf("layout = %s key=%s", got.Name(), got.NodeKey())
	}
	if got.NodeCount() != 3 || got.EdgeCount() != 2 {
		t.Fatalf("counts = %d nodes, %d edges", got.NodeCount(), got.EdgeCount())
	}
	b, _ := got.NodeByKey("b")
	c, _ := got.NodeByKey("c")
	if got.Degree(b) != 2 {
		t.Errorf("Degree(b) = %d, want 2", got.Degree(b))
	}
	e, ok := got.ConnectingEdge(c, b)
	if !ok {
		t.Fatal("undirected edge should connect c to b")
	}
	if typ, _ := got.EdgeType(e); typ != network.Undirected {
		t.Errorf("EdgeType = %v, want undirected", typ)
	}
	w, _ := e.GetDouble("weight")
	if w != 2.5 {
		t.Errorf("weight = %v, want 2.5", w)
	}
}

func TestUnkeyedNetworkKeepsRowIDs(t *testing.T) {
	nw, err := network.New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var ns []network.Node
	for range 3 {
		n, _ := nw.AddNode(nil)
		ns = append(ns, n)
	}
	nw.RemoveNode(ns[0])
	if _, err := nw.AddEdge(nil, ns[1], ns[2], network.Directed); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteNetwork(nw, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadNetwork(&buf)
	if err != nil {
		t.Fatalf("ReadNetwork: %v", err)
	}
	n2, ok := got.Node(2)
	if !ok {
		t.Fatal("node 2 should survive the round trip")
	}
	if preds := got.Predecessors(n2); len(preds) != 1 || preds[0].Row() != 1 {
		t.Errorf("Predecessors(2) = %v, want [1]", preds)
	}
}

func TestReadTree(t *testing.T) {
	tr, err := network.NewTree(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	root, _ := tr.AddNode(nil)
	child, _, _ := tr.AddChild(root, nil, nil)
	_, _, _ = tr.AddChild(child, nil, nil)

	var buf bytes.Buffer
	if err := WriteNetwork(tr.Network, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTree(&buf)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if h, _ := got.Height(); h != 2 {
		t.Errorf("Height = %d, want 2", h)
	}

	twoParents := `{
	  "source_column": "source", "target_column": "target",
	  "nodes": {"columns": [], "rows": [{"row": 0, "values": []}, {"row": 1, "values": []}, {"row": 2, "values": []}]},
	  "edges": {"columns": [{"name": "source", "type": "int"}, {"name": "target", "type": "int"}],
	            "rows": [{"row": 0, "values": [0, 2]}, {"row": 1, "values": [1, 2]}]}
	}`
	if _, err := ReadTree(strings.NewReader(twoParents)); !oerrors.Is(err, oerrors.ErrCodeMalformedTree) {
		t.Errorf("two parents: err = %v, want MALFORMED_TREE", err)
	}
}

func TestReadNetworkDanglingEdge(t *testing.T) {
	doc := `{
	  "nodes": {"columns": [], "rows": [{"row": 0, "values": []}]},
	  "edges": {"columns": [{"name": "source", "type": "int"}, {"name": "target", "type": "int"}],
	            "rows": [{"row": 0, "values": [0, 5]}]}
	}`
	if _, err := ReadNetwork(strings.NewReader(doc)); !oerrors.Is(err, oerrors.ErrCodeInvalidReference) {
		t.Errorf("err = %v, want INVALID_REFERENCE", err)
	}
}
