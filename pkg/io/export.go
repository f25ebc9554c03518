package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

// tableDoc is the JSON form of a table.
type tableDoc struct {
	Name    string      `json:"name,omitempty"`
	Columns []columnDoc `json:"columns"`
	Rows    []rowDoc    `json:"rows"`
}

type columnDoc struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

type rowDoc struct {
	Row    int   `json:"row"`
	Values []any `json:"values"`
}

// networkDoc is the JSON form of a network. EdgeTypes lists only edges
// whose type differs from DefaultType.
type networkDoc struct {
	Name         string         `json:"name,omitempty"`
	NodeKey      string         `json:"node_key,omitempty"`
	SourceColumn string         `json:"source_column"`
	TargetColumn string         `json:"target_column"`
	DefaultType  string         `json:"default_type"`
	Nodes        tableDoc       `json:"nodes"`
	Edges        tableDoc       `json:"edges"`
	EdgeTypes    map[int]string `json:"edge_types,omitempty"`
}

func tableToDoc(t *table.Table) tableDoc {
	schema := t.Schema()
	doc := tableDoc{
		Name:    t.Name(),
		Columns: make([]columnDoc, schema.ColumnCount()),
		Rows:    make([]rowDoc, 0, t.RowCount()),
	}
	for i, c := range schema.Columns() {
		doc.Columns[i] = columnDoc{Name: c.Name, Type: c.Type.String(), Default: c.Default}
	}
	for it := t.Rows(); it.Next(); {
		row := it.Row()
		vals := make([]any, schema.ColumnCount())
		for c := range vals {
			vals[c], _ = t.Value(row, c)
		}
		doc.Rows = append(doc.Rows, rowDoc{Row: row, Values: vals})
	}
	return doc
}

func networkToDoc(nw *network.Network) networkDoc {
	doc := networkDoc{
		Name:         nw.Name(),
		NodeKey:      nw.NodeKey(),
		SourceColumn: nw.SourceColumn(),
		TargetColumn: nw.TargetColumn(),
		DefaultType:  nw.DefaultEdgeType().String(),
		Nodes:        tableToDoc(nw.NodeTable()),
		Edges:        tableToDoc(nw.EdgeTable()),
	}
	for _, e := range nw.Edges() {
		if typ, ok := nw.EdgeType(e); ok && typ != nw.DefaultEdgeType() {
			if doc.EdgeTypes == nil {
				doc.EdgeTypes = make(map[int]string)
			}
			doc.EdgeTypes[e.Row()] = typ.String()
		}
	}
	return doc
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTable encodes t as JSON and writes it to w. Every live row is
// written with its row id, so [ReadTable] restores the same ids.
func WriteTable(t *table.Table, w io.Writer) error {
	return encode(w, tableToDoc(t))
}

// WriteNetwork encodes nw as JSON and writes it to w. The document holds
// both tables, the endpoint layout and every non-default edge type. Trees
// are written through their embedded network.
func WriteNetwork(nw *network.Network, w io.Writer) error {
	return encode(w, networkToDoc(nw))
}

// ExportTable writes t to a JSON file at path.
func ExportTable(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTable(t, f)
}

// ExportNetwork writes nw to a JSON file at path.
func ExportNetwork(nw *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteNetwork(nw, f)
}
