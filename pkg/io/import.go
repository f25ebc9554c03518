package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

// MaxRowGap bounds the unused row ids a table document may skip. Row ids
// must stay below the number of rows plus MaxRowGap, which keeps a small
// document from reserving storage for millions of empty rows.
const MaxRowGap = 1 << 20

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return oerrors.Wrap(oerrors.ErrCodeInvalidInput, err, "decode")
	}
	return nil
}

// ReadTable decodes a JSON table from r.
//
// Column types are parsed with [table.ParseType] and every value is
// converted to its column's Go type: JSON numbers become int, int64,
// float32 or float64, and time columns parse RFC 3339 strings. Rows keep the
// ids they were written with. Values in any-typed columns come back as the
// JSON decoder produced them, so times stored there read back as strings.
//
// The table is filled with full capabilities; opts (name, capabilities,
// logger) apply to the returned table afterwards. ReadTable does not close r.
func ReadTable(r io.Reader, opts ...table.Option) (*table.Table, error) {
	var doc tableDoc
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	return docToTable(doc, opts)
}

// ReadNetwork decodes a JSON network from r. Extra opts are applied after
// the layout stored in the document, so callers can rename or relog the
// network but should not change the endpoint columns.
func ReadNetwork(r io.Reader, opts ...network.Option) (*network.Network, error) {
	var doc networkDoc
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	nodes, edges, nwOpts, err := docToNetworkParts(doc)
	if err != nil {
		return nil, err
	}
	nw, err := network.Wrap(nodes, edges, append(nwOpts, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := applyEdgeTypes(nw, doc.EdgeTypes); err != nil {
		nw.Close()
		return nil, err
	}
	return nw, nil
}

// ReadTree decodes a JSON network from r and checks that it forms a forest.
func ReadTree(r io.Reader, opts ...network.Option) (*network.Tree, error) {
	var doc networkDoc
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	nodes, edges, nwOpts, err := docToNetworkParts(doc)
	if err != nil {
		return nil, err
	}
	if len(doc.EdgeTypes) > 0 {
		return nil, oerrors.New(oerrors.ErrCodeMalformedTree, "tree documents cannot carry undirected edges")
	}
	return network.WrapTree(nodes, edges, append(nwOpts, opts...)...)
}

// ImportTable reads a JSON table file at path.
func ImportTable(path string, opts ...table.Option) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f, opts...)
}

// ImportNetwork reads a JSON network file at path.
func ImportNetwork(path string, opts ...network.Option) (*network.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNetwork(f, opts...)
}

func docToSchema(cols []columnDoc) (*table.Schema, error) {
	schema := table.MustSchema()
	for _, c := range cols {
		typ, err := table.ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		def, err := convert(typ, c.Default)
		if err != nil {
			return nil, fmt.Errorf("column %s default: %w", c.Name, err)
		}
		if _, err := schema.AddColumn(c.Name, typ, def); err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
	}
	return schema, nil
}

func docToTable(doc tableDoc, opts []table.Option) (*table.Table, error) {
	schema, err := docToSchema(doc.Columns)
	if err != nil {
		return nil, err
	}
	var base []table.Option
	if doc.Name != "" {
		base = append(base, table.WithName(doc.Name))
	}
	t := table.New(schema, base...)

	rows := slices.Clone(doc.Rows)
	slices.SortFunc(rows, func(a, b rowDoc) int { return a.Row - b.Row })
	limit := len(rows) + MaxRowGap
	for _, rd := range rows {
		if rd.Row >= limit {
			return nil, oerrors.New(oerrors.ErrCodeInvalidInput,
				"row id %d exceeds %d for a table of %d rows", rd.Row, limit-1, len(rows))
		}
		if len(rd.Values) > schema.ColumnCount() {
			return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch,
				"row %d has %d values for %d columns", rd.Row, len(rd.Values), schema.ColumnCount())
		}
		if _, err := t.AddRowAt(rd.Row); err != nil {
			return nil, fmt.Errorf("row %d: %w", rd.Row, err)
		}
		for c, raw := range rd.Values {
			v, err := convert(schema.ColumnType(c), raw)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", rd.Row, schema.ColumnName(c), err)
			}
			if err := t.Set(rd.Row, c, v); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", rd.Row, schema.ColumnName(c), err)
			}
		}
	}
	if len(opts) == 0 {
		return t, nil
	}
	return table.NewFrom(t, append(base, opts...)...), nil
}

func docToNetworkParts(doc networkDoc) (*table.Table, *table.Table, []network.Option, error) {
	nodes, err := docToTable(doc.Nodes, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("nodes: %w", err)
	}
	edges, err := docToTable(doc.Edges, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("edges: %w", err)
	}
	var opts []network.Option
	if doc.SourceColumn != "" || doc.TargetColumn != "" {
		opts = append(opts, network.WithEndpointColumns(doc.SourceColumn, doc.TargetColumn))
	}
	if doc.Name != "" {
		opts = append(opts, network.WithName(doc.Name))
	}
	if doc.NodeKey != "" {
		opts = append(opts, network.WithNodeKey(doc.NodeKey))
	}
	if doc.DefaultType != "" {
		typ, err := network.ParseEdgeType(doc.DefaultType)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, network.WithDefaultEdgeType(typ))
	}
	return nodes, edges, opts, nil
}

func applyEdgeTypes(nw *network.Network, types map[int]string) error {
	rows := make([]int, 0, len(types))
	for row := range types {
		rows = append(rows, row)
	}
	slices.Sort(rows)
	for _, row := range rows {
		typ, err := network.ParseEdgeType(types[row])
		if err != nil {
			return fmt.Errorf("edge %d: %w", row, err)
		}
		e, ok := nw.Edge(row)
		if !ok || !nw.SetEdgeType(e, typ) {
			return oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d: cannot set type %s", row, typ)
		}
	}
	return nil
}

// convert turns a decoded JSON value into the Go type stored by a column of
// type typ.
func convert(typ table.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch typ {
	case table.TypeInt, table.TypeLong, table.TypeFloat, table.TypeDouble, table.TypeNumber:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, oerrors.New(oerrors.ErrCodeTypeMismatch, "expected a number, got %T", raw)
		}
		return convertNumber(typ, n)
	case table.TypeTime:
		s, ok := raw.(string)
		if !ok {
			return nil, oerrors.New(oerrors.ErrCodeTypeMismatch, "expected a time string, got %T", raw)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "parse time")
		}
		return ts, nil
	case table.TypeAny:
		if n, ok := raw.(json.Number); ok {
			return convertNumber(table.TypeNumber, n)
		}
	}
	return raw, nil
}

func convertNumber(typ table.Type, n json.Number) (any, error) {
	switch typ {
	case table.TypeInt, table.TypeLong:
		i, err := n.Int64()
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "parse integer")
		}
		if typ == table.TypeInt {
			return int(i), nil
		}
		return i, nil
	case table.TypeFloat, table.TypeDouble:
		f, err := n.Float64()
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "parse float")
		}
		if typ == table.TypeFloat {
			return float32(f), nil
		}
		return f, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeTypeMismatch, err, "parse number")
	}
	return f, nil
}
