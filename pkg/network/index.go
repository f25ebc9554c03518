package network

import (
	"slices"

	"github.com/matzehuels/obvious/pkg/table"
)

// nodeID returns the id edges use to reference the node at row.
func (nw *Network) nodeID(row int) any {
	if nw.opts.NodeKey == "" {
		return row
	}
	v, _ := nw.nodes.FieldValue(row, nw.opts.NodeKey)
	return nw.normalize(v)
}

// normalize maps an id value to the canonical Go type of the network's ids.
func (nw *Network) normalize(v any) any {
	switch nw.keyType {
	case table.TypeInt:
		switch x := v.(type) {
		case int32:
			return int(x)
		case int64:
			return int(x)
		}
	case table.TypeLong:
		switch x := v.(type) {
		case int:
			return int64(x)
		case int32:
			return int64(x)
		}
	}
	return v
}

// resolve returns the node row an id refers to.
func (nw *Network) resolve(id any) (int, bool) {
	id = nw.normalize(id)
	if id == nil {
		return -1, false
	}
	if nw.opts.NodeKey == "" {
		row, ok := id.(int)
		return row, ok && nw.nodes.IsValidRow(row)
	}
	if !comparableKey(id) {
		return -1, false
	}
	rows := nw.keys[id]
	if len(rows) == 0 {
		return -1, false
	}
	return rows[0], true
}

func comparableKey(v any) bool {
	switch v.(type) {
	case string, int, int64:
		return true
	}
	return false
}

func (nw *Network) indexNode(row int) {
	if nw.opts.NodeKey == "" {
		return
	}
	key := nw.nodeID(row)
	if key == nil || !comparableKey(key) {
		return
	}
	nw.nodeKeys[row] = key
	nw.keys[key] = insertSorted(nw.keys[key], row)
}

func (nw *Network) unindexNode(row int) {
	key, ok := nw.nodeKeys[row]
	if !ok {
		return
	}
	delete(nw.nodeKeys, row)
	if rows := removeSorted(nw.keys[key], row); len(rows) > 0 {
		nw.keys[key] = rows
	} else {
		delete(nw.keys, key)
	}
}

// indexEdge resolves the endpoints of an edge row and records it in the
// adjacency index, or marks it dangling.
func (nw *Network) indexEdge(row int) {
	srcID, _ := nw.edges.FieldValue(row, nw.opts.SourceColumn)
	tgtID, _ := nw.edges.FieldValue(row, nw.opts.TargetColumn)
	src, okS := nw.resolve(srcID)
	tgt, okT := nw.resolve(tgtID)
	if !okS || !okT {
		if nw.dangling[row] {
			return
		}
		nw.dangling[row] = true
		nw.logger.Warn("edge references a missing node", "network", nw.name, "edge", row, "source", srcID, "target", tgtID)
		return
	}
	delete(nw.dangling, row)
	nw.ends[row] = [2]int{src, tgt}
	nw.out[src] = insertSorted(nw.out[src], row)
	nw.in[tgt] = insertSorted(nw.in[tgt], row)
	nw.version++
}

func (nw *Network) unindexEdge(row int) {
	delete(nw.dangling, row)
	delete(nw.stranded, row)
	ends, ok := nw.ends[row]
	if !ok {
		return
	}
	delete(nw.ends, row)
	nw.out[ends[0]] = removeSorted(nw.out[ends[0]], row)
	nw.in[ends[1]] = removeSorted(nw.in[ends[1]], row)
	if len(nw.out[ends[0]]) == 0 {
		delete(nw.out, ends[0])
	}
	if len(nw.in[ends[1]]) == 0 {
		delete(nw.in, ends[1])
	}
	nw.version++
}

// reresolveDangling retries edges whose endpoints were missing, after nodes
// were added or re-keyed. Stranded edges wait for their endpoint columns to
// be rewritten.
func (nw *Network) reresolveDangling() {
	for _, row := range sortedKeys(nw.dangling) {
		if !nw.stranded[row] {
			nw.indexEdge(row)
		}
	}
}

// incident returns the edge rows touching a node, ascending and unique.
func (nw *Network) incident(row int) []int {
	out, in := nw.out[row], nw.in[row]
	merged := make([]int, 0, len(out)+len(in))
	merged = append(merged, out...)
	merged = append(merged, in...)
	slices.Sort(merged)
	return slices.Compact(merged)
}

func insertSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

func removeSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}
	return slices.Delete(s, i, i+1)
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// nodeListener keeps the index in step with the node table.
type nodeListener struct{ nw *Network }

func (l *nodeListener) BeginEdit(int) {}
func (l *nodeListener) EndEdit(int)   {}

func (l *nodeListener) TableChanged(t *table.Table, start, end, col int, kind table.EventKind) {
	nw := l.nw
	switch kind {
	case table.Insert:
		for row := start; row <= end; row++ {
			if t.IsValidRow(row) {
				nw.indexNode(row)
			}
		}
		nw.version++
		if len(nw.dangling) > 0 {
			nw.reresolveDangling()
		}
		nw.FireEvent(start, end, col, InsertNode)

	case table.Update:
		if nw.opts.NodeKey != "" && (col == table.AllColumns || t.Schema().ColumnName(col) == nw.opts.NodeKey) {
			for row := start; row <= end; row++ {
				if t.IsValidRow(row) {
					nw.rekey(row)
				}
			}
		}
		nw.FireEvent(start, end, col, UpdateNode)

	case table.Delete:
		for row := start; row <= end; row++ {
			if t.IsValidRow(row) {
				continue
			}
			nw.cascade(row)
			nw.unindexNode(row)
		}
		nw.version++
		nw.FireEvent(start, end, col, DeleteNode)
	}
}

// rekey updates the key index after a node's key changed and rewrites the
// endpoint ids of its edges so that they follow the node.
func (nw *Network) rekey(row int) {
	old, had := nw.nodeKeys[row]
	nw.unindexNode(row)
	nw.indexNode(row)
	key, has := nw.nodeKeys[row]
	if had && has && old == key {
		return
	}
	for _, e := range nw.incident(row) {
		ends := nw.ends[e]
		var err error
		if ends[0] == row {
			err = nw.edges.SetField(e, nw.opts.SourceColumn, key)
		}
		if err == nil && ends[1] == row {
			err = nw.edges.SetField(e, nw.opts.TargetColumn, key)
		}
		if err != nil {
			// The edge still names the old key; it must not bind to the
			// next node that takes it.
			nw.unindexEdge(e)
			nw.dangling[e] = true
			nw.stranded[e] = true
			nw.logger.Warn("edge endpoint not rekeyed", "network", nw.name, "node", row, "edge", e, "err", err)
		}
	}
	if len(nw.dangling) > 0 {
		nw.reresolveDangling()
	}
}

// cascade removes every edge incident to a removed node row.
func (nw *Network) cascade(row int) {
	for _, e := range nw.incident(row) {
		if !nw.edges.RemoveRow(e) {
			// The edge table refused; keep the invariant visible to Validate.
			nw.unindexEdge(e)
			nw.dangling[e] = true
			nw.logger.Warn("incident edge not removed", "network", nw.name, "node", row, "edge", e)
		}
	}
	delete(nw.out, row)
	delete(nw.in, row)
}

// edgeListener keeps the index and the edge-type map in step with the edge
// table.
type edgeListener struct{ nw *Network }

func (l *edgeListener) BeginEdit(int) {}
func (l *edgeListener) EndEdit(int)   {}

func (l *edgeListener) TableChanged(t *table.Table, start, end, col int, kind table.EventKind) {
	nw := l.nw
	switch kind {
	case table.Insert:
		for row := start; row <= end; row++ {
			if !t.IsValidRow(row) {
				continue
			}
			typ := nw.opts.DefaultType
			if nw.pendingType != nil {
				typ = *nw.pendingType
			}
			nw.edgeTypes[row] = typ
			nw.indexEdge(row)
		}
		nw.FireEvent(start, end, col, InsertEdge)

	case table.Update:
		name := t.Schema().ColumnName(col)
		if col == table.AllColumns || name == nw.opts.SourceColumn || name == nw.opts.TargetColumn {
			for row := start; row <= end; row++ {
				if t.IsValidRow(row) {
					nw.unindexEdge(row)
					nw.indexEdge(row)
				}
			}
		}
		nw.FireEvent(start, end, col, UpdateEdge)

	case table.Delete:
		for row := start; row <= end; row++ {
			if t.IsValidRow(row) {
				continue
			}
			nw.unindexEdge(row)
			delete(nw.edgeTypes, row)
		}
		nw.FireEvent(start, end, col, DeleteEdge)
	}
}
