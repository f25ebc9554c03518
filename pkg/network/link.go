package network

import (
	"errors"

	"github.com/charmbracelet/log"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/table"
)

// Link mirrors the node and edge changes of one network into another. It is
// registered as a listener on the source network. Node and edge values are
// copied by column name; endpoints are translated to the target's node ids,
// so the two networks may use different key columns or none at all.
//
// While the source has an edit bracket open, changes are queued and replayed
// in one target bracket when the last source bracket closes.
type Link struct {
	target  *Network
	logger  *log.Logger
	nodes   map[int]int // source node row -> target node row
	edges   map[int]int // source edge row -> target edge row
	inhibit int
	pending []netEvent
	errs    []error
}

type netEvent struct {
	source     *Network
	start, end int
	col        int
	kind       EventKind
}

// NewLink returns a listener that mirrors changes into target. Register it
// on the source with AddListener, or use [LinkNetworks].
func NewLink(target *Network) *Link {
	return &Link{
		target: target,
		logger: target.logger,
		nodes:  make(map[int]int),
		edges:  make(map[int]int),
	}
}

// LinkNetworks copies every node and edge of source into target and keeps
// target in step with later changes to source.
func LinkNetworks(source, target *Network) (*Link, error) {
	l := NewLink(target)
	edit := target.BeginEdit(table.AllColumns)
	defer edit.End()
	for _, n := range source.Nodes() {
		if err := l.insertNode(source, n.Row()); err != nil {
			return nil, err
		}
	}
	for _, e := range source.Edges() {
		if err := l.insertEdge(source, e.Row()); err != nil {
			return nil, err
		}
	}
	source.AddListener(l)
	return l, nil
}

// Target returns the mirrored network.
func (l *Link) Target() *Network { return l.target }

// TargetNode returns the target node mirroring a source node row.
func (l *Link) TargetNode(sourceRow int) (Node, bool) {
	r, ok := l.nodes[sourceRow]
	if !ok {
		return Node{}, false
	}
	return l.target.Node(r)
}

// TargetEdge returns the target edge mirroring a source edge row.
func (l *Link) TargetEdge(sourceRow int) (Edge, bool) {
	r, ok := l.edges[sourceRow]
	if !ok {
		return Edge{}, false
	}
	return l.target.Edge(r)
}

// Err returns the errors met while mirroring, joined, or nil.
func (l *Link) Err() error { return errors.Join(l.errs...) }

// BeginEdit implements [Listener].
func (l *Link) BeginEdit(col int) { l.inhibit++ }

// EndEdit implements [Listener].
func (l *Link) EndEdit(col int) {
	if l.inhibit--; l.inhibit > 0 {
		return
	}
	l.inhibit = 0
	pending := l.pending
	l.pending = nil
	if len(pending) == 0 {
		return
	}
	edit := l.target.BeginEdit(table.AllColumns)
	defer edit.End()
	for _, ev := range pending {
		l.apply(ev)
	}
}

// NetworkChanged implements [Listener].
func (l *Link) NetworkChanged(nw *Network, start, end, col int, kind EventKind) {
	ev := netEvent{source: nw, start: start, end: end, col: col, kind: kind}
	if l.inhibit > 0 {
		l.pending = append(l.pending, ev)
		return
	}
	edit := l.target.BeginEdit(table.AllColumns)
	defer edit.End()
	l.apply(ev)
}

func (l *Link) apply(ev netEvent) {
	src := ev.source
	for row := ev.start; row <= ev.end; row++ {
		var err error
		switch ev.kind {
		case InsertNode:
			if _, mirrored := l.nodes[row]; !mirrored && src.nodes.IsValidRow(row) {
				err = l.insertNode(src, row)
			}
		case UpdateNode:
			err = l.updateNode(src, row, ev.col)
		case DeleteNode:
			if !src.nodes.IsValidRow(row) {
				err = l.removeMirror(l.nodes, row, func(tr int) (bool, bool) {
					n, ok := l.target.Node(tr)
					return ok, ok && l.target.RemoveNode(n)
				})
			}
		case InsertEdge:
			if _, mirrored := l.edges[row]; !mirrored && src.edges.IsValidRow(row) {
				err = l.insertEdge(src, row)
			}
		case UpdateEdge:
			err = l.updateEdge(src, row, ev.col)
		case DeleteEdge:
			if !src.edges.IsValidRow(row) {
				err = l.removeMirror(l.edges, row, func(tr int) (bool, bool) {
					e, ok := l.target.Edge(tr)
					return ok, ok && l.target.RemoveEdge(e)
				})
			}
		}
		if err != nil {
			l.errs = append(l.errs, err)
			l.logger.Warn("network link mirror failed", "source", src.Name(), "target", l.target.Name(), "event", ev.kind, "row", row, "err", err)
		}
	}
}

// removeMirror drops the target row mirroring a removed source row. remove
// reports whether the target row still existed and whether it was removed;
// a row the target refuses to remove keeps its mapping.
func (l *Link) removeMirror(rows map[int]int, row int, remove func(tr int) (existed, removed bool)) error {
	tr, ok := rows[row]
	if !ok {
		return nil
	}
	if existed, removed := remove(tr); existed && !removed {
		return oerrors.New(oerrors.ErrCodeUnsupported, "network %s refused to remove row %d", l.target.Name(), tr)
	}
	delete(rows, row)
	return nil
}

func (l *Link) insertNode(src *Network, row int) error {
	tp, ok := src.nodes.Tuple(row)
	if !ok {
		return nil
	}
	n, err := l.target.AddNode(tp)
	if err != nil {
		return err
	}
	l.nodes[row] = n.Row()
	return nil
}

// targetEnds maps the endpoints of a source edge to target nodes.
func (l *Link) targetEnds(src *Network, row int) (Node, Node, error) {
	e, ok := src.Edge(row)
	if !ok {
		return Node{}, Node{}, oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d is not in network %s", row, src.Name())
	}
	ends := src.IncidentNodes(e)
	if ends == nil {
		return Node{}, Node{}, oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d of network %s references a missing node", row, src.Name())
	}
	s, okS := l.TargetNode(ends[0].Row())
	t, okT := l.TargetNode(ends[1].Row())
	if !okS || !okT {
		return Node{}, Node{}, oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d joins nodes not mirrored in %s", row, l.target.Name())
	}
	return s, t, nil
}

func (l *Link) insertEdge(src *Network, row int) error {
	s, t, err := l.targetEnds(src, row)
	if err != nil {
		return err
	}
	e, _ := src.Edge(row)
	typ, _ := src.EdgeType(e)
	tp, err := l.edgeValues(src, e)
	if err != nil {
		return err
	}
	te, err := l.target.AddEdge(tp, s, t, typ)
	if err != nil {
		return err
	}
	l.edges[row] = te.Row()
	return nil
}

// edgeValues returns the non-endpoint values of a source edge as a tuple
// over the target edge schema. Endpoints are left for AddEdge to fill.
func (l *Link) edgeValues(src *Network, e Edge) (*table.Tuple, error) {
	values := e.Fields()
	delete(values, src.opts.SourceColumn)
	delete(values, src.opts.TargetColumn)
	return table.TupleFromMap(l.target.edges.Schema(), values)
}

func (l *Link) updateNode(src *Network, row, col int) error {
	tr, ok := l.nodes[row]
	if !ok || !src.nodes.IsValidRow(row) || !l.target.nodes.IsValidRow(tr) {
		return nil
	}
	return copyColumns(src.nodes, row, l.target.nodes, tr, col, nil)
}

func (l *Link) updateEdge(src *Network, row, col int) error {
	tr, ok := l.edges[row]
	if !ok || !src.edges.IsValidRow(row) || !l.target.edges.IsValidRow(tr) {
		return nil
	}
	endpoints := map[string]bool{
		src.opts.SourceColumn: true, src.opts.TargetColumn: true,
		l.target.opts.SourceColumn: true, l.target.opts.TargetColumn: true,
	}
	if err := copyColumns(src.edges, row, l.target.edges, tr, col, endpoints); err != nil {
		return err
	}
	if name := src.edges.Schema().ColumnName(col); col != table.AllColumns && name != src.opts.SourceColumn && name != src.opts.TargetColumn {
		return nil
	}

	s, t, err := l.targetEnds(src, row)
	if err != nil {
		return err
	}
	te, _ := l.target.Edge(tr)
	if ends := l.target.IncidentNodes(te); ends == nil || !ends[0].Same(s) || !ends[1].Same(t) {
		sid, _ := l.target.NodeID(s)
		tid, _ := l.target.NodeID(t)
		if err := l.target.edges.SetField(tr, l.target.opts.SourceColumn, sid); err != nil {
			return err
		}
		if err := l.target.edges.SetField(tr, l.target.opts.TargetColumn, tid); err != nil {
			return err
		}
	}
	e, _ := src.Edge(row)
	if typ, ok := src.EdgeType(e); ok {
		if cur, _ := l.target.EdgeType(te); cur != typ && !l.target.SetEdgeType(te, typ) {
			return oerrors.New(oerrors.ErrCodeUnsupported, "network %s refused edge type %s for row %d", l.target.Name(), typ, tr)
		}
	}
	return nil
}

// copyColumns copies column col (or every column) of a source row into the
// same-named columns of a target row, skipping names in skip and columns the
// target lacks.
func copyColumns(src *table.Table, row int, dst *table.Table, tr, col int, skip map[string]bool) error {
	var cols []int
	if col == table.AllColumns {
		for c := range src.Schema().ColumnCount() {
			cols = append(cols, c)
		}
	} else {
		cols = []int{col}
	}
	for _, c := range cols {
		name := src.Schema().ColumnName(c)
		if skip[name] || !dst.Schema().HasColumn(name) {
			continue
		}
		v, err := src.Value(row, c)
		if err != nil {
			return err
		}
		if err := dst.SetField(tr, name, v); err != nil {
			return err
		}
	}
	return nil
}
