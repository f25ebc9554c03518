package network

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/table"
)

// Default endpoint column names of the edge table.
const (
	DefaultSourceColumn = "source"
	DefaultTargetColumn = "target"
)

// EdgeType is the directionality of an edge.
type EdgeType int

const (
	// Directed edges run from source to target.
	Directed EdgeType = iota
	// Undirected edges connect their endpoints symmetrically: each endpoint
	// sees the edge as both incoming and outgoing.
	Undirected
)

// String returns "directed" or "undirected".
func (t EdgeType) String() string {
	if t == Undirected {
		return "undirected"
	}
	return "directed"
}

// ParseEdgeType parses "directed" or "undirected".
func ParseEdgeType(s string) (EdgeType, error) {
	switch s {
	case "directed":
		return Directed, nil
	case "undirected":
		return Undirected, nil
	}
	return Directed, oerrors.New(oerrors.ErrCodeInvalidInput, "unknown edge type %q", s)
}

// Node is a row of the node table.
type Node struct{ *table.Tuple }

// Edge is a row of the edge table.
type Edge struct{ *table.Tuple }

// Same reports whether both nodes are the same row of the same table.
// Unlike Equal it ignores values.
func (n Node) Same(o Node) bool {
	return n.Tuple != nil && o.Tuple != nil && n.Table() == o.Table() && n.Row() == o.Row()
}

// Same reports whether both edges are the same row of the same table.
func (e Edge) Same(o Edge) bool {
	return e.Tuple != nil && o.Tuple != nil && e.Table() == o.Table() && e.Row() == o.Row()
}

// Options configures a [Network].
type Options struct {
	Name         string   // Used in logs; defaults to a short id
	NodeKey      string   // Node id column; empty means node ids are row ids
	SourceColumn string   // Edge column holding the source node id
	TargetColumn string   // Edge column holding the target node id
	DefaultType  EdgeType // Type of edges inserted directly into the edge table
	Logger       *log.Logger
	TableOptions []table.Option // Applied to tables created by New
}

// Option mutates [Options].
type Option func(*Options)

// WithName sets the network name.
func WithName(name string) Option { return func(o *Options) { o.Name = name } }

// WithNodeKey designates a node column as the node id. Its type must be
// string, int or long and its values unique.
func WithNodeKey(col string) Option { return func(o *Options) { o.NodeKey = col } }

// WithEndpointColumns names the edge columns holding the endpoint ids.
func WithEndpointColumns(source, target string) Option {
	return func(o *Options) {
		o.SourceColumn = source
		o.TargetColumn = target
	}
}

// WithDefaultEdgeType sets the type of edges that reach the edge table
// without going through AddEdge.
func WithDefaultEdgeType(t EdgeType) Option { return func(o *Options) { o.DefaultType = t } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithTableOptions passes options to the tables created by [New].
func WithTableOptions(opts ...table.Option) Option {
	return func(o *Options) { o.TableOptions = append(o.TableOptions, opts...) }
}

func buildOptions(opts []Option) Options {
	o := Options{
		SourceColumn: DefaultSourceColumn,
		TargetColumn: DefaultTargetColumn,
		DefaultType:  Directed,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Network is a graph stored in two tables: a node table and an edge table
// whose source and target columns hold endpoint node ids. A node id is the
// value of the configured node-key column, or the node's row id when there
// is none.
//
// The network listens to both tables and keeps an adjacency index and an
// edge-type map in step with them, whether rows change through the network
// API or directly on the tables. The invariant it maintains is that every
// edge's endpoints reference valid node rows: removing a node removes its
// incident edges.
//
// The zero value is not usable - use New or Wrap. Network is not safe for
// concurrent use without external synchronization.
type Network struct {
	id      uuid.UUID
	name    string
	opts    Options
	nodes   *table.Table
	edges   *table.Table
	keyType table.Type // type of node ids
	logger  *log.Logger

	edgeTypes map[int]EdgeType
	ends      map[int][2]int // edge row -> {source row, target row}
	out       map[int][]int  // node row -> edge rows with node as source, ascending
	in        map[int][]int  // node row -> edge rows with node as target, ascending
	keys      map[any][]int  // node id -> node rows, ascending (keyed networks only)
	nodeKeys  map[int]any    // node row -> indexed id (keyed networks only)
	dangling  map[int]bool   // edge rows whose endpoints do not resolve
	stranded  map[int]bool   // dangling edges left holding a node's old key

	pendingType *EdgeType
	listeners   []Listener
	notifying   int
	editing     int
	version     uint64

	nodeL *nodeListener
	edgeL *edgeListener
	owned bool // tables were created by New
}

// New creates a network with empty node and edge tables. The edge schema is
// copied and gains the endpoint columns if it lacks them.
func New(nodeSchema, edgeSchema *table.Schema, opts ...Option) (*Network, error) {
	o := buildOptions(opts)
	if nodeSchema == nil {
		nodeSchema = &table.Schema{}
	}
	keyType, err := keyTypeOf(nodeSchema, o.NodeKey)
	if err != nil {
		return nil, err
	}

	es := &table.Schema{}
	if edgeSchema != nil {
		es = edgeSchema.Clone()
	}
	for _, col := range []string{o.SourceColumn, o.TargetColumn} {
		if !es.HasColumn(col) {
			if _, err := es.AddColumn(col, keyType, nil); err != nil {
				return nil, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "edge schema")
			}
		}
	}

	name := o.Name
	if name == "" {
		name = uuid.NewString()[:8]
	}
	tableOpts := append([]table.Option{table.WithLogger(o.Logger)}, o.TableOptions...)
	nodes := table.New(nodeSchema, append(tableOpts, table.WithName(name+".nodes"))...)
	edges := table.New(es, append(tableOpts, table.WithName(name+".edges"))...)
	nw, err := Wrap(nodes, edges, append(opts, WithName(name))...)
	if err != nil {
		nodes.Close()
		edges.Close()
		return nil, err
	}
	nw.owned = true
	return nw, nil
}

// Wrap builds a network over existing tables. Existing edges must reference
// valid nodes; otherwise Wrap fails with INVALID_REFERENCE. The network
// registers itself as a listener on both tables until Close is called.
func Wrap(nodes, edges *table.Table, opts ...Option) (*Network, error) {
	o := buildOptions(opts)
	if nodes == nil || edges == nil {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "network needs a node table and an edge table")
	}
	if nodes == edges {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "node and edge tables must differ")
	}
	keyType, err := keyTypeOf(nodes.Schema(), o.NodeKey)
	if err != nil {
		return nil, err
	}
	if o.SourceColumn == o.TargetColumn {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "source and target columns must differ")
	}
	for _, col := range []string{o.SourceColumn, o.TargetColumn} {
		typ := edges.Schema().FieldType(col)
		if typ == table.TypeInvalid {
			return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch, "edge table has no %q column", col)
		}
		if !typ.AssignableFrom(keyType) {
			return nil, oerrors.New(oerrors.ErrCodeSchemaMismatch, "edge column %q (%s) cannot hold %s node ids", col, typ, keyType)
		}
	}

	name := o.Name
	if name == "" {
		name = uuid.NewString()[:8]
	}
	nw := &Network{
		id:        uuid.New(),
		name:      name,
		opts:      o,
		nodes:     nodes,
		edges:     edges,
		keyType:   keyType,
		logger:    o.Logger,
		edgeTypes: make(map[int]EdgeType),
		ends:      make(map[int][2]int),
		out:       make(map[int][]int),
		in:        make(map[int][]int),
		keys:      make(map[any][]int),
		nodeKeys:  make(map[int]any),
		dangling:  make(map[int]bool),
		stranded:  make(map[int]bool),
	}
	for _, row := range nodes.RowIDs() {
		nw.indexNode(row)
	}
	for _, row := range edges.RowIDs() {
		nw.edgeTypes[row] = o.DefaultType
		nw.indexEdge(row)
	}
	if err := nw.Validate(); err != nil {
		return nil, err
	}

	nw.nodeL = &nodeListener{nw}
	nw.edgeL = &edgeListener{nw}
	nodes.AddListener(nw.nodeL)
	edges.AddListener(nw.edgeL)
	nw.logger.Debug("network ready", "network", nw.name, "nodes", nodes.RowCount(), "edges", edges.RowCount())
	return nw, nil
}

// Close unregisters the network from its tables. Tables created by New are
// closed as well, releasing the caller's node schema; tables given to Wrap
// stay usable. The network must not be used afterwards.
func (nw *Network) Close() {
	nw.nodes.RemoveListener(nw.nodeL)
	nw.edges.RemoveListener(nw.edgeL)
	if nw.owned {
		nw.nodes.Close()
		nw.edges.Close()
	}
}

// ID returns the unique instance id.
func (nw *Network) ID() uuid.UUID { return nw.id }

// Name returns the network name.
func (nw *Network) Name() string { return nw.name }

// NodeTable returns the backing node table.
func (nw *Network) NodeTable() *table.Table { return nw.nodes }

// EdgeTable returns the backing edge table.
func (nw *Network) EdgeTable() *table.Table { return nw.edges }

// NodeKey returns the node id column, or "" when ids are row ids.
func (nw *Network) NodeKey() string { return nw.opts.NodeKey }

// SourceColumn returns the edge column holding source ids.
func (nw *Network) SourceColumn() string { return nw.opts.SourceColumn }

// TargetColumn returns the edge column holding target ids.
func (nw *Network) TargetColumn() string { return nw.opts.TargetColumn }

// DefaultEdgeType returns the type given to edges inserted directly into
// the edge table.
func (nw *Network) DefaultEdgeType() EdgeType { return nw.opts.DefaultType }

// Version increases with every structural change (node or edge added or
// removed, endpoints changed).
func (nw *Network) Version() uint64 { return nw.version }

// AddNode inserts tp's values into the node table, copied by column name,
// and returns the new node. It fails with SCHEMA_MISMATCH when tp does not
// fit the node schema or, in a keyed network, lacks a key; a duplicate key
// fails with INVALID_INPUT. A nil tuple adds a node of defaults (row-id
// networks only).
func (nw *Network) AddNode(tp *table.Tuple) (Node, error) {
	if err := nw.checkMutable(); err != nil {
		return Node{}, err
	}
	if key := nw.opts.NodeKey; key != "" {
		var v any
		if tp != nil {
			v, _ = tp.GetField(key)
		}
		if v == nil {
			return Node{}, oerrors.New(oerrors.ErrCodeSchemaMismatch, "node has no %q key", key)
		}
		if _, ok := nw.NodeByKey(v); ok {
			return Node{}, oerrors.New(oerrors.ErrCodeInvalidInput, "node key %v already present", v)
		}
	}
	row, err := nw.nodes.AddTuple(tp)
	if err != nil {
		return Node{}, err
	}
	return nw.node(row), nil
}

// AddEdge inserts an edge from source to target of the given type. The
// edge tuple supplies the other edge columns and may be nil; its endpoint
// columns are overwritten. It fails with INVALID_REFERENCE when an endpoint
// is not a valid node of this network.
func (nw *Network) AddEdge(tp *table.Tuple, source, target Node, typ EdgeType) (Edge, error) {
	if err := nw.checkMutable(); err != nil {
		return Edge{}, err
	}
	if !nw.contains(source) {
		return Edge{}, oerrors.New(oerrors.ErrCodeInvalidReference, "source is not a node of network %s", nw.name)
	}
	if !nw.contains(target) {
		return Edge{}, oerrors.New(oerrors.ErrCodeInvalidReference, "target is not a node of network %s", nw.name)
	}
	values := map[string]any{}
	if tp != nil {
		values = tp.Fields()
	}
	values[nw.opts.SourceColumn] = nw.nodeID(source.Row())
	values[nw.opts.TargetColumn] = nw.nodeID(target.Row())

	nw.pendingType = &typ
	row, err := nw.edges.AddValues(values)
	nw.pendingType = nil
	if err != nil {
		return Edge{}, err
	}
	return nw.edge(row), nil
}

// AddEdgeNodes is AddEdge with the endpoints given as a slice: one node
// makes a self-loop, two nodes are source and target.
func (nw *Network) AddEdgeNodes(tp *table.Tuple, nodes []Node, typ EdgeType) (Edge, error) {
	switch len(nodes) {
	case 1:
		return nw.AddEdge(tp, nodes[0], nodes[0], typ)
	case 2:
		return nw.AddEdge(tp, nodes[0], nodes[1], typ)
	}
	return Edge{}, oerrors.New(oerrors.ErrCodeInvalidInput, "an edge needs 1 or 2 nodes, got %d", len(nodes))
}

// RemoveNode removes the node and every edge incident to it. It returns
// false when the node is not in the network, a table refuses the removal,
// or a listener is being notified.
func (nw *Network) RemoveNode(n Node) bool {
	if nw.notifying > 0 || !nw.contains(n) || !nw.nodes.CanRemoveRow() {
		return false
	}
	if len(nw.incident(n.Row())) > 0 && !nw.edges.CanRemoveRow() {
		return false
	}
	return nw.nodes.RemoveRow(n.Row())
}

// RemoveEdge removes the edge. It returns false when the edge is not in the
// network or cannot be removed.
func (nw *Network) RemoveEdge(e Edge) bool {
	if nw.notifying > 0 || !nw.containsEdge(e) {
		return false
	}
	return nw.edges.RemoveRow(e.Row())
}

// SetEdgeType changes the recorded type of an edge and fires an update.
func (nw *Network) SetEdgeType(e Edge, typ EdgeType) bool {
	if nw.notifying > 0 || !nw.containsEdge(e) {
		return false
	}
	nw.edgeTypes[e.Row()] = typ
	nw.version++
	nw.FireEvent(e.Row(), e.Row(), table.AllColumns, UpdateEdge)
	return true
}

// Node returns the node stored at row.
func (nw *Network) Node(row int) (Node, bool) {
	if !nw.nodes.IsValidRow(row) {
		return Node{}, false
	}
	return nw.node(row), true
}

// Edge returns the edge stored at row.
func (nw *Network) Edge(row int) (Edge, bool) {
	if !nw.edges.IsValidRow(row) {
		return Edge{}, false
	}
	return nw.edge(row), true
}

// NodeByKey returns the node whose id is key. For row-id networks key is
// the row id.
func (nw *Network) NodeByKey(key any) (Node, bool) {
	row, ok := nw.resolve(key)
	if !ok {
		return Node{}, false
	}
	return nw.node(row), true
}

// NodeID returns the id stored in edge endpoint columns for n.
func (nw *Network) NodeID(n Node) (any, bool) {
	if !nw.contains(n) {
		return nil, false
	}
	return nw.nodeID(n.Row()), true
}

// Validate checks the network invariants: every edge resolves to two valid
// nodes, node keys are unique and every edge has a type.
func (nw *Network) Validate() error {
	for row := range nw.dangling {
		return oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d of network %s references a missing node", row, nw.name)
	}
	for key, rows := range nw.keys {
		if len(rows) > 1 {
			return oerrors.New(oerrors.ErrCodeInvalidInput, "node key %v used by rows %v", key, rows)
		}
	}
	for _, row := range nw.edges.RowIDs() {
		ends, ok := nw.ends[row]
		if !ok || !nw.nodes.IsValidRow(ends[0]) || !nw.nodes.IsValidRow(ends[1]) {
			return oerrors.New(oerrors.ErrCodeInvalidReference, "edge %d of network %s has invalid endpoints", row, nw.name)
		}
		if _, ok := nw.edgeTypes[row]; !ok {
			return oerrors.New(oerrors.ErrCodeInternal, "edge %d of network %s has no type", row, nw.name)
		}
	}
	return nil
}

func (nw *Network) node(row int) Node {
	tp, _ := nw.nodes.Tuple(row)
	return Node{tp}
}

func (nw *Network) edge(row int) Edge {
	tp, _ := nw.edges.Tuple(row)
	return Edge{tp}
}

func (nw *Network) contains(n Node) bool {
	return n.Tuple != nil && n.Table() == nw.nodes && nw.nodes.IsValidRow(n.Row())
}

func (nw *Network) containsEdge(e Edge) bool {
	return e.Tuple != nil && e.Table() == nw.edges && nw.edges.IsValidRow(e.Row())
}

func (nw *Network) checkMutable() error {
	if nw.notifying > 0 {
		return oerrors.New(oerrors.ErrCodeReentrant, "network %s is notifying listeners", nw.name)
	}
	return nil
}

// keyTypeOf returns the type of node ids for the given key column.
func keyTypeOf(s *table.Schema, key string) (table.Type, error) {
	if key == "" {
		return table.TypeInt, nil
	}
	switch typ := s.FieldType(key); typ {
	case table.TypeString, table.TypeInt, table.TypeLong:
		return typ, nil
	case table.TypeInvalid:
		return typ, oerrors.New(oerrors.ErrCodeConfiguration, "node schema has no key column %q", key)
	default:
		return typ, oerrors.New(oerrors.ErrCodeConfiguration, "node key column %q has unsupported type %s", key, typ)
	}
}
