package factory

import (
	"github.com/charmbracelet/log"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

// Backend creates tables and networks of one storage flavour.
type Backend interface {
	// Name returns the registry tag of the backend.
	Name() string

	// CreateTable returns an empty table over schema.
	CreateTable(schema *table.Schema, p Params) (*table.Table, error)

	// WrapTable returns a table of this backend pre-populated with the rows
	// of src, keeping their row ids.
	WrapTable(src *table.Table, p Params) (*table.Table, error)

	// CreateNetwork returns an empty network.
	CreateNetwork(nodeSchema, edgeSchema *table.Schema, p Params) (*network.Network, error)

	// WrapNetwork returns a network over existing node and edge tables.
	WrapNetwork(nodes, edges *table.Table, p Params) (*network.Network, error)

	// CreateTree returns an empty tree.
	CreateTree(nodeSchema, edgeSchema *table.Schema, p Params) (*network.Tree, error)
}

// Names of the built-in backends.
const (
	BackendMemory     = "memory"
	BackendAppendOnly = "append-only"
)

// memoryBackend stores everything in the in-memory arena tables. Its
// capabilities bound what params may enable.
type memoryBackend struct {
	name   string
	caps   table.Capabilities
	logger *log.Logger
}

// NewMemoryBackend returns the default backend: mutable in-memory tables.
func NewMemoryBackend(logger *log.Logger) Backend {
	return &memoryBackend{name: BackendMemory, caps: table.DefaultCapabilities(), logger: logger}
}

// NewAppendOnlyBackend returns an in-memory backend whose tables never
// remove rows, as for event logs and audit data.
func NewAppendOnlyBackend(logger *log.Logger) Backend {
	return &memoryBackend{
		name:   BackendAppendOnly,
		caps:   table.Capabilities{CanAddRow: true},
		logger: logger,
	}
}

func (b *memoryBackend) Name() string { return b.name }

func (b *memoryBackend) CreateTable(schema *table.Schema, p Params) (*table.Table, error) {
	opts, err := b.tableOptions(p)
	if err != nil {
		return nil, err
	}
	return table.New(schema, opts...), nil
}

func (b *memoryBackend) WrapTable(src *table.Table, p Params) (*table.Table, error) {
	if src == nil {
		return nil, oerrors.New(oerrors.ErrCodeInvalidInput, "no table to wrap")
	}
	opts, err := b.tableOptions(Params{ParamName: src.Name()}.Merge(p))
	if err != nil {
		return nil, err
	}
	return table.NewFrom(src, opts...), nil
}

func (b *memoryBackend) CreateNetwork(nodeSchema, edgeSchema *table.Schema, p Params) (*network.Network, error) {
	opts, err := b.networkOptions(p)
	if err != nil {
		return nil, err
	}
	return network.New(nodeSchema, edgeSchema, opts...)
}

func (b *memoryBackend) WrapNetwork(nodes, edges *table.Table, p Params) (*network.Network, error) {
	opts, err := b.networkOptions(p)
	if err != nil {
		return nil, err
	}
	return network.Wrap(nodes, edges, opts...)
}

func (b *memoryBackend) CreateTree(nodeSchema, edgeSchema *table.Schema, p Params) (*network.Tree, error) {
	opts, err := b.networkOptions(p)
	if err != nil {
		return nil, err
	}
	return network.NewTree(nodeSchema, edgeSchema, opts...)
}

func (b *memoryBackend) tableOptions(p Params) ([]table.Option, error) {
	canAdd, err := p.Bool(ParamCanAddRow, b.caps.CanAddRow)
	if err != nil {
		return nil, err
	}
	canRemove, err := p.Bool(ParamCanRemoveRow, b.caps.CanRemoveRow)
	if err != nil {
		return nil, err
	}
	if (canAdd && !b.caps.CanAddRow) || (canRemove && !b.caps.CanRemoveRow) {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "backend %s cannot enable capabilities it lacks", b.name)
	}
	opts := []table.Option{
		table.WithCapabilities(table.Capabilities{CanAddRow: canAdd, CanRemoveRow: canRemove}),
		table.WithLogger(b.logger),
	}
	if name := p.String(ParamName, ""); name != "" {
		opts = append(opts, table.WithName(name))
	}
	return opts, nil
}

func (b *memoryBackend) networkOptions(p Params) ([]network.Option, error) {
	tableOpts, err := b.tableOptions(Params{}.Merge(p, Params{ParamName: ""}))
	if err != nil {
		return nil, err
	}
	directed, err := p.Bool(ParamDirected, true)
	if err != nil {
		return nil, err
	}
	edgeType := network.Directed
	if !directed {
		edgeType = network.Undirected
	}
	opts := []network.Option{
		network.WithLogger(b.logger),
		network.WithTableOptions(tableOpts...),
		network.WithDefaultEdgeType(edgeType),
		network.WithEndpointColumns(
			p.String(ParamSourceColumn, network.DefaultSourceColumn),
			p.String(ParamTargetColumn, network.DefaultTargetColumn),
		),
	}
	if key := p.String(ParamNodeKey, ""); key != "" {
		opts = append(opts, network.WithNodeKey(key))
	}
	if name := p.String(ParamName, ""); name != "" {
		opts = append(opts, network.WithName(name))
	}
	return opts, nil
}

// Ensure memoryBackend implements Backend.
var _ Backend = (*memoryBackend)(nil)
